package usecase

import (
	"cinema-reservation/internal/dto/response"
	"cinema-reservation/pkg/utils"

	"github.com/shopspring/decimal"
)

// Pricing holds exact amounts. Round only when displaying.
type Pricing struct {
	SeatCount  int
	UnitPrice  decimal.Decimal
	Subtotal   decimal.Decimal
	ServiceFee decimal.Decimal
	Total      decimal.Decimal
}

func (p Pricing) Response() response.PricingResponse {
	return response.PricingResponse{
		SeatCount:  p.SeatCount,
		UnitPrice:  utils.FormatAmount(p.UnitPrice),
		Subtotal:   utils.FormatAmount(p.Subtotal),
		ServiceFee: utils.FormatAmount(p.ServiceFee),
		Total:      utils.FormatAmount(p.Total),
	}
}

// PricingCalculator charges the showtime price plus a flat fee per seat.
type PricingCalculator struct {
	serviceFeePerSeat decimal.Decimal
}

func NewPricingCalculator(serviceFeePerSeat decimal.Decimal) *PricingCalculator {
	return &PricingCalculator{serviceFeePerSeat: serviceFeePerSeat}
}

func (c *PricingCalculator) ServiceFeePerSeat() decimal.Decimal {
	return c.serviceFeePerSeat
}

// Calculate is linear in seatCount. A non-positive count prices to zero.
func (c *PricingCalculator) Calculate(seatCount int, unitPrice decimal.Decimal) Pricing {
	if seatCount < 0 {
		seatCount = 0
	}

	n := decimal.NewFromInt(int64(seatCount))
	subtotal := unitPrice.Mul(n)
	fee := c.serviceFeePerSeat.Mul(n)

	return Pricing{
		SeatCount:  seatCount,
		UnitPrice:  unitPrice,
		Subtotal:   subtotal,
		ServiceFee: fee,
		Total:      subtotal.Add(fee),
	}
}
