package request

import "strings"

// CustomerInfo is what the checkout form collects.
type CustomerInfo struct {
	FirstName string       `json:"first_name" validate:"required,max=100"`
	LastName  string       `json:"last_name" validate:"required,max=100"`
	Email     string       `json:"email" validate:"required,email,max=255"`
	Phone     string       `json:"phone" validate:"required,max=20"`
	Payment   *PaymentInfo `json:"payment,omitempty"`
}

// Trimmed returns a copy with surrounding whitespace removed, so blank
// values fail the required checks.
func (c CustomerInfo) Trimmed() CustomerInfo {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Payment != nil {
		payment := *c.Payment
		payment.CardNumber = strings.TrimSpace(payment.CardNumber)
		payment.Expiry = strings.TrimSpace(payment.Expiry)
		payment.CVV = strings.TrimSpace(payment.CVV)
		c.Payment = &payment
	}
	return c
}

// PaymentInfo is passed through to the payment gateway and never stored.
type PaymentInfo struct {
	CardNumber string `json:"card_number" validate:"required,luhn"`
	Expiry     string `json:"expiry" validate:"required,card_expiry"`
	CVV        string `json:"cvv" validate:"required,number,min=3,max=4"`
}

// CreateBookingRequest commits the seats selected for one showtime.
type CreateBookingRequest struct {
	ShowtimeID int64        `json:"showtime_id" validate:"required,min=1"`
	SeatIDs    []string     `json:"seat_ids"`
	Customer   CustomerInfo `json:"customer"`
}

type QuoteRequest struct {
	SeatIDs []string `json:"seat_ids" validate:"max=50,dive,required,max=8"`
}
