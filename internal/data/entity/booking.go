package entity

import (
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Customer struct {
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
	Phone     string `db:"phone" json:"phone"`
}

func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Booking is immutable once stored. Its seats stay booked for the showtime.
type Booking struct {
	BaseSimple
	Reference        string          `db:"booking_reference" json:"reference"`
	ShowtimeID       int64           `db:"showtime_id" json:"showtime_id"`
	SeatIDs          []string        `db:"-" json:"seat_ids"`
	Customer         Customer        `db:"-" json:"customer"`
	CustomerID       *uuid.UUID      `db:"customer_id" json:"customer_id,omitempty"`
	TotalAmount      decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaymentReference string          `db:"payment_reference" json:"payment_reference"`
}

// Clone returns a deep copy so stored bookings cannot be mutated by callers.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	c := *b
	c.SeatIDs = slices.Clone(b.SeatIDs)
	if b.CustomerID != nil {
		id := *b.CustomerID
		c.CustomerID = &id
	}
	return &c
}
