package entity

import (
	"cmp"
	"slices"
)

type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	// SeatStatusHeld only ever appears in a reservation session's local view.
	SeatStatusHeld   SeatStatus = "held"
	SeatStatusBooked SeatStatus = "booked"
)

type Seat struct {
	ID     string     `db:"id" json:"id"` // A1, A2, B1, etc.
	Hall   string     `db:"hall" json:"hall"`
	Row    string     `db:"seat_row" json:"row"`
	Number int        `db:"seat_number" json:"number"`
	Status SeatStatus `db:"-" json:"status,omitempty"`
}

// CompareRows orders rows A..Z, then AA, AB, ...
func CompareRows(a, b string) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}

func CompareSeats(a, b Seat) int {
	if c := CompareRows(a.Row, b.Row); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Number, b.Number); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// SortSeats sorts in place by row, then seat number.
func SortSeats(seats []Seat) {
	slices.SortFunc(seats, CompareSeats)
}
