package entity

import "strconv"

// Hall is the physical seat layout shared by every showtime screened in it.
type Hall struct {
	Name        string   `db:"name" json:"name"`
	Rows        []string `db:"seat_rows" json:"rows"`
	SeatsPerRow int      `db:"seats_per_row" json:"seats_per_row"`
}

// Layout expands the hall into seats, ids are row + number ("C7").
func (h Hall) Layout() []Seat {
	seats := make([]Seat, 0, len(h.Rows)*h.SeatsPerRow)
	for _, row := range h.Rows {
		for n := 1; n <= h.SeatsPerRow; n++ {
			seats = append(seats, Seat{
				ID:     row + strconv.Itoa(n),
				Hall:   h.Name,
				Row:    row,
				Number: n,
			})
		}
	}
	return seats
}
