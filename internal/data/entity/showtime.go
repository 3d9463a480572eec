package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Showtime is one screening of a movie in a hall. Price is per seat.
type Showtime struct {
	ID       int64           `db:"id" json:"id"`
	MovieID  int64           `db:"movie_id" json:"movie_id"`
	ShowDate time.Time       `db:"show_date" json:"show_date"`
	ShowTime string          `db:"show_time" json:"show_time"` // "10:00 AM"
	Hall     string          `db:"hall" json:"hall"`
	Price    decimal.Decimal `db:"price" json:"price"`
}
