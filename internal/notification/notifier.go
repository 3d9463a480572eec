// Package notification delivers booking confirmations. Delivery happens after
// the booking is stored and never undoes it.
package notification

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// BookingConfirmedEvent carries everything a confirmation email needs, so
// consumers never read the primary store.
type BookingConfirmedEvent struct {
	Reference    string    `json:"reference"`
	ShowtimeID   int64     `json:"showtime_id"`
	MovieTitle   string    `json:"movie_title"`
	ShowDate     string    `json:"show_date"`
	ShowTime     string    `json:"show_time"`
	Hall         string    `json:"hall"`
	SeatIDs      []string  `json:"seat_ids"`
	CustomerName string    `json:"customer_name"`
	Email        string    `json:"email"`
	Total        string    `json:"total"`
	ConfirmedAt  time.Time `json:"confirmed_at"`
}

type Notifier interface {
	BookingConfirmed(ctx context.Context, ev BookingConfirmedEvent) error
}

// LogNotifier only logs. Used when no broker or mail server is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log.With(zap.String("notifier", "log"))}
}

func (n *LogNotifier) BookingConfirmed(_ context.Context, ev BookingConfirmedEvent) error {
	n.log.Info("Booking confirmed",
		zap.String("reference", ev.Reference),
		zap.Int64("showtime_id", ev.ShowtimeID),
		zap.Strings("seat_ids", ev.SeatIDs),
		zap.String("email", ev.Email),
		zap.String("total", ev.Total),
	)
	return nil
}
