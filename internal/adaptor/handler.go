package adaptor

import (
	"cinema-reservation/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Movie    *MovieHandler
	Showtime *ShowtimeHandler
	Booking  *BookingHandler
}

// NewHandler builds the HTTP handlers. idem and events may be nil.
func NewHandler(service *usecase.Service, idem IdempotencyStore, events SeatEventSubscriber, log *zap.Logger) *Handler {
	return &Handler{
		Movie:    NewMovieHandler(service.Movie, log),
		Showtime: NewShowtimeHandler(service.Movie, service.Booking, events, log),
		Booking:  NewBookingHandler(service.Booking, idem, log),
	}
}
