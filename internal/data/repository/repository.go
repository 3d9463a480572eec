package repository

import (
	"cinema-reservation/pkg/database"

	"go.uber.org/zap"
)

// Repository groups the storage ports. Postgres and the in-memory store
// both produce one.
type Repository struct {
	Movie    MovieRepository
	Showtime ShowtimeRepository
	Seat     SeatRepository
	Booking  BookingRepository
	Session  SessionRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Movie:    NewMovieRepository(db, log),
		Showtime: NewShowtimeRepository(db, log),
		Seat:     NewSeatRepository(db, log),
		Booking:  NewBookingRepository(db, log),
		Session:  NewSessionRepository(db, log),
	}
}
