package wire

import (
	"cinema-reservation/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireShowtime(r chi.Router, showtimeHandler *adaptor.ShowtimeHandler) {
	r.Route("/api/showtimes/{id}", func(r chi.Router) {
		r.Get("/", showtimeHandler.GetShowtime)
		r.Get("/seats", showtimeHandler.GetSeats)
		r.Post("/quote", showtimeHandler.Quote)
		r.Get("/events", showtimeHandler.Events)
	})
}
