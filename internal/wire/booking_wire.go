package wire

import (
	"cinema-reservation/internal/adaptor"
	"cinema-reservation/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	limiter middleware.Limiter,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(middleware.RateLimit(limiter, log))
		}
		r.Post("/api/bookings", bookingHandler.CreateBooking)
	})

	r.Get("/api/bookings/{reference}", bookingHandler.GetBookingByReference)

	r.With(middleware.RequireCustomer).Get("/api/user/bookings", bookingHandler.GetUserBookings)
}
