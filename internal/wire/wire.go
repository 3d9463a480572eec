package wire

import (
	"net/http"

	"cinema-reservation/internal/adaptor"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/notification"
	"cinema-reservation/internal/payment"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/middleware"
	"cinema-reservation/pkg/redisx"
	"cinema-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Infra holds the optional outside services. Nil fields are disabled,
// except Gateway, which is required.
type Infra struct {
	Cache       *redisx.Cache
	Idempotency *redisx.IdempotencyStore
	Limiter     *redisx.SlidingWindowLimiter
	SeatEvents  *redisx.SeatEvents
	Notifier    notification.Notifier
	Gateway     payment.Gateway
}

type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

func Wiring(repo *repository.Repository, infra Infra, config *utils.Config, logger *zap.Logger) *App {
	deps := usecase.BookingDeps{
		Gateway:  infra.Gateway,
		Notifier: infra.Notifier,
	}
	var idem adaptor.IdempotencyStore
	var subscriber adaptor.SeatEventSubscriber
	if infra.SeatEvents != nil {
		deps.Events = infra.SeatEvents
		subscriber = infra.SeatEvents
	}
	if infra.Idempotency != nil {
		idem = infra.Idempotency
	}

	service := usecase.NewService(repo, infra.Cache, deps, config.Booking, logger)
	handler := adaptor.NewHandler(service, idem, subscriber, logger)

	var limiter middleware.Limiter
	if infra.Limiter != nil {
		limiter = infra.Limiter
	}

	return &App{
		Router:  setupRouter(handler, repo, limiter, config.App.AllowedOrigins, logger),
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	limiter middleware.Limiter,
	allowedOrigins []string,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(allowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(repo.Session, logger))

		wireMovie(r, handler.Movie)
		wireShowtime(r, handler.Showtime)
		wireBooking(r, handler.Booking, limiter, logger)
	})

	return r
}
