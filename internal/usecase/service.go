package usecase

import (
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/pkg/redisx"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Inventory InventoryService
	Movie     MovieService
	Booking   BookingService
	Pricing   *PricingCalculator
}

// NewService wires the services. cache may be nil.
func NewService(repo *repository.Repository, cache *redisx.Cache, deps BookingDeps, config utils.BookingConfig, log *zap.Logger) *Service {
	pricing := NewPricingCalculator(config.ServiceFeePerSeat)
	inventory := NewInventoryService(repo, cache, config.StorageTimeout, log)

	return &Service{
		Inventory: inventory,
		Movie:     NewMovieService(repo, inventory, pricing, config.StorageTimeout, log),
		Booking:   NewBookingService(repo, inventory, pricing, deps, config, log),
		Pricing:   pricing,
	}
}
