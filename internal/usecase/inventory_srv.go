package usecase

import (
	"context"
	"fmt"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/pkg/redisx"

	"go.uber.org/zap"
)

// InventoryService answers which seats of a showtime exist and which are
// booked. Listings always read booked status from storage.
type InventoryService interface {
	GetShowtime(ctx context.Context, showtimeID int64) (*entity.Showtime, error)
	ListSeats(ctx context.Context, showtimeID int64) ([]entity.Seat, error)
	IsAvailable(ctx context.Context, showtimeID int64, seatID string) (bool, error)
}

type inventoryService struct {
	repo    *repository.Repository
	cache   *redisx.Cache
	timeout time.Duration
	log     *zap.Logger
}

// NewInventoryService caches showtimes and hall layouts when cache is set.
func NewInventoryService(repo *repository.Repository, cache *redisx.Cache, timeout time.Duration, log *zap.Logger) InventoryService {
	return &inventoryService{
		repo:    repo,
		cache:   cache,
		timeout: timeout,
		log:     log.With(zap.String("service", "inventory")),
	}
}

func (s *inventoryService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *inventoryService) GetShowtime(ctx context.Context, showtimeID int64) (*entity.Showtime, error) {
	load := func(ctx context.Context) (*entity.Showtime, error) {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()

		showtime, err := s.repo.Showtime.FindByID(ctx, showtimeID)
		if err != nil {
			return nil, storageError("get showtime", err)
		}
		if showtime == nil {
			return nil, notFound("showtime", showtimeID)
		}
		return showtime, nil
	}

	return cached(ctx, s, redisx.KeyShowtime(showtimeID), load)
}

func (s *inventoryService) hallLayout(ctx context.Context, hall string) ([]entity.Seat, error) {
	load := func(ctx context.Context) ([]entity.Seat, error) {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()

		seats, err := s.repo.Seat.FindByHall(ctx, hall)
		if err != nil {
			return nil, storageError("get hall seats", err)
		}

		layout := make([]entity.Seat, 0, len(seats))
		for _, seat := range seats {
			layout = append(layout, *seat)
		}
		return layout, nil
	}

	return cached(ctx, s, redisx.KeyHallLayout(hall), load)
}

// cached falls back to load when redis is absent or failing.
func cached[T any](ctx context.Context, s *inventoryService, key string, load func(context.Context) (T, error)) (T, error) {
	if s.cache == nil {
		return load(ctx)
	}

	var loadErr error
	v, err := redisx.GetOrSetJSON(ctx, s.cache, key, func(ctx context.Context) (T, error) {
		v, err := load(ctx)
		loadErr = err
		return v, err
	})
	if err == nil {
		return v, nil
	}
	if loadErr != nil {
		return v, loadErr
	}

	s.log.Warn("Cache unavailable, reading storage", zap.String("key", key), zap.Error(err))
	return load(ctx)
}

func (s *inventoryService) ListSeats(ctx context.Context, showtimeID int64) ([]entity.Seat, error) {
	showtime, err := s.GetShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	layout, err := s.hallLayout(ctx, showtime.Hall)
	if err != nil {
		return nil, err
	}

	bookedCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	bookedIDs, err := s.repo.Booking.FindBookedSeatIDs(bookedCtx, showtimeID)
	if err != nil {
		s.log.Error("Failed to get booked seats",
			zap.Error(err),
			zap.Int64("showtime_id", showtimeID),
		)
		return nil, storageError("get booked seats", err)
	}

	booked := make(map[string]struct{}, len(bookedIDs))
	for _, id := range bookedIDs {
		booked[id] = struct{}{}
	}

	seats := make([]entity.Seat, len(layout))
	for i, seat := range layout {
		seat.Status = entity.SeatStatusAvailable
		if _, ok := booked[seat.ID]; ok {
			seat.Status = entity.SeatStatusBooked
		}
		seats[i] = seat
	}
	entity.SortSeats(seats)

	return seats, nil
}

func (s *inventoryService) IsAvailable(ctx context.Context, showtimeID int64, seatID string) (bool, error) {
	seats, err := s.ListSeats(ctx, showtimeID)
	if err != nil {
		return false, err
	}

	for _, seat := range seats {
		if seat.ID == seatID {
			return seat.Status == entity.SeatStatusAvailable, nil
		}
	}
	return false, fmt.Errorf("showtime %d: %w", showtimeID, notFound("seat", seatID))
}
