package usecase

import (
	"context"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/dto/response"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

// MovieService is the read-only catalog in front of seat selection.
type MovieService interface {
	GetMovies(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.MovieResponse], error)
	GetMovieByID(ctx context.Context, movieID int64) (*response.MovieDetailResponse, error)
	GetShowtimesByMovie(ctx context.Context, movieID int64) ([]response.ShowtimeResponse, error)
	GetShowtime(ctx context.Context, showtimeID int64) (*response.ShowtimeResponse, error)
	GetSeatMap(ctx context.Context, showtimeID int64) (*response.SeatMapResponse, error)
}

type movieService struct {
	repo      *repository.Repository
	inventory InventoryService
	pricing   *PricingCalculator
	timeout   time.Duration
	log       *zap.Logger
}

func NewMovieService(
	repo *repository.Repository,
	inventory InventoryService,
	pricing *PricingCalculator,
	timeout time.Duration,
	log *zap.Logger,
) MovieService {
	return &movieService{
		repo:      repo,
		inventory: inventory,
		pricing:   pricing,
		timeout:   timeout,
		log:       log.With(zap.String("service", "movie")),
	}
}

func (s *movieService) GetMovies(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.MovieResponse], error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	movies, err := s.repo.Movie.FindAll(ctx, req.Offset(), req.Limit())
	if err != nil {
		s.log.Error("Failed to get movies",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, storageError("get movies", err)
	}

	total, err := s.repo.Movie.CountAll(ctx)
	if err != nil {
		s.log.Error("Failed to count movies", zap.Error(err))
		return nil, storageError("count movies", err)
	}

	data := make([]response.MovieResponse, len(movies))
	for i, movie := range movies {
		data[i] = response.MovieToResponse(movie)
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (s *movieService) GetMovieByID(ctx context.Context, movieID int64) (*response.MovieDetailResponse, error) {
	readCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	movie, err := s.repo.Movie.FindByID(readCtx, movieID)
	if err != nil {
		s.log.Error("Failed to get movie by ID",
			zap.Error(err),
			zap.Int64("movie_id", movieID),
		)
		return nil, storageError("get movie", err)
	}
	if movie == nil {
		return nil, notFound("movie", movieID)
	}

	showtimes, err := s.GetShowtimesByMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}

	return &response.MovieDetailResponse{
		MovieResponse: response.MovieToResponse(movie),
		Showtimes:     showtimes,
	}, nil
}

func (s *movieService) GetShowtimesByMovie(ctx context.Context, movieID int64) ([]response.ShowtimeResponse, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	showtimes, err := s.repo.Showtime.FindByMovieID(ctx, movieID)
	if err != nil {
		s.log.Error("Failed to get showtimes",
			zap.Error(err),
			zap.Int64("movie_id", movieID),
		)
		return nil, storageError("get showtimes", err)
	}

	out := make([]response.ShowtimeResponse, len(showtimes))
	for i, showtime := range showtimes {
		out[i] = s.showtimeResponse(response.ShowtimeToResponse(showtime))
	}
	return out, nil
}

func (s *movieService) showtimeResponse(resp response.ShowtimeResponse) response.ShowtimeResponse {
	resp.ServiceFeePerSeat = utils.FormatAmount(s.pricing.ServiceFeePerSeat())
	return resp
}

func (s *movieService) GetShowtime(ctx context.Context, showtimeID int64) (*response.ShowtimeResponse, error) {
	showtime, err := s.inventory.GetShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	resp := s.showtimeResponse(response.ShowtimeToResponse(showtime))
	return &resp, nil
}

func (s *movieService) GetSeatMap(ctx context.Context, showtimeID int64) (*response.SeatMapResponse, error) {
	showtime, err := s.GetShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	seats, err := s.inventory.ListSeats(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	resp := &response.SeatMapResponse{
		Showtime: *showtime,
		Seats:    response.SeatsToResponse(seats),
	}
	for _, seat := range seats {
		if seat.Status == entity.SeatStatusBooked {
			resp.Booked++
		} else {
			resp.Available++
		}
	}
	return resp, nil
}
