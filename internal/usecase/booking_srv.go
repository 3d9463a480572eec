package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/dto/response"
	"cinema-reservation/internal/notification"
	"cinema-reservation/internal/payment"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const referenceAttempts = 3

// SeatEventPublisher tells seat-map viewers that seats changed.
type SeatEventPublisher interface {
	PublishSeatsChanged(ctx context.Context, showtimeID int64, seatIDs []string) error
}

type BookingService interface {
	// NewSession starts a session holding seatIDs. Booked seats are refused.
	NewSession(ctx context.Context, showtimeID int64, seatIDs []string) (*ReservationSession, error)
	Quote(ctx context.Context, showtimeID int64, seatIDs []string) (*response.QuoteResponse, error)
	Commit(ctx context.Context, session *ReservationSession, customer *request.CustomerInfo) (*entity.Booking, error)
	// Book commits seatIDs in one call for clients that keep their selection.
	Book(ctx context.Context, req *request.CreateBookingRequest) (*entity.Booking, error)
	GetBooking(ctx context.Context, reference string) (*response.BookingResponse, error)
	GetCustomerBookings(ctx context.Context, customerID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	BookingResponse(ctx context.Context, booking *entity.Booking) response.BookingResponse
}

// BookingDeps are the collaborators outside storage. Events and Notifier
// may be nil.
type BookingDeps struct {
	Gateway  payment.Gateway
	Events   SeatEventPublisher
	Notifier notification.Notifier
}

type bookingService struct {
	repo      *repository.Repository
	inventory InventoryService
	pricing   *PricingCalculator
	deps      BookingDeps
	config    utils.BookingConfig
	log       *zap.Logger
}

func NewBookingService(
	repo *repository.Repository,
	inventory InventoryService,
	pricing *PricingCalculator,
	deps BookingDeps,
	config utils.BookingConfig,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		repo:      repo,
		inventory: inventory,
		pricing:   pricing,
		deps:      deps,
		config:    config,
		log:       log.With(zap.String("service", "booking")),
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// normalizeSeatIDs trims, uppercases and drops duplicates, keeping order.
func normalizeSeatIDs(seatIDs []string) []string {
	out := make([]string, 0, len(seatIDs))
	for _, id := range seatIDs {
		id = strings.ToUpper(strings.TrimSpace(id))
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// checkSelection matches seatIDs against a fresh listing. Unknown seats are
// NotFound; booked ones become a SeatConflictError.
func checkSelection(showtimeID int64, seats []entity.Seat, seatIDs []string) error {
	byID := make(map[string]entity.Seat, len(seats))
	for _, seat := range seats {
		byID[seat.ID] = seat
	}

	var taken []string
	for _, id := range seatIDs {
		seat, ok := byID[id]
		if !ok {
			return fmt.Errorf("showtime %d: %w", showtimeID, notFound("seat", id))
		}
		if seat.Status == entity.SeatStatusBooked {
			taken = append(taken, id)
		}
	}

	if len(taken) > 0 {
		slices.Sort(taken)
		return &SeatConflictError{SeatIDs: taken}
	}
	return nil
}

func (s *bookingService) NewSession(ctx context.Context, showtimeID int64, seatIDs []string) (*ReservationSession, error) {
	session := NewReservationSession(showtimeID)

	seatIDs = normalizeSeatIDs(seatIDs)
	if len(seatIDs) == 0 {
		return session, nil
	}

	seats, err := s.inventory.ListSeats(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	if err := checkSelection(showtimeID, seats, seatIDs); err != nil {
		return nil, err
	}

	byID := make(map[string]entity.Seat, len(seats))
	for _, seat := range seats {
		byID[seat.ID] = seat
	}
	for _, id := range seatIDs {
		if _, err := session.ToggleSeat(byID[id]); err != nil {
			return nil, err
		}
	}

	return session, nil
}

func (s *bookingService) Quote(ctx context.Context, showtimeID int64, seatIDs []string) (*response.QuoteResponse, error) {
	showtime, err := s.inventory.GetShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	seats, err := s.inventory.ListSeats(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	seatIDs = normalizeSeatIDs(seatIDs)
	if err := checkSelection(showtimeID, seats, seatIDs); err != nil {
		return nil, err
	}

	session := NewReservationSession(showtimeID)
	for _, seat := range seats {
		if slices.Contains(seatIDs, seat.ID) {
			if _, err := session.ToggleSeat(seat); err != nil {
				return nil, err
			}
		}
	}

	return &response.QuoteResponse{
		ShowtimeID:      showtimeID,
		SelectedSeatIDs: session.SelectedSeatIDs(),
		Seats:           response.SeatsToResponse(session.View(seats)),
		Pricing:         session.ComputeTotal(s.pricing, showtime).Response(),
	}, nil
}

// Commit turns a session into a stored booking. Seats are revalidated and
// written in one atomic step. The card is authorized before the write and
// voided if the write loses. Hooks run after the write and never undo it.
func (s *bookingService) Commit(ctx context.Context, session *ReservationSession, customer *request.CustomerInfo) (*entity.Booking, error) {
	if session == nil || session.Len() == 0 {
		return nil, ErrEmptySelection
	}

	if customer == nil {
		return nil, &InvalidCustomerInfoError{Fields: map[string]string{"customer": "This field is required"}}
	}
	trimmed := customer.Trimmed()
	customer = &trimmed
	if errs := utils.ValidateStruct(customer); len(errs) > 0 {
		s.log.Warn("Commit validation failed", zap.Any("errors", errs))
		return nil, &InvalidCustomerInfoError{Fields: errs}
	}

	showtimeID := session.ShowtimeID()
	seatIDs := session.SelectedSeatIDs()

	showtime, err := s.inventory.GetShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	// fresh read so a stale session fails before the card is touched
	seats, err := s.inventory.ListSeats(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	if err := checkSelection(showtimeID, seats, seatIDs); err != nil {
		return nil, err
	}

	pricing := session.ComputeTotal(s.pricing, showtime)

	auth, err := s.authorize(ctx, showtime, customer, pricing)
	if err != nil {
		return nil, err
	}

	booking := &entity.Booking{
		BaseSimple: entity.BaseSimple{
			ID:        utils.GenerateUUID(),
			CreatedAt: time.Now().UTC(),
		},
		ShowtimeID: showtimeID,
		SeatIDs:    seatIDs,
		Customer: entity.Customer{
			FirstName: customer.FirstName,
			LastName:  customer.LastName,
			Email:     customer.Email,
			Phone:     customer.Phone,
		},
		TotalAmount:      pricing.Total,
		PaymentReference: auth.ID,
	}
	if customerID, ok := utils.GetCustomerIDFromContext(ctx); ok {
		booking.CustomerID = &customerID
	}

	if err := s.store(ctx, booking); err != nil {
		s.voidPayment(ctx, auth.ID)
		return nil, err
	}

	s.log.Info("Booking committed",
		zap.String("reference", booking.Reference),
		zap.Int64("showtime_id", showtimeID),
		zap.Strings("seat_ids", seatIDs),
		zap.String("total", utils.FormatAmount(booking.TotalAmount)),
	)

	s.afterCommit(ctx, booking, showtime)
	return booking, nil
}

func (s *bookingService) Book(ctx context.Context, req *request.CreateBookingRequest) (*entity.Booking, error) {
	session := NewReservationSession(req.ShowtimeID)
	for _, id := range normalizeSeatIDs(req.SeatIDs) {
		// status is rechecked against storage inside Commit
		if _, err := session.ToggleSeat(entity.Seat{ID: id}); err != nil {
			return nil, err
		}
	}
	return s.Commit(ctx, session, &req.Customer)
}

func (s *bookingService) authorize(ctx context.Context, showtime *entity.Showtime, customer *request.CustomerInfo, pricing Pricing) (*payment.Authorization, error) {
	req := payment.AuthorizeRequest{
		Amount:      pricing.Total,
		Currency:    "USD",
		Email:       customer.Email,
		Description: fmt.Sprintf("Showtime %d, %d seat(s)", showtime.ID, pricing.SeatCount),
	}
	if customer.Payment != nil {
		req.Card = &payment.Card{
			Number: customer.Payment.CardNumber,
			Expiry: customer.Payment.Expiry,
			CVV:    customer.Payment.CVV,
		}
	}

	payCtx, cancel := withTimeout(ctx, s.config.PaymentTimeout)
	defer cancel()

	auth, err := s.deps.Gateway.Authorize(payCtx, req)
	if err != nil {
		s.log.Warn("Payment authorization failed",
			zap.Error(err),
			zap.Int64("showtime_id", showtime.ID),
			zap.String("amount", utils.FormatAmount(pricing.Total)),
		)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("authorize payment: %w", ErrTimeout)
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}
	return auth, nil
}

// store writes the booking, drawing a new reference if one collides.
func (s *bookingService) store(ctx context.Context, booking *entity.Booking) error {
	for attempt := 1; ; attempt++ {
		reference := utils.GenerateBookingReference()
		booking.Reference = reference

		writeCtx, cancel := withTimeout(ctx, s.config.StorageTimeout)
		err := s.repo.Booking.CreateWithSeats(writeCtx, booking)
		cancel()

		var taken *repository.SeatsTakenError
		switch {
		case err == nil:
			return nil
		case errors.As(err, &taken):
			s.log.Info("Seats taken by a concurrent booking",
				zap.Int64("showtime_id", booking.ShowtimeID),
				zap.Strings("seat_ids", taken.SeatIDs),
			)
			return &SeatConflictError{SeatIDs: taken.SeatIDs}
		case errors.Is(err, repository.ErrDuplicateReference) && attempt < referenceAttempts:
			s.log.Warn("Booking reference collision, retrying", zap.String("reference", reference))
			continue
		default:
			s.log.Error("Failed to store booking",
				zap.Error(err),
				zap.Int64("showtime_id", booking.ShowtimeID),
			)
			return storageError("create booking", err)
		}
	}
}

func (s *bookingService) voidPayment(ctx context.Context, authorizationID string) {
	voidCtx, cancel := withTimeout(context.WithoutCancel(ctx), s.config.PaymentTimeout)
	defer cancel()

	if err := s.deps.Gateway.Void(voidCtx, authorizationID); err != nil {
		s.log.Error("Failed to void payment",
			zap.Error(err),
			zap.String("authorization_id", authorizationID),
		)
	}
}

// afterCommit publishes the seat change and sends the confirmation.
// Failures are logged only.
func (s *bookingService) afterCommit(ctx context.Context, booking *entity.Booking, showtime *entity.Showtime) {
	hookCtx, cancel := withTimeout(context.WithoutCancel(ctx), s.config.HookTimeout)
	defer cancel()

	if s.deps.Events != nil {
		if err := s.deps.Events.PublishSeatsChanged(hookCtx, booking.ShowtimeID, booking.SeatIDs); err != nil {
			s.log.Warn("Failed to publish seat change",
				zap.Error(err),
				zap.String("reference", booking.Reference),
			)
		}
	}

	if s.deps.Notifier == nil {
		return
	}

	ev := notification.BookingConfirmedEvent{
		Reference:    booking.Reference,
		ShowtimeID:   booking.ShowtimeID,
		ShowDate:     showtime.ShowDate.Format(time.DateOnly),
		ShowTime:     showtime.ShowTime,
		Hall:         showtime.Hall,
		SeatIDs:      booking.SeatIDs,
		CustomerName: booking.Customer.FullName(),
		Email:        booking.Customer.Email,
		Total:        utils.FormatAmount(booking.TotalAmount),
		ConfirmedAt:  booking.CreatedAt,
	}
	if movie, err := s.repo.Movie.FindByID(hookCtx, showtime.MovieID); err == nil && movie != nil {
		ev.MovieTitle = movie.Title
	}

	if err := s.deps.Notifier.BookingConfirmed(hookCtx, ev); err != nil {
		s.log.Warn("Failed to send booking confirmation",
			zap.Error(err),
			zap.String("reference", booking.Reference),
		)
	}
}

// BookingResponse adds showtime and movie details where they can be found.
func (s *bookingService) BookingResponse(ctx context.Context, booking *entity.Booking) response.BookingResponse {
	showtime, err := s.inventory.GetShowtime(ctx, booking.ShowtimeID)
	if err != nil {
		s.log.Warn("Failed to get showtime for booking",
			zap.Error(err),
			zap.String("reference", booking.Reference),
		)
		return response.BookingToResponse(booking, nil, nil)
	}

	movie, err := s.repo.Movie.FindByID(ctx, showtime.MovieID)
	if err != nil {
		s.log.Warn("Failed to get movie for booking",
			zap.Error(err),
			zap.Int64("movie_id", showtime.MovieID),
		)
	}

	return response.BookingToResponse(booking, showtime, movie)
}

func (s *bookingService) GetBooking(ctx context.Context, reference string) (*response.BookingResponse, error) {
	reference = utils.NormalizeBookingReference(reference)
	if reference == "" {
		return nil, notFound("booking", reference)
	}

	readCtx, cancel := withTimeout(ctx, s.config.StorageTimeout)
	defer cancel()

	booking, err := s.repo.Booking.FindByReference(readCtx, reference)
	if err != nil {
		s.log.Error("Failed to get booking",
			zap.Error(err),
			zap.String("reference", reference),
		)
		return nil, storageError("get booking", err)
	}
	if booking == nil {
		return nil, notFound("booking", reference)
	}

	resp := s.BookingResponse(ctx, booking)
	return &resp, nil
}

func (s *bookingService) GetCustomerBookings(ctx context.Context, customerID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	readCtx, cancel := withTimeout(ctx, s.config.StorageTimeout)
	defer cancel()

	bookings, err := s.repo.Booking.FindByCustomerID(readCtx, customerID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get customer bookings",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
		)
		return nil, storageError("get customer bookings", err)
	}

	total, err := s.repo.Booking.CountByCustomerID(readCtx, customerID)
	if err != nil {
		s.log.Error("Failed to count customer bookings",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
		)
		return nil, storageError("count customer bookings", err)
	}

	data := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		data[i] = s.BookingResponse(ctx, booking)
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}
