package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/memory"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/notification"
	"cinema-reservation/internal/payment"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type recordingGateway struct {
	*payment.SimulatedGateway

	mu         sync.Mutex
	authorized []string
	voided     []string
}

func (g *recordingGateway) Authorize(ctx context.Context, req payment.AuthorizeRequest) (*payment.Authorization, error) {
	auth, err := g.SimulatedGateway.Authorize(ctx, req)
	if err == nil {
		g.mu.Lock()
		g.authorized = append(g.authorized, auth.ID)
		g.mu.Unlock()
	}
	return auth, err
}

func (g *recordingGateway) Void(ctx context.Context, id string) error {
	g.mu.Lock()
	g.voided = append(g.voided, id)
	g.mu.Unlock()
	return g.SimulatedGateway.Void(ctx, id)
}

func (g *recordingGateway) counts() (authorized, voided int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.authorized), len(g.voided)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification.BookingConfirmedEvent
	err    error
}

func (n *recordingNotifier) BookingConfirmed(_ context.Context, ev notification.BookingConfirmedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

type recordingEvents struct {
	mu    sync.Mutex
	calls [][]string
}

func (e *recordingEvents) PublishSeatsChanged(_ context.Context, _ int64, seatIDs []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, seatIDs)
	return nil
}

// countingBookings counts every storage call on the booking port.
type countingBookings struct {
	repository.BookingRepository
	calls atomic.Int64
}

func (c *countingBookings) FindBookedSeatIDs(ctx context.Context, showtimeID int64) ([]string, error) {
	c.calls.Add(1)
	return c.BookingRepository.FindBookedSeatIDs(ctx, showtimeID)
}

func (c *countingBookings) CreateWithSeats(ctx context.Context, b *entity.Booking) error {
	c.calls.Add(1)
	return c.BookingRepository.CreateWithSeats(ctx, b)
}

// stuckBookings never finishes a write before the deadline.
type stuckBookings struct {
	repository.BookingRepository
}

func (stuckBookings) CreateWithSeats(ctx context.Context, _ *entity.Booking) error {
	<-ctx.Done()
	return ctx.Err()
}

type brokenBookings struct {
	repository.BookingRepository
}

func (brokenBookings) CreateWithSeats(context.Context, *entity.Booking) error {
	return errors.New("connection refused")
}

type fixture struct {
	store    *memory.Store
	repo     *repository.Repository
	gateway  *recordingGateway
	notifier *recordingNotifier
	events   *recordingEvents
	config   utils.BookingConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewDemoStore(zap.NewNop())
	return &fixture{
		store:    store,
		repo:     store.Repository(),
		gateway:  &recordingGateway{SimulatedGateway: payment.NewSimulatedGateway(decimal.Zero, zap.NewNop())},
		notifier: &recordingNotifier{},
		events:   &recordingEvents{},
		config:   utils.DefaultBookingConfig(),
	}
}

func (f *fixture) service() *Service {
	deps := BookingDeps{Gateway: f.gateway, Events: f.events, Notifier: f.notifier}
	return NewService(f.repo, nil, deps, f.config, zap.NewNop())
}

func validCustomer() *request.CustomerInfo {
	return &request.CustomerInfo{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "+15550100",
		Payment: &request.PaymentInfo{
			CardNumber: "4242 4242 4242 4242",
			Expiry:     "12/49",
			CVV:        "123",
		},
	}
}

func mustSession(t *testing.T, svc *Service, showtimeID int64, ids ...string) *ReservationSession {
	t.Helper()
	s, err := svc.Booking.NewSession(context.Background(), showtimeID, ids)
	require.NoError(t, err)
	return s
}

func seatStatus(t *testing.T, svc *Service, showtimeID int64, id string) entity.SeatStatus {
	t.Helper()
	seats, err := svc.Inventory.ListSeats(context.Background(), showtimeID)
	require.NoError(t, err)
	for _, s := range seats {
		if s.ID == id {
			return s.Status
		}
	}
	t.Fatalf("seat %s not listed", id)
	return ""
}

func TestInventory_ListSeatsOrderedAndStable(t *testing.T) {
	svc := newFixture(t).service()
	ctx := context.Background()

	first, err := svc.Inventory.ListSeats(ctx, 1)
	require.NoError(t, err)
	second, err := svc.Inventory.ListSeats(ctx, 1)
	require.NoError(t, err)

	require.Len(t, first, 96)
	assert.Equal(t, first, second)
	assert.Equal(t, "A1", first[0].ID)
	assert.Equal(t, "A2", first[1].ID)
	assert.Equal(t, "A10", first[9].ID)
	assert.Equal(t, "H12", first[95].ID)
	for _, s := range first {
		assert.Equal(t, entity.SeatStatusAvailable, s.Status)
	}
}

func TestInventory_UnknownShowtimeAndSeat(t *testing.T) {
	svc := newFixture(t).service()
	ctx := context.Background()

	_, err := svc.Inventory.ListSeats(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Inventory.IsAvailable(ctx, 1, "Z99")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := svc.Inventory.IsAvailable(ctx, 1, "C7")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCommit_HappyPath(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	session := mustSession(t, svc, 1, "A1", "A2")

	booking, err := svc.Booking.Commit(context.Background(), session, validCustomer())
	require.NoError(t, err)

	assert.Equal(t, "23.00", utils.FormatAmount(booking.TotalAmount))
	assert.Equal(t, []string{"A1", "A2"}, booking.SeatIDs)
	assert.Regexp(t, `^BK-[0-9A-Z]{8}-[0-9A-Z]{8}$`, booking.Reference)
	assert.NotEmpty(t, booking.PaymentReference)
	assert.Nil(t, booking.CustomerID)

	assert.Equal(t, entity.SeatStatusBooked, seatStatus(t, svc, 1, "A1"))
	assert.Equal(t, entity.SeatStatusBooked, seatStatus(t, svc, 1, "A2"))
	// other showtimes in the same hall are independent
	assert.Equal(t, entity.SeatStatusAvailable, seatStatus(t, svc, 3, "A1"))

	got, err := svc.Booking.GetBooking(context.Background(), booking.Reference)
	require.NoError(t, err)
	assert.Equal(t, "23.00", got.TotalAmount)
	assert.Equal(t, "Hall 1", got.Hall)
	assert.NotEmpty(t, got.MovieTitle)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, booking.Reference, f.notifier.events[0].Reference)
	assert.Equal(t, "ada@example.com", f.notifier.events[0].Email)
	require.Len(t, f.events.calls, 1)
	assert.Equal(t, []string{"A1", "A2"}, f.events.calls[0])
}

func TestCommit_EmptySelectionTouchesNoStorage(t *testing.T) {
	f := newFixture(t)
	counting := &countingBookings{BookingRepository: f.repo.Booking}
	f.repo.Booking = counting
	svc := f.service()

	_, err := svc.Booking.Commit(context.Background(), NewReservationSession(1), validCustomer())
	assert.ErrorIs(t, err, ErrEmptySelection)

	// empty selection wins over bad customer info
	_, err = svc.Booking.Commit(context.Background(), NewReservationSession(1), &request.CustomerInfo{})
	assert.ErrorIs(t, err, ErrEmptySelection)

	assert.Zero(t, counting.calls.Load())
	authorized, _ := f.gateway.counts()
	assert.Zero(t, authorized)
}

func TestCommit_InvalidCustomerInfo(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	session := mustSession(t, svc, 1, "B1")

	info := validCustomer()
	info.Email = "not-an-email"
	info.Payment.CVV = "12"

	_, err := svc.Booking.Commit(context.Background(), session, info)
	require.ErrorIs(t, err, ErrInvalidCustomerInfo)

	var invalid *InvalidCustomerInfoError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Fields, "email")
	assert.Contains(t, invalid.Fields, "payment.cvv")

	_, err = svc.Booking.Commit(context.Background(), session, nil)
	assert.ErrorIs(t, err, ErrInvalidCustomerInfo)

	blank := validCustomer()
	blank.FirstName = "   "
	blank.LastName = "\t"
	_, err = svc.Booking.Commit(context.Background(), session, blank)
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Fields, "first_name")
	assert.Contains(t, invalid.Fields, "last_name")

	badCVV := validCustomer()
	badCVV.Payment.CVV = "1.5"
	_, err = svc.Booking.Commit(context.Background(), session, badCVV)
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Fields, "payment.cvv")

	assert.Equal(t, entity.SeatStatusAvailable, seatStatus(t, svc, 1, "B1"))
	assert.Zero(t, f.store.BookingCount())
}

func TestCommit_TrimsCustomerInfoAndAcceptsShortPhone(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	session := mustSession(t, svc, 1, "B2")

	info := validCustomer()
	info.FirstName = "  Ada "
	info.Phone = "555"

	booking, err := svc.Booking.Commit(context.Background(), session, info)
	require.NoError(t, err)
	assert.Equal(t, "Ada", booking.Customer.FirstName)
	assert.Equal(t, "555", booking.Customer.Phone)

	stored, err := svc.Booking.GetBooking(context.Background(), booking.Reference)
	require.NoError(t, err)
	assert.Equal(t, "Ada", stored.Customer.FirstName)
	assert.Equal(t, "  Ada ", info.FirstName)
}

func TestCommit_PaymentDeclinedLeavesSeatsAvailable(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	session := mustSession(t, svc, 1, "D4", "D5")

	info := validCustomer()
	info.Payment.CardNumber = "4000000000000002"

	_, err := svc.Booking.Commit(context.Background(), session, info)
	assert.ErrorIs(t, err, ErrPaymentFailed)

	assert.Equal(t, entity.SeatStatusAvailable, seatStatus(t, svc, 1, "D4"))
	assert.Equal(t, entity.SeatStatusAvailable, seatStatus(t, svc, 1, "D5"))
	assert.Zero(t, f.store.BookingCount())
	assert.Empty(t, f.notifier.events)
}

func TestCommit_SecondCommitOnSameSeatConflicts(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	first := mustSession(t, svc, 7, "A5")
	second := mustSession(t, svc, 7, "A5", "A6")

	_, err := svc.Booking.Commit(ctx, first, validCustomer())
	require.NoError(t, err)

	_, err = svc.Booking.Commit(ctx, second, validCustomer())
	require.ErrorIs(t, err, ErrSeatConflict)

	var conflict *SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"A5"}, conflict.SeatIDs)

	// no partial write of A6
	assert.Equal(t, entity.SeatStatusAvailable, seatStatus(t, svc, 7, "A6"))
	assert.Equal(t, 1, f.store.BookingCount())

	// the caller can drop the lost seat and retry
	second.Prune(conflict.SeatIDs...)
	booking, err := svc.Booking.Commit(ctx, second, validCustomer())
	require.NoError(t, err)
	assert.Equal(t, []string{"A6"}, booking.SeatIDs)
	assert.Equal(t, "15.50", utils.FormatAmount(booking.TotalAmount))
}

func TestNewSession_RefusesBookedSeat(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	_, err := svc.Booking.Commit(context.Background(), mustSession(t, svc, 2, "E1"), validCustomer())
	require.NoError(t, err)

	_, err = svc.Booking.NewSession(context.Background(), 2, []string{"E1", "E2"})
	assert.ErrorIs(t, err, ErrSeatConflict)

	_, err = svc.Booking.NewSession(context.Background(), 2, []string{"Z1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommit_ConcurrentCommitsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	const contenders = 16

	sessions := make([]*ReservationSession, contenders)
	for i := range sessions {
		sessions[i] = mustSession(t, svc, 5, "F7", "F8")
	}

	var wins, conflicts atomic.Int64
	var g errgroup.Group
	for _, session := range sessions {
		g.Go(func() error {
			_, err := svc.Booking.Commit(context.Background(), session, validCustomer())
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, ErrSeatConflict):
				conflicts.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, 1, wins.Load())
	assert.EqualValues(t, contenders-1, conflicts.Load())
	assert.Equal(t, 2, f.store.BookedCount(5))
	assert.Equal(t, 1, f.store.BookingCount())

	// every losing authorization that got past the fresh read was voided
	authorized, voided := f.gateway.counts()
	assert.Equal(t, authorized-1, voided)
}

func TestCommit_NotificationFailureKeepsBooking(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")
	svc := f.service()

	booking, err := svc.Booking.Commit(context.Background(), mustSession(t, svc, 1, "H12"), validCustomer())
	require.NoError(t, err)
	require.NotNil(t, booking)

	assert.Equal(t, entity.SeatStatusBooked, seatStatus(t, svc, 1, "H12"))
	assert.Len(t, f.notifier.events, 1)
}

func TestCommit_StorageTimeout(t *testing.T) {
	f := newFixture(t)
	f.repo.Booking = stuckBookings{BookingRepository: f.repo.Booking}
	f.config.StorageTimeout = 20 * time.Millisecond
	svc := f.service()

	_, err := svc.Booking.Commit(context.Background(), mustSession(t, svc, 1, "G1"), validCustomer())
	assert.ErrorIs(t, err, ErrTimeout)

	authorized, voided := f.gateway.counts()
	assert.Equal(t, 1, authorized)
	assert.Equal(t, 1, voided)
	assert.Empty(t, f.notifier.events)
}

func TestCommit_StorageUnavailable(t *testing.T) {
	f := newFixture(t)
	f.repo.Booking = brokenBookings{BookingRepository: f.repo.Booking}
	svc := f.service()

	_, err := svc.Booking.Commit(context.Background(), mustSession(t, svc, 1, "G2"), validCustomer())
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	_, voided := f.gateway.counts()
	assert.Equal(t, 1, voided)
}

func TestCommit_UnknownShowtimeIsNotFound(t *testing.T) {
	svc := newFixture(t).service()

	session := NewReservationSession(404)
	_, _ = session.ToggleSeat(entity.Seat{ID: "A1"})

	_, err := svc.Booking.Commit(context.Background(), session, validCustomer())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommit_RecordsSignedInCustomer(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	customerID := uuid.New()
	ctx := utils.SetCustomerContext(context.Background(), customerID)

	booking, err := svc.Booking.Commit(ctx, mustSession(t, svc, 4, "C1"), validCustomer())
	require.NoError(t, err)
	require.NotNil(t, booking.CustomerID)
	assert.Equal(t, customerID, *booking.CustomerID)

	page, err := svc.Booking.GetCustomerBookings(ctx, customerID, &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, booking.Reference, page.Data[0].Reference)
	assert.EqualValues(t, 1, page.Pagination.Total)
}

func TestGetBooking_UnknownReference(t *testing.T) {
	svc := newFixture(t).service()

	_, err := svc.Booking.GetBooking(context.Background(), "BK-NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuote_PricesSelection(t *testing.T) {
	svc := newFixture(t).service()

	quote, err := svc.Booking.Quote(context.Background(), 7, []string{"b2", "B3", "B2"})
	require.NoError(t, err)

	assert.Equal(t, []string{"B2", "B3"}, quote.SelectedSeatIDs)
	assert.Equal(t, "28.00", quote.Pricing.Subtotal)
	assert.Equal(t, "3.00", quote.Pricing.ServiceFee)
	assert.Equal(t, "31.00", quote.Pricing.Total)

	held := 0
	for _, s := range quote.Seats {
		if s.Status == string(entity.SeatStatusHeld) {
			held++
		}
	}
	assert.Equal(t, 2, held)
}
