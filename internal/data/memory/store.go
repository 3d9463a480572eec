// Package memory is an in-process implementation of the storage ports.
// Every booking write goes through Store.createWithSeats under one lock,
// which makes the revalidate-then-write step atomic.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Store struct {
	log *zap.Logger

	mu        sync.RWMutex
	movies    map[int64]*entity.Movie
	showtimes map[int64]*entity.Showtime
	halls     map[string]entity.Hall
	// showtime -> seat -> booking id
	booked   map[int64]map[string]uuid.UUID
	bookings map[string]*entity.Booking // by reference
	sessions map[string]*entity.Session // by token
}

func NewStore(log *zap.Logger) *Store {
	return &Store{
		log:       log.With(zap.String("repository", "memory")),
		movies:    make(map[int64]*entity.Movie),
		showtimes: make(map[int64]*entity.Showtime),
		halls:     make(map[string]entity.Hall),
		booked:    make(map[int64]map[string]uuid.UUID),
		bookings:  make(map[string]*entity.Booking),
		sessions:  make(map[string]*entity.Session),
	}
}

// Repository exposes the store through the same ports as Postgres.
func (s *Store) Repository() *repository.Repository {
	return &repository.Repository{
		Movie:    movieRepo{s},
		Showtime: showtimeRepo{s},
		Seat:     seatRepo{s},
		Booking:  bookingRepo{s},
		Session:  sessionRepo{s},
	}
}

func (s *Store) AddHall(h entity.Hall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.Rows = slices.Clone(h.Rows)
	s.halls[h.Name] = h
}

func (s *Store) AddMovie(m entity.Movie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movies[m.ID] = &m
}

func (s *Store) AddShowtime(st entity.Showtime) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showtimes[st.ID] = &st
}

func (s *Store) AddSession(sess entity.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token.String()] = &sess
}

// BookedCount reports how many seats are booked for a showtime.
func (s *Store) BookedCount(showtimeID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.booked[showtimeID])
}

// BookingCount reports how many bookings are stored.
func (s *Store) BookingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bookings)
}

func (s *Store) createWithSeats(ctx context.Context, booking *entity.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[booking.Reference]; ok {
		return repository.ErrDuplicateReference
	}

	seats := s.booked[booking.ShowtimeID]
	var taken []string
	for _, id := range booking.SeatIDs {
		if _, ok := seats[id]; ok {
			taken = append(taken, id)
		}
	}
	if len(taken) > 0 {
		slices.Sort(taken)
		return &repository.SeatsTakenError{ShowtimeID: booking.ShowtimeID, SeatIDs: taken}
	}

	if seats == nil {
		seats = make(map[string]uuid.UUID, len(booking.SeatIDs))
		s.booked[booking.ShowtimeID] = seats
	}
	for _, id := range booking.SeatIDs {
		seats[id] = booking.ID
	}
	s.bookings[booking.Reference] = booking.Clone()

	s.log.Debug("Booking stored",
		zap.String("reference", booking.Reference),
		zap.Int64("showtime_id", booking.ShowtimeID),
		zap.Strings("seat_ids", booking.SeatIDs),
	)
	return nil
}

type movieRepo struct{ s *Store }

func (r movieRepo) FindByID(ctx context.Context, id int64) (*entity.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.movies[id]
	if !ok {
		return nil, nil
	}
	c := *m
	return &c, nil
}

func (r movieRepo) FindAll(ctx context.Context, offset, limit int) ([]*entity.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]int64, 0, len(r.s.movies))
	for id := range r.s.movies {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var out []*entity.Movie
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		c := *r.s.movies[ids[i]]
		out = append(out, &c)
	}
	return out, nil
}

func (r movieRepo) CountAll(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.movies)), nil
}

type showtimeRepo struct{ s *Store }

func (r showtimeRepo) FindByID(ctx context.Context, id int64) (*entity.Showtime, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st, ok := r.s.showtimes[id]
	if !ok {
		return nil, nil
	}
	c := *st
	return &c, nil
}

func (r showtimeRepo) FindByMovieID(ctx context.Context, movieID int64) ([]*entity.Showtime, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*entity.Showtime
	for _, st := range r.s.showtimes {
		if st.MovieID == movieID {
			c := *st
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *entity.Showtime) int {
		if c := a.ShowDate.Compare(b.ShowDate); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

type seatRepo struct{ s *Store }

func (r seatRepo) FindByHall(ctx context.Context, hall string) ([]*entity.Seat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	h, ok := r.s.halls[hall]
	r.s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	layout := h.Layout()
	entity.SortSeats(layout)
	out := make([]*entity.Seat, len(layout))
	for i := range layout {
		out[i] = &layout[i]
	}
	return out, nil
}

type bookingRepo struct{ s *Store }

func (r bookingRepo) FindBookedSeatIDs(ctx context.Context, showtimeID int64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seats := r.s.booked[showtimeID]
	out := make([]string, 0, len(seats))
	for id := range seats {
		out = append(out, id)
	}
	return out, nil
}

func (r bookingRepo) CreateWithSeats(ctx context.Context, booking *entity.Booking) error {
	return r.s.createWithSeats(ctx, booking)
}

func (r bookingRepo) FindByReference(ctx context.Context, reference string) (*entity.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.bookings[reference].Clone(), nil
}

func (r bookingRepo) customerBookings(customerID uuid.UUID) []*entity.Booking {
	var out []*entity.Booking
	for _, b := range r.s.bookings {
		if b.CustomerID != nil && *b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b *entity.Booking) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func (r bookingRepo) FindByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.customerBookings(customerID)
	var out []*entity.Booking
	for i := offset; i < len(all) && len(out) < limit; i++ {
		out = append(out, all[i].Clone())
	}
	return out, nil
}

func (r bookingRepo) CountByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.customerBookings(customerID))), nil
}

type sessionRepo struct{ s *Store }

func (r sessionRepo) FindValidSession(ctx context.Context, token string) (*entity.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sess, ok := r.s.sessions[token]
	if !ok || !sess.Valid(time.Now()) {
		return nil, nil
	}
	c := *sess
	return &c, nil
}
