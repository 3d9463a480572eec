package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"cinema-reservation/internal/data/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var revalidateSeats = regexp.QuoteMeta(`SELECT seat_id FROM booked_seats WHERE showtime_id = $1 AND seat_id = ANY($2)`)

func newMockBookingRepo(t *testing.T) (pgxmock.PgxPoolIface, BookingRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewBookingRepository(mock, zap.NewNop())
}

func sampleBooking(seatIDs ...string) *entity.Booking {
	return &entity.Booking{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now().UTC(),
		},
		Reference:  "BK-01JD3K5Q-8XYZ2ABC",
		ShowtimeID: 7,
		SeatIDs:    seatIDs,
		Customer: entity.Customer{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Phone:     "555",
		},
		TotalAmount:      decimal.RequireFromString("31.00"),
		PaymentReference: "auth_1",
	}
}

func TestCreateWithSeats_Commits(t *testing.T) {
	mock, repo := newMockBookingRepo(t)
	booking := sampleBooking("A5", "A6")

	mock.ExpectBegin()
	mock.ExpectQuery(revalidateSeats).
		WithArgs(int64(7), []string{"A5", "A6"}).
		WillReturnRows(pgxmock.NewRows([]string{"seat_id"}))
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO booked_seats").
		WithArgs(int64(7), "A5", booking.ID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO booked_seats").
		WithArgs(int64(7), "A6", booking.ID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateWithSeats(context.Background(), booking))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithSeats_RevalidationFindsTakenSeats(t *testing.T) {
	mock, repo := newMockBookingRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(revalidateSeats).
		WithArgs(int64(7), []string{"A6", "A5"}).
		WillReturnRows(pgxmock.NewRows([]string{"seat_id"}).AddRow("A6").AddRow("A5"))
	mock.ExpectRollback()

	err := repo.CreateWithSeats(context.Background(), sampleBooking("A6", "A5"))

	var taken *SeatsTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, int64(7), taken.ShowtimeID)
	assert.Equal(t, []string{"A5", "A6"}, taken.SeatIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithSeats_LostRaceOnSeatInsert(t *testing.T) {
	mock, repo := newMockBookingRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(revalidateSeats).WillReturnRows(pgxmock.NewRows([]string{"seat_id"}))
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO booked_seats").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO booked_seats").WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectRollback()

	err := repo.CreateWithSeats(context.Background(), sampleBooking("A5", "A6"))

	var taken *SeatsTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, []string{"A6"}, taken.SeatIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithSeats_DuplicateReference(t *testing.T) {
	mock, repo := newMockBookingRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(revalidateSeats).WillReturnRows(pgxmock.NewRows([]string{"seat_id"}))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "bookings_booking_reference_key"})
	mock.ExpectRollback()

	err := repo.CreateWithSeats(context.Background(), sampleBooking("A5"))

	assert.ErrorIs(t, err, ErrDuplicateReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithSeats_StorageErrorRollsBack(t *testing.T) {
	mock, repo := newMockBookingRepo(t)
	dbDown := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectQuery(revalidateSeats).WillReturnRows(pgxmock.NewRows([]string{"seat_id"}))
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO booked_seats").WillReturnError(dbDown)
	mock.ExpectRollback()

	err := repo.CreateWithSeats(context.Background(), sampleBooking("A5"))

	assert.ErrorIs(t, err, dbDown)
	var taken *SeatsTakenError
	assert.False(t, errors.As(err, &taken))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindBookedSeatIDs(t *testing.T) {
	mock, repo := newMockBookingRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT seat_id FROM booked_seats WHERE showtime_id = $1`)).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"seat_id"}).AddRow("A5").AddRow("C3"))

	ids, err := repo.FindBookedSeatIDs(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, []string{"A5", "C3"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByReference_Missing(t *testing.T) {
	mock, repo := newMockBookingRepo(t)

	mock.ExpectQuery("WHERE b.booking_reference = ").
		WithArgs("BK-NOPE").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "booking_reference", "showtime_id", "customer_id",
			"first_name", "last_name", "email", "phone",
			"total_amount", "payment_reference", "created_at", "seat_ids",
		}))

	booking, err := repo.FindByReference(context.Background(), "BK-NOPE")

	require.NoError(t, err)
	assert.Nil(t, booking)
	assert.NoError(t, mock.ExpectationsWereMet())
}
