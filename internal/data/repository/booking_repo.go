package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	// FindBookedSeatIDs lists every seat committed for the showtime.
	FindBookedSeatIDs(ctx context.Context, showtimeID int64) ([]string, error)

	// CreateWithSeats stores the booking and marks its seats booked in one
	// transaction. If any seat is already booked nothing is written and a
	// *SeatsTakenError names the taken seats.
	CreateWithSeats(ctx context.Context, booking *entity.Booking) error

	FindByReference(ctx context.Context, reference string) (*entity.Booking, error)
	FindByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) FindBookedSeatIDs(ctx context.Context, showtimeID int64) ([]string, error) {
	query := `SELECT seat_id FROM booked_seats WHERE showtime_id = $1`

	rows, err := r.db.Query(ctx, query, showtimeID)
	if err != nil {
		r.log.Error("Failed to find booked seats",
			zap.Error(err),
			zap.Int64("showtime_id", showtimeID),
		)
		return nil, fmt.Errorf("find booked seats for showtime %d: %w", showtimeID, err)
	}

	seatIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan booked seats for showtime %d: %w", showtimeID, err)
	}

	return seatIDs, nil
}

func (r *bookingRepository) CreateWithSeats(ctx context.Context, booking *entity.Booking) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Revalidate under the transaction. The unique key below still decides
	// races between concurrent transactions.
	rows, err := tx.Query(ctx,
		`SELECT seat_id FROM booked_seats WHERE showtime_id = $1 AND seat_id = ANY($2)`,
		booking.ShowtimeID, booking.SeatIDs)
	if err != nil {
		return fmt.Errorf("revalidate seats: %w", err)
	}
	taken, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("revalidate seats: %w", err)
	}
	if len(taken) > 0 {
		slices.Sort(taken)
		return &SeatsTakenError{ShowtimeID: booking.ShowtimeID, SeatIDs: taken}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (id, booking_reference, showtime_id, customer_id,
		                      first_name, last_name, email, phone,
		                      total_amount, payment_reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		booking.ID,
		booking.Reference,
		booking.ShowtimeID,
		booking.CustomerID,
		booking.Customer.FirstName,
		booking.Customer.LastName,
		booking.Customer.Email,
		booking.Customer.Phone,
		booking.TotalAmount,
		booking.PaymentReference,
		booking.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "bookings_booking_reference_key") {
			return ErrDuplicateReference
		}
		r.log.Error("Failed to insert booking",
			zap.Error(err),
			zap.String("reference", booking.Reference),
		)
		return fmt.Errorf("insert booking %s: %w", booking.Reference, err)
	}

	for _, seatID := range booking.SeatIDs {
		tag, execErr := tx.Exec(ctx, `
			INSERT INTO booked_seats (showtime_id, seat_id, booking_id)
			VALUES ($1, $2, $3)
			ON CONFLICT ON CONSTRAINT uq_booked_seats_showtime_seat DO NOTHING
		`, booking.ShowtimeID, seatID, booking.ID)
		if execErr != nil {
			return fmt.Errorf("insert booked seat %s: %w", seatID, execErr)
		}
		if tag.RowsAffected() == 0 {
			taken = append(taken, seatID)
		}
	}
	if len(taken) > 0 {
		slices.Sort(taken)
		return &SeatsTakenError{ShowtimeID: booking.ShowtimeID, SeatIDs: taken}
	}

	if err = tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit booking",
			zap.Error(err),
			zap.String("reference", booking.Reference),
		)
		return fmt.Errorf("commit booking %s: %w", booking.Reference, err)
	}

	return nil
}

const bookingSelect = `
		SELECT b.id, b.booking_reference, b.showtime_id, b.customer_id,
		       b.first_name, b.last_name, b.email, b.phone,
		       b.total_amount, b.payment_reference, b.created_at,
		       COALESCE(array_agg(bs.seat_id ORDER BY length(bs.seat_id), bs.seat_id)
		                FILTER (WHERE bs.seat_id IS NOT NULL), '{}')
		FROM bookings b
		LEFT JOIN booked_seats bs ON bs.booking_id = b.id
`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.Reference,
		&booking.ShowtimeID,
		&booking.CustomerID,
		&booking.Customer.FirstName,
		&booking.Customer.LastName,
		&booking.Customer.Email,
		&booking.Customer.Phone,
		&booking.TotalAmount,
		&booking.PaymentReference,
		&booking.CreatedAt,
		&booking.SeatIDs,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByReference(ctx context.Context, reference string) (*entity.Booking, error) {
	query := bookingSelect + `
		WHERE b.booking_reference = $1
		GROUP BY b.id
	`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, reference))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by reference",
			zap.Error(err),
			zap.String("reference", reference),
		)
		return nil, fmt.Errorf("find booking %s: %w", reference, err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := bookingSelect + `
		WHERE b.customer_id = $1
		GROUP BY b.id
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by customer ID",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find bookings for customer %s: %w", customerID, err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, nil
}

func (r *bookingRepository) CountByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE customer_id = $1`, customerID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by customer ID",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
		)
		return 0, fmt.Errorf("count bookings for customer %s: %w", customerID, err)
	}

	return count, nil
}
