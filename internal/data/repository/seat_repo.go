package repository

import (
	"context"
	"fmt"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/database"

	"go.uber.org/zap"
)

// SeatRepository exposes hall layouts. Seat status is derived per showtime
// from committed bookings, never stored on the seat.
type SeatRepository interface {
	FindByHall(ctx context.Context, hall string) ([]*entity.Seat, error)
}

type seatRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSeatRepository(db database.PgxIface, log *zap.Logger) SeatRepository {
	return &seatRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat")),
	}
}

func (r *seatRepository) FindByHall(ctx context.Context, hall string) ([]*entity.Seat, error) {
	query := `
		SELECT id, hall, seat_row, seat_number
		FROM seats
		WHERE hall = $1
		ORDER BY length(seat_row), seat_row, seat_number
	`

	rows, err := r.db.Query(ctx, query, hall)
	if err != nil {
		r.log.Error("Failed to find seats by hall",
			zap.Error(err),
			zap.String("hall", hall),
		)
		return nil, fmt.Errorf("find seats for hall %s: %w", hall, err)
	}
	defer rows.Close()

	var seats []*entity.Seat
	for rows.Next() {
		var seat entity.Seat
		if err := rows.Scan(&seat.ID, &seat.Hall, &seat.Row, &seat.Number); err != nil {
			r.log.Error("Failed to scan seat row", zap.Error(err))
			return nil, fmt.Errorf("scan seat row: %w", err)
		}
		seats = append(seats, &seat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seats: %w", err)
	}

	return seats, nil
}
