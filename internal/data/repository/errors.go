package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// ErrDuplicateReference means the booking reference is already taken.
var ErrDuplicateReference = errors.New("booking reference already exists")

// SeatsTakenError aborts a booking write because some seats were booked first.
// Nothing from the aborted write is stored.
type SeatsTakenError struct {
	ShowtimeID int64
	SeatIDs    []string
}

func (e *SeatsTakenError) Error() string {
	return fmt.Sprintf("seats already booked for showtime %d: %s", e.ShowtimeID, strings.Join(e.SeatIDs, ", "))
}

// IsTimeout reports whether a storage error came from a deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err)
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
