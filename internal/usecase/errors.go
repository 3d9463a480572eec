package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"cinema-reservation/internal/data/repository"
)

// Errors returned by the booking core. Handlers map them to status codes.
var (
	ErrInvalidCustomerInfo = errors.New("invalid customer info")
	ErrEmptySelection      = errors.New("no seats selected")
	ErrPaymentFailed       = errors.New("payment failed")
	ErrSeatConflict        = errors.New("seats are no longer available")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrTimeout             = errors.New("operation timed out")
	ErrNotFound            = errors.New("not found")
	ErrSeatUnavailable     = errors.New("seat is not available")
)

// SeatConflictError lists seats that were booked by someone else.
type SeatConflictError struct {
	SeatIDs []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSeatConflict, strings.Join(e.SeatIDs, ", "))
}

func (e *SeatConflictError) Is(target error) bool {
	return target == ErrSeatConflict
}

// InvalidCustomerInfoError maps field names to messages.
type InvalidCustomerInfoError struct {
	Fields map[string]string
}

func (e *InvalidCustomerInfoError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidCustomerInfo, formatFields(e.Fields))
}

func (e *InvalidCustomerInfoError) Is(target error) bool {
	return target == ErrInvalidCustomerInfo
}

func formatFields(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for f, msg := range fields {
		parts = append(parts, f+": "+msg)
	}
	slices.Sort(parts)
	return strings.Join(parts, "; ")
}

// storageError classifies a failed storage call.
func storageError(op string, err error) error {
	switch {
	case repository.IsTimeout(err):
		return fmt.Errorf("%s: %w: %v", op, ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
	}
}

func notFound(what string, id any) error {
	return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
}
