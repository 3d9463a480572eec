package adaptor

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cinema-reservation/internal/dto/response"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

// statusClientClosedRequest is nginx's code for a client that went away.
const statusClientClosedRequest = 499

// handleServiceError maps booking-core errors to HTTP responses.
// showtimeID is used for the refresh hint on seat conflicts; pass 0 if unknown.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string, showtimeID int64) {
	var conflict *usecase.SeatConflictError
	var invalid *usecase.InvalidCustomerInfoError

	switch {
	case errors.As(err, &invalid):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, "Invalid customer info", invalid.Fields)

	case errors.Is(err, usecase.ErrEmptySelection):
		log.Warn(operation+" with no seats", zap.Error(err))
		utils.ResponseBadRequest(w, "Select at least one seat", nil)

	case errors.As(err, &conflict):
		log.Info(operation+" lost seats to another booking", zap.Strings("seat_ids", conflict.SeatIDs))
		details := response.SeatConflictDetails{ConflictingSeatIDs: conflict.SeatIDs}
		if showtimeID > 0 {
			details.RefreshSeats = fmt.Sprintf("/api/showtimes/%d/seats", showtimeID)
		}
		utils.ResponseConflict(w, "Some seats are no longer available", details)

	case errors.Is(err, usecase.ErrSeatUnavailable):
		log.Info(operation+" on a booked seat", zap.Error(err))
		utils.ResponseConflict(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrPaymentFailed):
		log.Warn(operation+" payment failed", zap.Error(err))
		utils.ResponsePaymentRequired(w, "Payment was declined")

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		log.Error(operation+" timed out", zap.Error(err))
		utils.ResponseGatewayTimeout(w, "The request timed out, please retry")

	case errors.Is(err, usecase.ErrStorageUnavailable):
		log.Error(operation+" storage unavailable", zap.Error(err))
		utils.ResponseServiceUnavailable(w, "Service temporarily unavailable, please retry")

	case errors.Is(err, context.Canceled):
		log.Info(operation+" canceled by client", zap.Error(err))
		w.WriteHeader(statusClientClosedRequest)

	default:
		log.Error(operation+" failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
