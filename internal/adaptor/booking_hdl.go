package adaptor

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/redisx"
	"cinema-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	idempotencyHeader  = "Idempotency-Key"
	idempotencyLockTTL = 2 * time.Minute
	maxIdempotencyKey  = 128
)

type IdempotencyStore interface {
	AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error)
	SaveResult(ctx context.Context, key string, payload []byte) error
	GetResult(ctx context.Context, key string) ([]byte, bool, error)
	Release(ctx context.Context, key string) error
}

type BookingHandler struct {
	service usecase.BookingService
	idem    IdempotencyStore
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, idem IdempotencyStore, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		idem:    idem,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req request.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	if req.ShowtimeID <= 0 {
		utils.ResponseBadRequest(w, "Validation failed", map[string]string{"showtime_id": "This field is required"})
		return
	}

	key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
	if len(key) > maxIdempotencyKey {
		utils.ResponseBadRequest(w, "Idempotency-Key is too long", nil)
		return
	}
	if key == "" || h.idem == nil {
		h.createBooking(w, r, &req, "")
		return
	}

	storeKey := redisx.KeyIdempotency("booking", key)
	if payload, ok, err := h.idem.GetResult(r.Context(), storeKey); err != nil {
		h.log.Warn("Idempotency lookup failed, continuing without it", zap.Error(err))
		h.createBooking(w, r, &req, "")
		return
	} else if ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Idempotent-Replayed", "true")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(payload)
		return
	}

	locked, err := h.idem.AcquireLock(r.Context(), storeKey, idempotencyLockTTL)
	if err != nil {
		h.log.Warn("Idempotency lock failed, continuing without it", zap.Error(err))
		h.createBooking(w, r, &req, "")
		return
	}
	if !locked {
		utils.ResponseConflict(w, "A request with this Idempotency-Key is already in progress", nil)
		return
	}

	h.createBooking(w, r, &req, storeKey)
}

// createBooking commits and, when storeKey is set, records the response for replays.
func (h *BookingHandler) createBooking(w http.ResponseWriter, r *http.Request, req *request.CreateBookingRequest, storeKey string) {
	ctx := r.Context()

	booking, err := h.service.Book(ctx, req)
	if err != nil {
		if storeKey != "" {
			if relErr := h.idem.Release(context.WithoutCancel(ctx), storeKey); relErr != nil {
				h.log.Warn("Failed to release idempotency key", zap.Error(relErr))
			}
		}
		handleServiceError(w, h.log, err, "create booking", req.ShowtimeID)
		return
	}

	resp := h.service.BookingResponse(ctx, booking)
	body := utils.Response{
		Status:  true,
		Message: "Booking confirmed",
		Data:    resp,
	}

	if storeKey != "" {
		if payload, err := json.Marshal(body); err == nil {
			if err := h.idem.SaveResult(context.WithoutCancel(ctx), storeKey, payload); err != nil {
				h.log.Warn("Failed to save idempotent result", zap.Error(err), zap.String("reference", booking.Reference))
			}
		}
	}

	utils.ResponseCreated(w, body.Message, resp)
}

// GetBookingByReference handles GET /api/bookings/{reference}
func (h *BookingHandler) GetBookingByReference(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	if strings.TrimSpace(reference) == "" {
		utils.ResponseBadRequest(w, "Booking reference is required", nil)
		return
	}

	booking, err := h.service.GetBooking(r.Context(), reference)
	if err != nil {
		handleServiceError(w, h.log, err, "get booking", 0)
		return
	}

	utils.ResponseSuccess(w, "Booking retrieved successfully", booking)
}

// GetUserBookings handles GET /api/user/bookings
func (h *BookingHandler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	customerID, ok := utils.GetCustomerIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		utils.ResponseBadRequest(w, "Invalid pagination", errs)
		return
	}

	bookings, err := h.service.GetCustomerBookings(r.Context(), customerID, req)
	if err != nil {
		handleServiceError(w, h.log, err, "get customer bookings", 0)
		return
	}

	utils.ResponseSuccess(w, "Bookings retrieved successfully", bookings)
}
