package adaptor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/redisx"
	"cinema-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const heartbeatInterval = 25 * time.Second

type SeatEventSubscriber interface {
	Subscribe(ctx context.Context, handler func(ctx context.Context, ev redisx.SeatsChanged)) error
}

type ShowtimeHandler struct {
	movies   usecase.MovieService
	bookings usecase.BookingService
	events   SeatEventSubscriber
	log      *zap.Logger
}

func NewShowtimeHandler(movies usecase.MovieService, bookings usecase.BookingService, events SeatEventSubscriber, log *zap.Logger) *ShowtimeHandler {
	return &ShowtimeHandler{
		movies:   movies,
		bookings: bookings,
		events:   events,
		log:      log.With(zap.String("handler", "showtime")),
	}
}

func showtimeIDParam(r *http.Request) (int64, error) {
	return utils.ParseID(chi.URLParam(r, "id"))
}

// GetShowtime handles GET /api/showtimes/{id}
func (h *ShowtimeHandler) GetShowtime(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := showtimeIDParam(r)
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid showtime ID", nil)
		return
	}

	showtime, err := h.movies.GetShowtime(r.Context(), showtimeID)
	if err != nil {
		handleServiceError(w, h.log, err, "get showtime", showtimeID)
		return
	}

	utils.ResponseSuccess(w, "Showtime retrieved successfully", showtime)
}

// GetSeats handles GET /api/showtimes/{id}/seats
func (h *ShowtimeHandler) GetSeats(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := showtimeIDParam(r)
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid showtime ID", nil)
		return
	}

	seatMap, err := h.movies.GetSeatMap(r.Context(), showtimeID)
	if err != nil {
		handleServiceError(w, h.log, err, "get seats", showtimeID)
		return
	}

	utils.ResponseSuccess(w, "Seats retrieved successfully", seatMap)
}

// Quote handles POST /api/showtimes/{id}/quote
func (h *ShowtimeHandler) Quote(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := showtimeIDParam(r)
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid showtime ID", nil)
		return
	}

	var req request.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", errs)
		return
	}

	quote, err := h.bookings.Quote(r.Context(), showtimeID, req.SeatIDs)
	if err != nil {
		handleServiceError(w, h.log, err, "quote", showtimeID)
		return
	}

	utils.ResponseSuccess(w, "Quote calculated", quote)
}

// Events handles GET /api/showtimes/{id}/events as server-sent events.
// Each event names seats that were just booked.
func (h *ShowtimeHandler) Events(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := showtimeIDParam(r)
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid showtime ID", nil)
		return
	}
	if h.events == nil {
		utils.ResponseServiceUnavailable(w, "Live seat updates are not enabled")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.ResponseInternalError(w, "Streaming unsupported")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates := make(chan redisx.SeatsChanged, 16)
	subErr := make(chan error, 1)
	go func() {
		subErr <- h.events.Subscribe(ctx, func(_ context.Context, ev redisx.SeatsChanged) {
			if ev.ShowtimeID != showtimeID {
				return
			}
			select {
			case updates <- ev:
			default:
				// slow reader; it refetches on the next event anyway
			}
		})
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "event: ready\ndata: {\"showtime_id\":%d}\n\n", showtimeID)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-subErr:
			if err != nil && ctx.Err() == nil {
				h.log.Warn("Seat event subscription ended", zap.Error(err), zap.Int64("showtime_id", showtimeID))
			}
			return
		case ev := <-updates:
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: seats\ndata: %s\n\n", payload)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}
