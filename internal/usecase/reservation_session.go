package usecase

import (
	"fmt"
	"slices"

	"cinema-reservation/internal/data/entity"
)

// ReservationSession is one customer's in-progress seat selection for a
// showtime. Holds live only here. Nothing is written to inventory until
// the booking commits, so dropping a session needs no cleanup.
//
// A session is not safe for concurrent use.
type ReservationSession struct {
	showtimeID int64
	selected   []string
}

func NewReservationSession(showtimeID int64) *ReservationSession {
	return &ReservationSession{showtimeID: showtimeID}
}

func (s *ReservationSession) ShowtimeID() int64 { return s.showtimeID }

// ToggleSeat selects an unselected seat or releases a selected one and
// reports whether the seat is selected afterwards. Booked seats are refused
// and leave the session unchanged.
func (s *ReservationSession) ToggleSeat(seat entity.Seat) (bool, error) {
	if seat.Status == entity.SeatStatusBooked {
		return false, fmt.Errorf("seat %s: %w", seat.ID, ErrSeatUnavailable)
	}

	if i := slices.Index(s.selected, seat.ID); i >= 0 {
		s.selected = slices.Delete(s.selected, i, i+1)
		return false, nil
	}

	s.selected = append(s.selected, seat.ID)
	return true, nil
}

func (s *ReservationSession) IsSelected(seatID string) bool {
	return slices.Contains(s.selected, seatID)
}

// SelectedSeatIDs returns the selection in the order seats were picked.
func (s *ReservationSession) SelectedSeatIDs() []string {
	return slices.Clone(s.selected)
}

func (s *ReservationSession) Len() int { return len(s.selected) }

// ComputeTotal prices the current selection.
func (s *ReservationSession) ComputeTotal(calc *PricingCalculator, showtime *entity.Showtime) Pricing {
	return calc.Calculate(len(s.selected), showtime.Price)
}

func (s *ReservationSession) Clear() {
	s.selected = nil
}

// Prune drops the given seats, typically the ones named by a SeatConflictError.
func (s *ReservationSession) Prune(seatIDs ...string) {
	s.selected = slices.DeleteFunc(s.selected, func(id string) bool {
		return slices.Contains(seatIDs, id)
	})
}

// View overlays this session's holds on an inventory snapshot. The snapshot
// is not modified.
func (s *ReservationSession) View(seats []entity.Seat) []entity.Seat {
	out := slices.Clone(seats)
	for i := range out {
		if out[i].Status != entity.SeatStatusBooked && s.IsSelected(out[i].ID) {
			out[i].Status = entity.SeatStatusHeld
		}
	}
	return out
}
