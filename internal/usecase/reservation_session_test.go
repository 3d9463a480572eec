package usecase

import (
	"testing"

	"cinema-reservation/internal/data/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seat(id string, status entity.SeatStatus) entity.Seat {
	return entity.Seat{ID: id, Hall: "Hall 1", Row: id[:1], Status: status}
}

func TestReservationSession_ToggleSelectsAndReleases(t *testing.T) {
	s := NewReservationSession(1)

	selected, err := s.ToggleSeat(seat("A1", entity.SeatStatusAvailable))
	require.NoError(t, err)
	assert.True(t, selected)

	selected, err = s.ToggleSeat(seat("A2", entity.SeatStatusAvailable))
	require.NoError(t, err)
	assert.True(t, selected)
	assert.Equal(t, []string{"A1", "A2"}, s.SelectedSeatIDs())

	selected, err = s.ToggleSeat(seat("A1", entity.SeatStatusAvailable))
	require.NoError(t, err)
	assert.False(t, selected)
	assert.Equal(t, []string{"A2"}, s.SelectedSeatIDs())
	assert.False(t, s.IsSelected("A1"))
}

func TestReservationSession_BookedSeatIsRefused(t *testing.T) {
	s := NewReservationSession(1)
	_, err := s.ToggleSeat(seat("B3", entity.SeatStatusAvailable))
	require.NoError(t, err)

	selected, err := s.ToggleSeat(seat("C4", entity.SeatStatusBooked))

	assert.ErrorIs(t, err, ErrSeatUnavailable)
	assert.False(t, selected)
	assert.Equal(t, []string{"B3"}, s.SelectedSeatIDs())
}

func TestReservationSession_SelectedSeatIDsIsACopy(t *testing.T) {
	s := NewReservationSession(1)
	_, _ = s.ToggleSeat(seat("A1", entity.SeatStatusAvailable))

	ids := s.SelectedSeatIDs()
	ids[0] = "Z9"

	assert.Equal(t, []string{"A1"}, s.SelectedSeatIDs())
}

func TestReservationSession_ClearAndPrune(t *testing.T) {
	s := NewReservationSession(1)
	for _, id := range []string{"A1", "A2", "A3"} {
		_, _ = s.ToggleSeat(seat(id, entity.SeatStatusAvailable))
	}

	s.Prune("A2", "Q1")
	assert.Equal(t, []string{"A1", "A3"}, s.SelectedSeatIDs())

	s.Clear()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.SelectedSeatIDs())
}

func TestReservationSession_ComputeTotal(t *testing.T) {
	calc := NewPricingCalculator(dec("1.50"))
	showtime := &entity.Showtime{ID: 1, Price: dec("10")}
	s := NewReservationSession(1)

	assert.True(t, s.ComputeTotal(calc, showtime).Total.IsZero())

	_, _ = s.ToggleSeat(seat("A1", entity.SeatStatusAvailable))
	_, _ = s.ToggleSeat(seat("A2", entity.SeatStatusAvailable))

	assert.Equal(t, "23.00", s.ComputeTotal(calc, showtime).Response().Total)
}

func TestReservationSession_ViewOverlaysHolds(t *testing.T) {
	seats := []entity.Seat{
		seat("A1", entity.SeatStatusAvailable),
		seat("A2", entity.SeatStatusBooked),
		seat("A3", entity.SeatStatusAvailable),
	}
	s := NewReservationSession(1)
	_, _ = s.ToggleSeat(seats[2])

	view := s.View(seats)

	assert.Equal(t, entity.SeatStatusAvailable, view[0].Status)
	assert.Equal(t, entity.SeatStatusBooked, view[1].Status)
	assert.Equal(t, entity.SeatStatusHeld, view[2].Status)
	// snapshot untouched
	assert.Equal(t, entity.SeatStatusAvailable, seats[2].Status)
}
