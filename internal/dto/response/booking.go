package response

import (
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/utils"
)

type SeatResponse struct {
	ID     string `json:"id"`
	Row    string `json:"row"`
	Number int    `json:"number"`
	Status string `json:"status"`
}

type SeatMapResponse struct {
	Showtime  ShowtimeResponse `json:"showtime"`
	Seats     []SeatResponse   `json:"seats"`
	Available int              `json:"available"`
	Booked    int              `json:"booked"`
}

type PricingResponse struct {
	SeatCount  int    `json:"seat_count"`
	UnitPrice  string `json:"unit_price"`
	Subtotal   string `json:"subtotal"`
	ServiceFee string `json:"service_fee"`
	Total      string `json:"total"`
}

// QuoteResponse is the seat map as one customer's session sees it.
type QuoteResponse struct {
	ShowtimeID      int64           `json:"showtime_id"`
	SelectedSeatIDs []string        `json:"selected_seat_ids"`
	Seats           []SeatResponse  `json:"seats"`
	Pricing         PricingResponse `json:"pricing"`
}

type CustomerResponse struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type BookingResponse struct {
	Reference   string           `json:"reference"`
	ShowtimeID  int64            `json:"showtime_id"`
	MovieTitle  string           `json:"movie_title,omitempty"`
	ShowDate    string           `json:"show_date,omitempty"`
	ShowTime    string           `json:"show_time,omitempty"`
	Hall        string           `json:"hall,omitempty"`
	SeatIDs     []string         `json:"seat_ids"`
	Customer    CustomerResponse `json:"customer"`
	TotalAmount string           `json:"total_amount"`
	CreatedAt   time.Time        `json:"created_at"`
}

// SeatConflictDetails tells the client which seats to drop and where to refresh.
type SeatConflictDetails struct {
	ConflictingSeatIDs []string `json:"conflicting_seat_ids"`
	RefreshSeats       string   `json:"refresh_seats,omitempty"`
}

// Helper converters
func SeatsToResponse(seats []entity.Seat) []SeatResponse {
	out := make([]SeatResponse, len(seats))
	for i, s := range seats {
		out[i] = SeatResponse{
			ID:     s.ID,
			Row:    s.Row,
			Number: s.Number,
			Status: string(s.Status),
		}
	}
	return out
}

// BookingToResponse fills showtime and movie details when they are known.
func BookingToResponse(booking *entity.Booking, showtime *entity.Showtime, movie *entity.Movie) BookingResponse {
	resp := BookingResponse{
		Reference:  booking.Reference,
		ShowtimeID: booking.ShowtimeID,
		SeatIDs:    booking.SeatIDs,
		Customer: CustomerResponse{
			FirstName: booking.Customer.FirstName,
			LastName:  booking.Customer.LastName,
			Email:     booking.Customer.Email,
			Phone:     booking.Customer.Phone,
		},
		TotalAmount: utils.FormatAmount(booking.TotalAmount),
		CreatedAt:   booking.CreatedAt,
	}

	if showtime != nil {
		resp.ShowDate = showtime.ShowDate.Format(time.DateOnly)
		resp.ShowTime = showtime.ShowTime
		resp.Hall = showtime.Hall
	}
	if movie != nil {
		resp.MovieTitle = movie.Title
	}

	return resp
}
