package response

import (
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/utils"
)

type MovieResponse struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	PosterURL   string   `json:"poster_url,omitempty"`
	Genres      []string `json:"genres"`
	Duration    string   `json:"duration"`
	Rating      string   `json:"rating"`
	Director    string   `json:"director,omitempty"`
	Cast        []string `json:"cast,omitempty"`
	ReleaseDate string   `json:"release_date"`
}

type ShowtimeResponse struct {
	ID                int64  `json:"id"`
	MovieID           int64  `json:"movie_id"`
	Date              string `json:"date"`
	Time              string `json:"time"`
	Hall              string `json:"hall"`
	Price             string `json:"price"`
	ServiceFeePerSeat string `json:"service_fee_per_seat,omitempty"`
}

type MovieDetailResponse struct {
	MovieResponse
	Showtimes []ShowtimeResponse `json:"showtimes"`
}

// Helper converters
func MovieToResponse(movie *entity.Movie) MovieResponse {
	return MovieResponse{
		ID:          movie.ID,
		Title:       movie.Title,
		Description: movie.Description,
		PosterURL:   movie.PosterURL,
		Genres:      movie.Genres,
		Duration:    movie.Duration,
		Rating:      movie.Rating,
		Director:    movie.Director,
		Cast:        movie.Cast,
		ReleaseDate: movie.ReleaseDate.Format(time.DateOnly),
	}
}

func ShowtimeToResponse(showtime *entity.Showtime) ShowtimeResponse {
	return ShowtimeResponse{
		ID:      showtime.ID,
		MovieID: showtime.MovieID,
		Date:    showtime.ShowDate.Format(time.DateOnly),
		Time:    showtime.ShowTime,
		Hall:    showtime.Hall,
		Price:   utils.FormatAmount(showtime.Price),
	}
}
