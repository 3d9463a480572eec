package memory

import (
	"time"

	"cinema-reservation/internal/data/entity"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var standardRows = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

// DemoHalls are three identical 8x12 auditoriums.
func DemoHalls() []entity.Hall {
	return []entity.Hall{
		{Name: "Hall 1", Rows: standardRows, SeatsPerRow: 12},
		{Name: "Hall 2", Rows: standardRows, SeatsPerRow: 12},
		{Name: "Hall 3", Rows: standardRows, SeatsPerRow: 12},
	}
}

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func DemoMovies() []entity.Movie {
	return []entity.Movie{
		{
			ID:          1,
			Title:       "Inception",
			Description: "A thief who steals corporate secrets through dream-sharing technology is asked to plant an idea instead.",
			Genres:      []string{"Sci-Fi", "Action", "Adventure"},
			Duration:    "2h 28m",
			Rating:      "8.8/10",
			Director:    "Christopher Nolan",
			Cast:        []string{"Leonardo DiCaprio", "Joseph Gordon-Levitt", "Elliot Page"},
			ReleaseDate: date("2010-07-16"),
		},
		{
			ID:          2,
			Title:       "The Dark Knight",
			Description: "Batman faces the Joker, who wants to plunge Gotham into anarchy.",
			Genres:      []string{"Action", "Crime", "Drama"},
			Duration:    "2h 32m",
			Rating:      "9.0/10",
			Director:    "Christopher Nolan",
			Cast:        []string{"Christian Bale", "Heath Ledger", "Aaron Eckhart"},
			ReleaseDate: date("2008-07-18"),
		},
		{
			ID:          3,
			Title:       "Interstellar",
			Description: "Explorers travel through a wormhole to secure humanity's survival.",
			Genres:      []string{"Adventure", "Drama", "Sci-Fi"},
			Duration:    "2h 49m",
			Rating:      "8.6/10",
			Director:    "Christopher Nolan",
			Cast:        []string{"Matthew McConaughey", "Anne Hathaway", "Jessica Chastain"},
			ReleaseDate: date("2014-11-07"),
		},
		{
			ID:          4,
			Title:       "Pulp Fiction",
			Description: "Four tales of crime in Los Angeles intertwine.",
			Genres:      []string{"Crime", "Drama"},
			Duration:    "2h 34m",
			Rating:      "8.9/10",
			Director:    "Quentin Tarantino",
			Cast:        []string{"John Travolta", "Uma Thurman", "Samuel L. Jackson"},
			ReleaseDate: date("1994-10-14"),
		},
		{
			ID:          5,
			Title:       "The Matrix",
			Description: "A hacker learns the true nature of his reality.",
			Genres:      []string{"Action", "Sci-Fi"},
			Duration:    "2h 16m",
			Rating:      "8.7/10",
			Director:    "Lana Wachowski, Lilly Wachowski",
			Cast:        []string{"Keanu Reeves", "Laurence Fishburne", "Carrie-Anne Moss"},
			ReleaseDate: date("1999-03-31"),
		},
		{
			ID:          6,
			Title:       "Avengers: Endgame",
			Description: "The Avengers assemble once more to reverse Thanos' actions.",
			Genres:      []string{"Action", "Adventure", "Drama"},
			Duration:    "3h 1m",
			Rating:      "8.4/10",
			Director:    "Anthony Russo, Joe Russo",
			Cast:        []string{"Robert Downey Jr.", "Chris Evans", "Mark Ruffalo"},
			ReleaseDate: date("2019-04-26"),
		},
	}
}

// DemoShowtimes gives every movie four screenings at 10, 12, 14 and 16 per seat.
func DemoShowtimes() []entity.Showtime {
	type slot struct {
		time string
		hall string
	}
	schedule := map[int64][4]slot{
		1: {{"10:00 AM", "Hall 1"}, {"1:30 PM", "Hall 2"}, {"5:00 PM", "Hall 1"}, {"8:30 PM", "Hall 3"}},
		2: {{"11:00 AM", "Hall 2"}, {"2:30 PM", "Hall 1"}, {"6:00 PM", "Hall 3"}, {"9:30 PM", "Hall 2"}},
		3: {{"10:30 AM", "Hall 3"}, {"2:00 PM", "Hall 2"}, {"5:30 PM", "Hall 1"}, {"9:00 PM", "Hall 3"}},
		4: {{"11:30 AM", "Hall 1"}, {"3:00 PM", "Hall 3"}, {"6:30 PM", "Hall 2"}, {"10:00 PM", "Hall 1"}},
		5: {{"10:15 AM", "Hall 2"}, {"1:45 PM", "Hall 3"}, {"5:15 PM", "Hall 2"}, {"8:45 PM", "Hall 1"}},
		6: {{"11:15 AM", "Hall 3"}, {"2:45 PM", "Hall 1"}, {"6:15 PM", "Hall 3"}, {"9:45 PM", "Hall 2"}},
	}
	prices := [4]int64{10, 12, 14, 16}
	day := date("2025-05-07")

	var out []entity.Showtime
	for movieID := int64(1); movieID <= 6; movieID++ {
		for i, s := range schedule[movieID] {
			out = append(out, entity.Showtime{
				ID:       (movieID-1)*4 + int64(i) + 1,
				MovieID:  movieID,
				ShowDate: day,
				ShowTime: s.time,
				Hall:     s.hall,
				Price:    decimal.NewFromInt(prices[i]),
			})
		}
	}
	return out
}

// NewDemoStore returns a store loaded with the demo catalog and no bookings.
func NewDemoStore(log *zap.Logger) *Store {
	s := NewStore(log)
	for _, h := range DemoHalls() {
		s.AddHall(h)
	}
	for _, m := range DemoMovies() {
		s.AddMovie(m)
	}
	for _, st := range DemoShowtimes() {
		s.AddShowtime(st)
	}
	return s
}
