package entity

import (
	"time"
)

type Movie struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	PosterURL   string    `db:"poster_url" json:"poster_url"`
	Genres      []string  `db:"genres" json:"genres"`
	Duration    string    `db:"duration" json:"duration"`
	Rating      string    `db:"rating" json:"rating"`
	Director    string    `db:"director" json:"director"`
	Cast        []string  `db:"cast_members" json:"cast"`
	ReleaseDate time.Time `db:"release_date" json:"release_date"`
}
