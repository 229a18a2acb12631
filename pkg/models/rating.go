package models

import "time"

// Rating is a single user rating on the 1-10 scale.
type Rating struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	IMDBID    string    `json:"imdb_id"`
	TMDBID    int64     `json:"tmdb_id,omitempty"`
	Rating    int       `json:"rating"`
	DateRated time.Time `json:"date_rated"`
}
