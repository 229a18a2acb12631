package live

import "time"

type RatingEvent struct {
	Type   string    `json:"type"` // "rating.created" or "rating.deleted"
	UserID int64     `json:"user_id"`
	IMDBID string    `json:"imdb_id"`
	Rating int       `json:"rating,omitempty"`
	At     time.Time `json:"at"`
}
