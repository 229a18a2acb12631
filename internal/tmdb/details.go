package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	detailTimeout = 10 * time.Second
	detailRetries = 3
)

// MovieDetail is the full record for one catalog item: attributes,
// credits and the external id cross-reference, fetched in one call.
type MovieDetail struct {
	TMDBID           int64       `json:"id"`
	Title            string      `json:"title"`
	OriginalTitle    string      `json:"original_title"`
	Overview         string      `json:"overview"`
	ReleaseDate      string      `json:"release_date"`
	Popularity       float64     `json:"popularity"`
	VoteAverage      float64     `json:"vote_average"`
	VoteCount        int         `json:"vote_count"`
	OriginalLanguage string      `json:"original_language"`
	Runtime          int         `json:"runtime"`
	PosterPath       string      `json:"poster_path"`
	BackdropPath     string      `json:"backdrop_path"`
	Credits          Credits     `json:"credits"`
	ExternalIDs      ExternalIDs `json:"external_ids"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// CastMember keeps TMDB's billing order; callers rely on it when
// capping the cast.
type CastMember struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type CrewMember struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Job  string `json:"job"`
}

type ExternalIDs struct {
	IMDBID string `json:"imdb_id"`
}

// MovieDetails resolves one catalog item, combining details, credits
// and external ids via append_to_response to avoid per-item fan-out.
// Failures are retried up to detailRetries times with linear backoff;
// exhaustion returns the last error and the caller skips the item.
func (c *Client) MovieDetails(ctx context.Context, tmdbID int64) (*MovieDetail, error) {
	var detail MovieDetail

	retry := Retry{Attempts: detailRetries, Delay: c.Delay, Sleep: c.Sleep}
	err := retry.Do(ctx, func() error {
		params := url.Values{}
		params.Set("append_to_response", "credits,external_ids")

		reqCtx, cancel := context.WithTimeout(ctx, detailTimeout)
		defer cancel()

		body, status, err := c.get(reqCtx, "/movie/"+strconv.FormatInt(tmdbID, 10), params)
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return fmt.Errorf("tmdb: movie %d: status %d", tmdbID, status)
		}
		if err := json.Unmarshal(body, &detail); err != nil {
			return fmt.Errorf("tmdb: movie %d: decode: %w", tmdbID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}
