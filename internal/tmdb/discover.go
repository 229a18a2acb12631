package tmdb

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	SortVoteAverageDesc = "vote_average.desc"
	SortPopularityDesc  = "popularity.desc"
)

const discoverTimeout = 20 * time.Second

// MovieStub is the minimal record a discovery page returns. It only
// lives long enough to decide whether the movie needs full resolution.
type MovieStub struct {
	TMDBID      int64   `json:"id"`
	Title       string  `json:"title"`
	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
}

// DiscoverQuery holds the caller-chosen discovery parameters. Content
// policy (adult, runtime, release types, vote average floor) is pinned
// in Next and not configurable.
type DiscoverQuery struct {
	SortBy   string
	GenreID  int64 // 0 = no genre filter
	MaxPages int
	MinVotes int // 0 = no vote count floor
}

type discoverResponse struct {
	Page    int         `json:"page"`
	Results []MovieStub `json:"results"`
}

// Discover returns a lazy iterator over discovery pages. The iterator
// is finite and not restartable.
func (c *Client) Discover(q DiscoverQuery) *PageIter {
	return &PageIter{c: c, q: q}
}

type PageIter struct {
	c    *Client
	q    DiscoverQuery
	page int
	done bool
}

// Next fetches the next page of stubs. It reports false once the page
// bound is reached, the catalog is exhausted, or a page request fails;
// a failed page ends the walk but keeps everything fetched so far.
func (it *PageIter) Next(ctx context.Context) ([]MovieStub, bool) {
	if it.done || it.page >= it.q.MaxPages {
		it.done = true
		return nil, false
	}
	it.page++

	params := url.Values{}
	params.Set("sort_by", it.q.SortBy)
	params.Set("page", strconv.Itoa(it.page))
	params.Set("include_adult", "false")
	params.Set("include_video", "false")
	params.Set("with_release_type", "2|3")
	params.Set("vote_average.gte", "6")
	params.Set("with_runtime.gte", "60")
	if it.q.GenreID != 0 {
		params.Set("with_genres", strconv.FormatInt(it.q.GenreID, 10))
	}
	if it.q.MinVotes > 0 {
		params.Set("vote_count.gte", strconv.Itoa(it.q.MinVotes))
	}

	reqCtx, cancel := context.WithTimeout(ctx, discoverTimeout)
	defer cancel()

	body, status, err := it.c.get(reqCtx, "/discover/movie", params)
	if err != nil {
		log.Printf("[tmdb] discover page %d: %v", it.page, err)
		it.done = true
		return nil, false
	}
	if status != http.StatusOK {
		log.Printf("[tmdb] discover page %d: status %d", it.page, status)
		it.done = true
		return nil, false
	}

	var dr discoverResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		log.Printf("[tmdb] discover page %d: decode: %v", it.page, err)
		it.done = true
		return nil, false
	}
	if len(dr.Results) == 0 {
		it.done = true
		return nil, false
	}
	return dr.Results, true
}
