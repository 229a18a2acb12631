package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *int) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	sleeps := 0
	c := NewClient("test-token")
	c.BaseURL = ts.URL
	c.Delay = time.Millisecond
	c.Sleep = func(time.Duration) { sleeps++ }
	return c, &sleeps
}

func stubPage(n int, ids ...int64) discoverResponse {
	resp := discoverResponse{Page: n}
	for _, id := range ids {
		resp.Results = append(resp.Results, MovieStub{TMDBID: id, Title: "movie", VoteCount: 1000})
	}
	return resp
}

func TestDiscoverWalksPagesUntilEmpty(t *testing.T) {
	var gotAuth string
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		q := r.URL.Query()
		assert.Equal(t, "false", q.Get("include_adult"))
		assert.Equal(t, "false", q.Get("include_video"))
		assert.Equal(t, "2|3", q.Get("with_release_type"))
		assert.Equal(t, "6", q.Get("vote_average.gte"))
		assert.Equal(t, "60", q.Get("with_runtime.gte"))
		assert.Equal(t, "28", q.Get("with_genres"))
		assert.Equal(t, "500", q.Get("vote_count.gte"))

		switch q.Get("page") {
		case "1":
			json.NewEncoder(w).Encode(stubPage(1, 100, 101))
		case "2":
			json.NewEncoder(w).Encode(stubPage(2, 102))
		default:
			json.NewEncoder(w).Encode(stubPage(3))
		}
	}))

	it := c.Discover(DiscoverQuery{
		SortBy:   SortVoteAverageDesc,
		GenreID:  28,
		MaxPages: 10,
		MinVotes: 500,
	})

	var all []MovieStub
	for {
		stubs, ok := it.Next(context.Background())
		if !ok {
			break
		}
		all = append(all, stubs...)
	}

	require.Len(t, all, 3)
	assert.Equal(t, int64(100), all[0].TMDBID)
	assert.Equal(t, int64(102), all[2].TMDBID)
	assert.Equal(t, "Bearer test-token", gotAuth)

	// exhausted iterators stay exhausted
	_, ok := it.Next(context.Background())
	assert.False(t, ok)
}

func TestDiscoverStopsAtMaxPages(t *testing.T) {
	pages := 0
	c, sleeps := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		json.NewEncoder(w).Encode(stubPage(pages, int64(pages)))
	}))

	it := c.Discover(DiscoverQuery{SortBy: SortPopularityDesc, MaxPages: 2})
	n := 0
	for {
		if _, ok := it.Next(context.Background()); !ok {
			break
		}
		n++
	}

	assert.Equal(t, 2, n)
	assert.Equal(t, 2, pages)
	// the fixed delay fires after every page request
	assert.Equal(t, 2, *sleeps)
}

func TestDiscoverEndsSequenceOnServerError(t *testing.T) {
	pages := 0
	c, sleeps := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		if pages == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(stubPage(pages, int64(pages)))
	}))

	it := c.Discover(DiscoverQuery{SortBy: SortPopularityDesc, MaxPages: 10})

	stubs, ok := it.Next(context.Background())
	require.True(t, ok)
	require.Len(t, stubs, 1)

	// the failing page ends the walk without an error; page one's
	// results are already in the caller's hands
	_, ok = it.Next(context.Background())
	assert.False(t, ok)
	assert.Equal(t, 2, pages)
	assert.Equal(t, 2, *sleeps)
}

func TestDiscoverOmitsOptionalFilters(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.False(t, q.Has("with_genres"))
		assert.False(t, q.Has("vote_count.gte"))
		json.NewEncoder(w).Encode(stubPage(1))
	}))

	it := c.Discover(DiscoverQuery{SortBy: SortPopularityDesc, MaxPages: 1})
	_, ok := it.Next(context.Background())
	assert.False(t, ok)
}
