package ingest

import (
	"context"
	"fmt"
	"log"
	"sort"

	"cinetic/internal/tmdb"
)

// Genres is the fixed TMDB genre taxonomy seeded before ingestion.
var Genres = map[string]int64{
	"Action": 28, "Adventure": 12, "Animation": 16, "Comedy": 35, "Crime": 80,
	"Drama": 18, "Family": 10751, "Fantasy": 14, "History": 36, "Horror": 27,
	"Music": 10402, "Mystery": 9648, "Romance": 10749, "Science Fiction": 878,
	"Thriller": 53, "War": 10752, "Western": 37,
}

const (
	// commitBatch bounds how much progress one failed batch can lose.
	commitBatch  = 10
	genrePages   = 50
	popularPages = 25
	minVoteCount = 500
)

// Catalog is the slice of the TMDB client the seeder needs.
type Catalog interface {
	Discover(q tmdb.DiscoverQuery) *tmdb.PageIter
	MovieDetails(ctx context.Context, tmdbID int64) (*tmdb.MovieDetail, error)
}

// pager is satisfied by *tmdb.PageIter.
type pager interface {
	Next(ctx context.Context) ([]tmdb.MovieStub, bool)
}

// Seeder walks the external catalog and fills the store: top-rated
// movies per taxonomy genre, then overall popular movies. Strictly
// sequential; one item is fully staged before the next starts.
type Seeder struct {
	Catalog Catalog
	Store   *Store

	genreRows map[int64]int64 // tmdb genre id -> genres row id

	added      int
	existing   int
	linked     int
	unresolved int
	rejected   int
}

func NewSeeder(catalog Catalog, store *Store) *Seeder {
	return &Seeder{
		Catalog:   catalog,
		Store:     store,
		genreRows: make(map[int64]int64),
	}
}

func (s *Seeder) Run(ctx context.Context) error {
	log.Println("[seed] setting up genres")
	if err := s.ensureGenres(ctx); err != nil {
		return err
	}

	log.Println("[seed] fetching top-rated movies by genre")
	for _, name := range sortedGenreNames() {
		gid := Genres[name]
		log.Printf("[seed] genre %s", name)

		it := s.Catalog.Discover(tmdb.DiscoverQuery{
			SortBy:   tmdb.SortVoteAverageDesc,
			GenreID:  gid,
			MaxPages: genrePages,
			MinVotes: minVoteCount,
		})
		if err := s.runSet(ctx, it, s.genreRows[gid]); err != nil {
			return fmt.Errorf("genre %s: %w", name, err)
		}
	}

	log.Println("[seed] fetching popular movies")
	it := s.Catalog.Discover(tmdb.DiscoverQuery{
		SortBy:   tmdb.SortPopularityDesc,
		MaxPages: popularPages,
		MinVotes: minVoteCount,
	})
	if err := s.runSet(ctx, it, 0); err != nil {
		return fmt.Errorf("popular: %w", err)
	}

	return s.report(ctx)
}

// ensureGenres creates any missing taxonomy rows and commits them
// before ingestion starts.
func (s *Seeder) ensureGenres(ctx context.Context) error {
	uow, err := s.Store.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = uow.Rollback() }()

	for _, name := range sortedGenreNames() {
		gid := Genres[name]
		rowID, err := uow.EnsureGenre(ctx, gid, name)
		if err != nil {
			return err
		}
		s.genreRows[gid] = rowID
	}
	return uow.Commit()
}

// runSet processes one filter set: every stub from every page, with a
// commit after each commitBatch items and one more at set end.
func (s *Seeder) runSet(ctx context.Context, pages pager, genreRowID int64) error {
	uow, err := s.Store.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = uow.Rollback() }()

	processed := 0
	for {
		stubs, ok := pages.Next(ctx)
		if !ok {
			break
		}
		for _, stub := range stubs {
			state, err := s.upsertMovie(ctx, uow, stub, genreRowID)
			if err != nil {
				return fmt.Errorf("process tmdb %d: %w", stub.TMDBID, err)
			}
			s.tally(state)

			processed++
			if processed%commitBatch == 0 {
				if err := uow.Commit(); err != nil {
					return err
				}
				if uow, err = s.Store.Begin(ctx); err != nil {
					return err
				}
			}
		}
	}
	return uow.Commit()
}

func (s *Seeder) tally(state State) {
	switch state {
	case StateNew:
		s.added++
	case StateExists:
		s.existing++
	case StateGenreLinked:
		s.linked++
	case StateUnresolved:
		s.unresolved++
	case StateRejected:
		s.rejected++
	}
}

func (s *Seeder) report(ctx context.Context) error {
	movies, directors, actors, err := s.Store.Counts(ctx)
	if err != nil {
		return err
	}
	log.Printf("[seed] summary: %d movies, %d directors, %d actors", movies, directors, actors)
	log.Printf("[seed] run: %d added, %d already present, %d genre links added, %d unresolved, %d rejected, %d commits",
		s.added, s.existing, s.linked, s.unresolved, s.rejected, s.Store.Commits())
	return nil
}

func sortedGenreNames() []string {
	names := make([]string, 0, len(Genres))
	for name := range Genres {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
