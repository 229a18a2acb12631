package ingest

import (
	"context"
	"log"

	"cinetic/internal/tmdb"
	"cinetic/pkg/models"
)

// State is the terminal outcome of processing one discovered stub.
type State int

const (
	StateNew State = iota
	StateExists
	StateGenreLinked
	StateUnresolved
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateExists:
		return "exists"
	case StateGenreLinked:
		return "genre_linked"
	case StateUnresolved:
		return "unresolved"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// maxCastActors caps how many cast entries become actor associations.
// TMDB billing order decides which ones; directors are never capped.
const maxCastActors = 6

// upsertMovie runs the per-item state machine. Store errors are
// returned and abort the run; resolution failures degrade to a skip.
//
//  1. Known catalog id: at most add the genre association, touch
//     nothing else.
//  2. Unknown: resolve the full detail. No detail -> StateUnresolved.
//  3. No imdb id on the detail -> StateRejected, nothing persisted.
//     Such an item is retried (and re-rejected) on a later run, which
//     is a harmless no-op.
//  4. Otherwise stage the movie with its genre, directors and top
//     cast, all through the deduplicating store.
func (s *Seeder) upsertMovie(ctx context.Context, uow *UnitOfWork, stub tmdb.MovieStub, genreRowID int64) (State, error) {
	imdbID, err := uow.MovieIMDBByTMDB(ctx, stub.TMDBID)
	if err != nil {
		return 0, err
	}
	if imdbID != "" {
		if genreRowID != 0 {
			added, err := uow.LinkGenre(ctx, imdbID, genreRowID)
			if err != nil {
				return 0, err
			}
			if added {
				return StateGenreLinked, nil
			}
		}
		return StateExists, nil
	}

	detail, err := s.Catalog.MovieDetails(ctx, stub.TMDBID)
	if err != nil {
		log.Printf("[ingest] could not resolve tmdb %d (%q), skipping: %v", stub.TMDBID, stub.Title, err)
		return StateUnresolved, nil
	}

	if detail.ExternalIDs.IMDBID == "" {
		log.Printf("[ingest] no imdb id for %q (tmdb %d), skipping", detail.Title, stub.TMDBID)
		return StateRejected, nil
	}

	m := movieFromDetail(detail)
	if err := uow.StageMovie(ctx, m); err != nil {
		return 0, err
	}
	if genreRowID != 0 {
		if _, err := uow.LinkGenre(ctx, m.IMDBID, genreRowID); err != nil {
			return 0, err
		}
	}

	for _, member := range detail.Credits.Crew {
		if member.Job != "Director" {
			continue
		}
		id, err := uow.GetOrCreateDirector(ctx, member.ID, member.Name)
		if err != nil {
			return 0, err
		}
		if err := uow.LinkDirector(ctx, m.IMDBID, id); err != nil {
			return 0, err
		}
	}

	cast := detail.Credits.Cast
	if len(cast) > maxCastActors {
		cast = cast[:maxCastActors]
	}
	for _, member := range cast {
		id, err := uow.GetOrCreateActor(ctx, member.ID, member.Name)
		if err != nil {
			return 0, err
		}
		if err := uow.LinkActor(ctx, m.IMDBID, id); err != nil {
			return 0, err
		}
	}

	log.Printf("[ingest] added %q (%s)", m.Title, m.IMDBID)
	return StateNew, nil
}

func movieFromDetail(d *tmdb.MovieDetail) *models.Movie {
	originalTitle := d.OriginalTitle
	if originalTitle == "" {
		originalTitle = d.Title
	}
	return &models.Movie{
		IMDBID:           d.ExternalIDs.IMDBID,
		TMDBID:           d.TMDBID,
		Title:            d.Title,
		OriginalTitle:    originalTitle,
		Overview:         d.Overview,
		ReleaseDate:      d.ReleaseDate,
		Popularity:       d.Popularity,
		VoteAverage:      d.VoteAverage,
		VoteCount:        d.VoteCount,
		OriginalLanguage: d.OriginalLanguage,
		Runtime:          d.Runtime,
		PosterPath:       d.PosterPath,
		BackdropPath:     d.BackdropPath,
	}
}
