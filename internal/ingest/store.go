package ingest

import (
	"context"
	"database/sql"
	"fmt"

	"cinetic/pkg/models"
)

// Store wraps the catalog database for the seeding run. The person and
// genre caches are run-scoped: the run is the only writer, and since a
// failed commit aborts the whole run the caches can never go stale.
type Store struct {
	db        *sql.DB
	genres    map[int64]int64 // tmdb genre id -> row id
	directors map[int64]int64 // tmdb person id -> row id
	actors    map[int64]int64
	commits   int
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:        db,
		genres:    make(map[int64]int64),
		directors: make(map[int64]int64),
		actors:    make(map[int64]int64),
	}
}

// Begin opens a new unit of work. All staging and lookups go through
// it; nothing is durable until Commit.
func (s *Store) Begin(ctx context.Context) (*UnitOfWork, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin unit of work: %w", err)
	}
	return &UnitOfWork{s: s, tx: tx}, nil
}

// Commits reports how many units of work have been committed.
func (s *Store) Commits() int { return s.commits }

// Counts returns the persisted totals for the end-of-run summary.
func (s *Store) Counts(ctx context.Context) (movies, directors, actors int, err error) {
	for _, q := range []struct {
		table string
		dst   *int
	}{
		{"movies", &movies},
		{"directors", &directors},
		{"actors", &actors},
	} {
		if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+q.table).Scan(q.dst); err != nil {
			return 0, 0, 0, fmt.Errorf("count %s: %w", q.table, err)
		}
	}
	return movies, directors, actors, nil
}

// UnitOfWork is one transactional batch of staged writes. Lookups run
// inside the transaction, so rows staged earlier in the same unit are
// visible without being flushed to disk.
type UnitOfWork struct {
	s  *Store
	tx *sql.Tx
}

func (u *UnitOfWork) Commit() error {
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	u.s.commits++
	return nil
}

func (u *UnitOfWork) Rollback() error {
	return u.tx.Rollback()
}

// MovieIMDBByTMDB returns the imdb id for an already-persisted or
// staged movie, or "" when the catalog id is unknown.
func (u *UnitOfWork) MovieIMDBByTMDB(ctx context.Context, tmdbID int64) (string, error) {
	var imdbID string
	err := u.tx.QueryRowContext(ctx, `
		SELECT imdb_id FROM movies WHERE tmdb_id = ?
	`, tmdbID).Scan(&imdbID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup movie by tmdb id %d: %w", tmdbID, err)
	}
	return imdbID, nil
}

// StageMovie inserts a new movie row. The pipeline never updates movie
// attributes; existing movies only ever gain associations.
func (u *UnitOfWork) StageMovie(ctx context.Context, m *models.Movie) error {
	_, err := u.tx.ExecContext(ctx, `
		INSERT INTO movies (
			imdb_id, tmdb_id, title, original_title, overview, release_date,
			popularity, vote_average, vote_count, original_language, runtime,
			poster_path, backdrop_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.IMDBID, m.TMDBID, m.Title, m.OriginalTitle,
		nullString(m.Overview), nullString(m.ReleaseDate),
		m.Popularity, m.VoteAverage, m.VoteCount,
		nullString(m.OriginalLanguage), m.Runtime,
		nullString(m.PosterPath), nullString(m.BackdropPath),
	)
	if err != nil {
		return fmt.Errorf("stage movie %s: %w", m.IMDBID, err)
	}
	return nil
}

// EnsureGenre returns the row id for a taxonomy genre, creating the
// row on first sight.
func (u *UnitOfWork) EnsureGenre(ctx context.Context, tmdbID int64, name string) (int64, error) {
	if id, ok := u.s.genres[tmdbID]; ok {
		return id, nil
	}

	var id int64
	err := u.tx.QueryRowContext(ctx, `
		SELECT id FROM genres WHERE tmdb_id = ?
	`, tmdbID).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		res, err := u.tx.ExecContext(ctx, `
			INSERT INTO genres (tmdb_id, name) VALUES (?, ?)
		`, tmdbID, name)
		if err != nil {
			return 0, fmt.Errorf("insert genre %q: %w", name, err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, fmt.Errorf("genre %q insert id: %w", name, err)
		}
	case err != nil:
		return 0, fmt.Errorf("lookup genre %q: %w", name, err)
	}

	u.s.genres[tmdbID] = id
	return id, nil
}

// LinkGenre adds a movie-genre association if absent. It reports
// whether a new link was actually added.
func (u *UnitOfWork) LinkGenre(ctx context.Context, imdbID string, genreID int64) (bool, error) {
	res, err := u.tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO movie_genres (movie_id, genre_id) VALUES (?, ?)
	`, imdbID, genreID)
	if err != nil {
		return false, fmt.Errorf("link genre %d to %s: %w", genreID, imdbID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("link genre rows: %w", err)
	}
	return n > 0, nil
}

// GetOrCreateDirector resolves a crew person to the one canonical
// director row for their TMDB person id.
func (u *UnitOfWork) GetOrCreateDirector(ctx context.Context, personID int64, name string) (int64, error) {
	return u.getOrCreatePerson(ctx, "directors", u.s.directors, personID, name)
}

// GetOrCreateActor resolves a cast person to the one canonical actor
// row for their TMDB person id.
func (u *UnitOfWork) GetOrCreateActor(ctx context.Context, personID int64, name string) (int64, error) {
	return u.getOrCreatePerson(ctx, "actors", u.s.actors, personID, name)
}

func (u *UnitOfWork) getOrCreatePerson(ctx context.Context, table string, cache map[int64]int64, personID int64, name string) (int64, error) {
	if id, ok := cache[personID]; ok {
		return id, nil
	}

	var id int64
	err := u.tx.QueryRowContext(ctx, `
		SELECT id FROM `+table+` WHERE tmdb_person_id = ?
	`, personID).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		res, err := u.tx.ExecContext(ctx, `
			INSERT INTO `+table+` (tmdb_person_id, name) VALUES (?, ?)
		`, personID, name)
		if err != nil {
			return 0, fmt.Errorf("insert into %s person %d: %w", table, personID, err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, fmt.Errorf("%s person %d insert id: %w", table, personID, err)
		}
	case err != nil:
		return 0, fmt.Errorf("lookup %s person %d: %w", table, personID, err)
	}

	cache[personID] = id
	return id, nil
}

// LinkDirector adds a movie-director association; no-op if present.
func (u *UnitOfWork) LinkDirector(ctx context.Context, imdbID string, directorID int64) error {
	if _, err := u.tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO movie_directors (movie_id, director_id) VALUES (?, ?)
	`, imdbID, directorID); err != nil {
		return fmt.Errorf("link director %d to %s: %w", directorID, imdbID, err)
	}
	return nil
}

// LinkActor adds a movie-actor association; no-op if present.
func (u *UnitOfWork) LinkActor(ctx context.Context, imdbID string, actorID int64) error {
	if _, err := u.tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO movie_actors (movie_id, actor_id) VALUES (?, ?)
	`, imdbID, actorID); err != nil {
		return fmt.Errorf("link actor %d to %s: %w", actorID, imdbID, err)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
