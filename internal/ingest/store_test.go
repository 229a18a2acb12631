package ingest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinetic/pkg/database"
	"cinetic/pkg/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.MigrateFile(db, "../../docs/schema.sql"))
	return db
}

func testMovie(imdbID string, tmdbID int64) *models.Movie {
	return &models.Movie{
		IMDBID:        imdbID,
		TMDBID:        tmdbID,
		Title:         "Test Movie",
		OriginalTitle: "Test Movie",
		VoteAverage:   7.5,
		VoteCount:     1200,
		Runtime:       110,
	}
}

func TestEnsureGenreReusesExistingRow(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	store := NewStore(db)
	uow, err := store.Begin(ctx)
	require.NoError(t, err)

	first, err := uow.EnsureGenre(ctx, 28, "Action")
	require.NoError(t, err)
	second, err := uow.EnsureGenre(ctx, 28, "Action")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.NoError(t, uow.Commit())

	// a fresh store has an empty cache and must find the row in the db
	store2 := NewStore(db)
	uow2, err := store2.Begin(ctx)
	require.NoError(t, err)
	defer uow2.Rollback()

	third, err := uow2.EnsureGenre(ctx, 28, "Action")
	require.NoError(t, err)
	assert.Equal(t, first, third)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM genres`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestStagedRowsVisibleInsideUnitOfWorkOnly(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	store := NewStore(db)
	uow, err := store.Begin(ctx)
	require.NoError(t, err)

	id, err := uow.GetOrCreateDirector(ctx, 9339, "Lilly Wachowski")
	require.NoError(t, err)

	// drop the cache so the second resolve has to hit the transaction
	store.directors = make(map[int64]int64)

	again, err := uow.GetOrCreateDirector(ctx, 9339, "Lilly Wachowski")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	// nothing durable until commit
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM directors`).Scan(&n))
	assert.Zero(t, n)

	require.NoError(t, uow.Commit())
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM directors`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestLinkGenreReportsWhetherLinkWasAdded(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	store := NewStore(db)
	uow, err := store.Begin(ctx)
	require.NoError(t, err)
	defer uow.Rollback()

	require.NoError(t, uow.StageMovie(ctx, testMovie("tt0000001", 1)))
	genreID, err := uow.EnsureGenre(ctx, 28, "Action")
	require.NoError(t, err)

	added, err := uow.LinkGenre(ctx, "tt0000001", genreID)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = uow.LinkGenre(ctx, "tt0000001", genreID)
	require.NoError(t, err)
	assert.False(t, added)
}

func TestMovieIMDBByTMDBUnknownID(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	store := NewStore(db)
	uow, err := store.Begin(ctx)
	require.NoError(t, err)
	defer uow.Rollback()

	imdbID, err := uow.MovieIMDBByTMDB(ctx, 999999)
	require.NoError(t, err)
	assert.Empty(t, imdbID)

	require.NoError(t, uow.StageMovie(ctx, testMovie("tt0000002", 999999)))

	imdbID, err = uow.MovieIMDBByTMDB(ctx, 999999)
	require.NoError(t, err)
	assert.Equal(t, "tt0000002", imdbID)
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	store := NewStore(db)
	uow, err := store.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, uow.StageMovie(ctx, testMovie("tt0000003", 3)))
	_, err = uow.GetOrCreateDirector(ctx, 10, "Director One")
	require.NoError(t, err)
	_, err = uow.GetOrCreateActor(ctx, 20, "Actor One")
	require.NoError(t, err)
	_, err = uow.GetOrCreateActor(ctx, 21, "Actor Two")
	require.NoError(t, err)
	require.NoError(t, uow.Commit())

	movies, directors, actors, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, movies)
	assert.Equal(t, 1, directors)
	assert.Equal(t, 2, actors)
	assert.Equal(t, 1, store.Commits())
}
