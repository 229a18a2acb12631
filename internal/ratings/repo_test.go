package ratings

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinetic/pkg/database"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.MigrateFile(db, "../../docs/schema.sql"))
	seed(t, db)
	return NewRepo(db)
}

func seed(t *testing.T, db *sql.DB) {
	t.Helper()
	for _, q := range []string{
		`INSERT INTO users (email, username, password_hash) VALUES ('alice@example.com', 'alice', 'x')`,
		`INSERT INTO users (email, username, password_hash) VALUES ('bob@example.com', 'bob', 'x')`,
		`INSERT INTO movies (imdb_id, tmdb_id, title, original_title) VALUES ('tt0133093', 603, 'The Matrix', 'The Matrix')`,
		`INSERT INTO movies (imdb_id, tmdb_id, title, original_title) VALUES ('tt1375666', 27205, 'Inception', 'Inception')`,
	} {
		_, err := db.Exec(q)
		require.NoError(t, err)
	}
}

func TestCreateCopiesCatalogIDs(t *testing.T) {
	repo := newTestRepo(t)

	rating, err := repo.Create(context.Background(), 1, "tt0133093", 9)
	require.NoError(t, err)
	require.NotNil(t, rating)

	assert.Equal(t, int64(1), rating.UserID)
	assert.Equal(t, "tt0133093", rating.IMDBID)
	assert.Equal(t, int64(603), rating.TMDBID)
	assert.Equal(t, 9, rating.Rating)
	assert.False(t, rating.DateRated.IsZero())
}

func TestCreateUnknownMovie(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Create(context.Background(), 1, "tt9999999", 7)
	require.ErrorIs(t, err, ErrMovieNotFound)
}

func TestListByMovieAndUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1, "tt0133093", 9)
	require.NoError(t, err)
	_, err = repo.Create(ctx, 2, "tt0133093", 7)
	require.NoError(t, err)
	_, err = repo.Create(ctx, 1, "tt1375666", 8)
	require.NoError(t, err)

	byMovie, err := repo.ListByMovie(ctx, "tt0133093", 0, 0)
	require.NoError(t, err)
	assert.Len(t, byMovie, 2)

	byUser, err := repo.ListByUser(ctx, 1, 0, 0)
	require.NoError(t, err)
	assert.Len(t, byUser, 2)
	for _, r := range byUser {
		assert.Equal(t, int64(1), r.UserID)
	}
}

func TestDeleteEnforcesOwnership(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rating, err := repo.Create(ctx, 1, "tt0133093", 9)
	require.NoError(t, err)

	// another user cannot delete it
	deleted, err := repo.Delete(ctx, rating.ID, 2)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.Delete(ctx, rating.ID, 1)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := repo.GetByID(ctx, rating.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
