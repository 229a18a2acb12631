package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinetic/pkg/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.MigrateFile(db, "../../docs/schema.sql"))
	return db
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ratings_cleaned.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportRatings(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.Exec(`INSERT INTO movies (imdb_id, tmdb_id, title, original_title) VALUES
		('tt0133093', 603, 'The Matrix', 'The Matrix'),
		('tt1375666', 27205, 'Inception', 'Inception')`)
	require.NoError(t, err)

	path := writeCSV(t, `userId,rating,imdbId,tmdbId,date_rated
1,9,tt0133093,603,2019-06-01
1,8,tt1375666,27205,2019-06-02
2,7,tt0133093,603,2020-01-15
2,6,tt7777777,,2020-01-16
`)

	inserted, skipped, err := importRatings(ctx, db, path)
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)
	// tt7777777 is not in the catalog
	assert.Equal(t, 1, skipped)

	var users, ml int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&users))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users WHERE ml = 1`).Scan(&ml))
	assert.Equal(t, 2, users)
	assert.Equal(t, 2, ml)

	// autoincrement ids line up with the CSV userId column
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM ratings WHERE user_id = 1`).Scan(&n))
	assert.Equal(t, 2, n)

	var rating int
	var tmdbID int64
	require.NoError(t, db.QueryRow(`SELECT rating, tmdb_id FROM ratings WHERE user_id = 2 AND imdb_id = 'tt0133093'`).Scan(&rating, &tmdbID))
	assert.Equal(t, 7, rating)
	assert.Equal(t, int64(603), tmdbID)
}

func TestImportRatingsRefusesNonEmptyUsersTable(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.Exec(`INSERT INTO users (email, username) VALUES ('alice@example.com', 'alice')`)
	require.NoError(t, err)

	path := writeCSV(t, `userId,rating,imdbId,tmdbId,date_rated
1,9,tt0133093,603,2019-06-01
`)

	_, _, err = importRatings(ctx, db, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not empty")
}

func TestCheckUserSequence(t *testing.T) {
	ok := []ratingRow{
		{UserID: 1}, {UserID: 1}, {UserID: 2}, {UserID: 3}, {UserID: 2},
	}
	n, err := checkUserSequence(ok)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	gap := []ratingRow{{UserID: 1}, {UserID: 3}}
	_, err = checkUserSequence(gap)
	require.Error(t, err)

	startsAtTwo := []ratingRow{{UserID: 2}}
	_, err = checkUserSequence(startsAtTwo)
	require.Error(t, err)
}
