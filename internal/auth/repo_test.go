package auth

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinetic/pkg/database"
)

func newTestRepo(t *testing.T) (*Repo, *sql.DB) {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.MigrateFile(db, "../../docs/schema.sql"))
	return NewRepo(db), db
}

func TestCreateAndGetUser(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateUser(ctx, User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	require.Positive(t, id)

	// email lookup is case-insensitive
	u, err := repo.GetByEmail(ctx, "  Alice@Example.COM ")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.False(t, u.ML)
	assert.Zero(t, u.TokenVersion)

	missing, err := repo.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBumpTokenVersionInvalidatesClaims(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateUser(ctx, User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	v, err := repo.GetTokenVersion(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, v)

	require.NoError(t, repo.BumpTokenVersion(ctx, id))

	v, err = repo.GetTokenVersion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestUpdatePasswordRefusesMLUsers(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO users (ml) VALUES (1)`)
	require.NoError(t, err)

	var id int64
	require.NoError(t, db.QueryRow(`SELECT id FROM users WHERE ml = 1`).Scan(&id))

	err = repo.UpdatePasswordAndBumpTokenVersion(ctx, id, "newhash")
	require.Error(t, err)
}
