package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	ML           bool
	TokenVersion int
	CreatedAt    time.Time
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// CreateUser inserts a registered account and returns its id. ML users
// from the ratings import never go through here.
func (r *Repo) CreateUser(ctx context.Context, u User) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, ml)
		VALUES (?, ?, ?, 0)
	`, u.Username, u.Email, u.PasswordHash)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create user id: %w", err)
	}
	return id, nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	return r.getOne(ctx, `WHERE LOWER(email) = ?`, email)
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, `WHERE username = ?`, strings.TrimSpace(username))
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.getOne(ctx, `WHERE id = ?`, id)
}

func (r *Repo) getOne(ctx context.Context, where string, arg any) (*User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, ml, token_version, created_at
		FROM users `+where, arg)

	var (
		u        User
		username sql.NullString
		email    sql.NullString
		hash     sql.NullString
	)
	if err := row.Scan(&u.ID, &username, &email, &hash, &u.ML, &u.TokenVersion, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.Username = username.String
	u.Email = email.String
	u.PasswordHash = hash.String
	return &u, nil
}

func (r *Repo) GetTokenVersion(ctx context.Context, id int64) (int, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT token_version FROM users WHERE id = ?
	`, id)

	var version int
	if err := row.Scan(&version); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("get token version: %w", err)
	}
	return version, nil
}

func (r *Repo) UpdatePasswordAndBumpTokenVersion(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?, token_version = token_version + 1
		WHERE id = ? AND ml = 0
	`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update password: user not found")
	}
	return nil
}

func (r *Repo) BumpTokenVersion(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET token_version = token_version + 1
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("bump token version: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bump token version rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bump token version: user not found")
	}
	return nil
}
