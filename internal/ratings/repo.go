package ratings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cinetic/pkg/models"
)

// ErrMovieNotFound is returned when a rating targets an imdb id that
// is not in the catalog.
var ErrMovieNotFound = errors.New("movie not found")

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Create inserts a rating, copying the movie's tmdb id in the same
// statement so a rating can never point at an unknown movie.
func (r *Repo) Create(ctx context.Context, userID int64, imdbID string, rating int) (*models.Rating, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO ratings (user_id, imdb_id, tmdb_id, rating)
		SELECT ?, imdb_id, tmdb_id, ? FROM movies WHERE imdb_id = ?
	`, userID, rating, imdbID)
	if err != nil {
		return nil, fmt.Errorf("insert rating: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("insert rating rows: %w", err)
	}
	if affected == 0 {
		return nil, ErrMovieNotFound
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Rating, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, imdb_id, tmdb_id, rating, date_rated
		FROM ratings
		WHERE id = ?
	`, id)

	rating, err := scanRating(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan rating: %w", err)
	}
	return rating, nil
}

func (r *Repo) ListByMovie(ctx context.Context, imdbID string, limit, offset int) ([]models.Rating, error) {
	limit, offset = clamp(limit, offset)
	return r.list(ctx, `
		SELECT id, user_id, imdb_id, tmdb_id, rating, date_rated
		FROM ratings
		WHERE imdb_id = ?
		ORDER BY date_rated DESC
		LIMIT ? OFFSET ?
	`, imdbID, limit, offset)
}

func (r *Repo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Rating, error) {
	limit, offset = clamp(limit, offset)
	return r.list(ctx, `
		SELECT id, user_id, imdb_id, tmdb_id, rating, date_rated
		FROM ratings
		WHERE user_id = ?
		ORDER BY date_rated DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
}

// Delete removes a rating owned by the given user. Reports whether a
// row was deleted.
func (r *Repo) Delete(ctx context.Context, id, userID int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM ratings WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete rating: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete rating rows: %w", err)
	}
	return affected > 0, nil
}

func (r *Repo) list(ctx context.Context, query string, args ...any) ([]models.Rating, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var out []models.Rating
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out = append(out, *rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ratings rows: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRating(row scanner) (*models.Rating, error) {
	var (
		rating models.Rating
		tmdbID sql.NullInt64
		rated  sql.NullTime
	)
	if err := row.Scan(&rating.ID, &rating.UserID, &rating.IMDBID, &tmdbID, &rating.Rating, &rated); err != nil {
		return nil, err
	}
	rating.TMDBID = tmdbID.Int64
	rating.DateRated = rated.Time
	return &rating, nil
}

func clamp(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
