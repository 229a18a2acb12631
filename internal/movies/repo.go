package movies

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"cinetic/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

type ListQuery struct {
	Q      string // keyword search in title/original title
	Genre  string // genre name, exact match
	Sort   string // "popularity", "vote_average" or "title"
	Limit  int
	Offset int
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) GetByID(ctx context.Context, imdbID string) (*models.Movie, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT imdb_id, tmdb_id, title, original_title, overview, release_date,
		       popularity, vote_average, vote_count, original_language, runtime,
		       poster_path, backdrop_path
		FROM movies
		WHERE imdb_id = ?
	`, imdbID)

	m, err := scanMovie(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByID: %w", err)
	}

	if m.Genres, err = r.names(ctx, `
		SELECT g.name FROM genres g
		JOIN movie_genres mg ON mg.genre_id = g.id
		WHERE mg.movie_id = ?
		ORDER BY g.name
	`, imdbID); err != nil {
		return nil, err
	}
	if m.Directors, err = r.names(ctx, `
		SELECT d.name FROM directors d
		JOIN movie_directors md ON md.director_id = d.id
		WHERE md.movie_id = ?
		ORDER BY d.name
	`, imdbID); err != nil {
		return nil, err
	}
	if m.Actors, err = r.names(ctx, `
		SELECT a.name FROM actors a
		JOIN movie_actors ma ON ma.actor_id = a.id
		WHERE ma.movie_id = ?
		ORDER BY a.name
	`, imdbID); err != nil {
		return nil, err
	}

	return m, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var total int
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Movie, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.Movie, 0, q.Limit)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) names(ctx context.Context, query, imdbID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, query, imdbID)
	if err != nil {
		return nil, fmt.Errorf("names query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("names scan: %w", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("names rows: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMovie(row scanner) (*models.Movie, error) {
	var (
		m            models.Movie
		tmdbID       sql.NullInt64
		overview     sql.NullString
		releaseDate  sql.NullString
		popularity   sql.NullFloat64
		voteAverage  sql.NullFloat64
		voteCount    sql.NullInt64
		language     sql.NullString
		runtime      sql.NullInt64
		posterPath   sql.NullString
		backdropPath sql.NullString
	)

	if err := row.Scan(
		&m.IMDBID, &tmdbID, &m.Title, &m.OriginalTitle, &overview, &releaseDate,
		&popularity, &voteAverage, &voteCount, &language, &runtime,
		&posterPath, &backdropPath,
	); err != nil {
		return nil, err
	}

	m.TMDBID = tmdbID.Int64
	m.Overview = overview.String
	m.ReleaseDate = releaseDate.String
	m.Popularity = popularity.Float64
	m.VoteAverage = voteAverage.Float64
	m.VoteCount = int(voteCount.Int64)
	m.OriginalLanguage = language.String
	m.Runtime = int(runtime.Int64)
	m.PosterPath = posterPath.String
	m.BackdropPath = backdropPath.String
	return &m, nil
}

// buildListSQL builds either COUNT(*) or the SELECT list. The genre
// filter joins through the association table.
func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	baseSelect := `
		SELECT m.imdb_id, m.tmdb_id, m.title, m.original_title, m.overview, m.release_date,
		       m.popularity, m.vote_average, m.vote_count, m.original_language, m.runtime,
		       m.poster_path, m.backdrop_path
		FROM movies m
	`
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM movies m`
	}

	var where []string
	var args []any

	if strings.TrimSpace(q.Genre) != "" {
		baseSelect += `
		JOIN movie_genres mg ON mg.movie_id = m.imdb_id
		JOIN genres g ON g.id = mg.genre_id`
		where = append(where, "LOWER(g.name) = ?")
		args = append(args, strings.ToLower(strings.TrimSpace(q.Genre)))
	}

	if strings.TrimSpace(q.Q) != "" {
		where = append(where, "(LOWER(m.title) LIKE ? OR LOWER(m.original_title) LIKE ?)")
		kw := "%" + strings.ToLower(strings.TrimSpace(q.Q)) + "%"
		args = append(args, kw, kw)
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		switch q.Sort {
		case "popularity":
			sqlStr += " ORDER BY m.popularity DESC"
		case "vote_average":
			sqlStr += " ORDER BY m.vote_average DESC"
		default:
			sqlStr += " ORDER BY m.title ASC"
		}
		sqlStr += " LIMIT ? OFFSET ?"
		limit := q.Limit
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, limit, offset)
	}

	return sqlStr, args
}
