// Command import-ratings bulk-loads the merged MovieLens ratings CSV
// into an empty ratings/users database. It is a one-shot script: the
// userId sequence in the CSV must be exactly 1..N in order so the
// autoincrement user ids line up with the CSV without explicit keys.
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"cinetic/pkg/database"
)

func main() {
	var (
		ratingsIn = flag.String("ratings", "data/ml-latest-small/ratings_cleaned.csv", "input CSV path for merged ratings")
	)
	flag.Parse()

	ctx := context.Background()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	inserted, skipped, err := importRatings(ctx, db, *ratingsIn)
	if err != nil {
		log.Fatalf("import ratings failed: %v", err)
	}

	log.Printf("imported %d ratings from %s (%d skipped, movie not in catalog)", inserted, *ratingsIn, skipped)
}

type ratingRow struct {
	UserID    int64
	Rating    int
	IMDBID    string
	TMDBID    sql.NullInt64
	DateRated time.Time
}

func importRatings(ctx context.Context, db *sql.DB, path string) (inserted, skipped int, err error) {
	rows, err := readRatings(path)
	if err != nil {
		return 0, 0, err
	}

	userCount, err := checkUserSequence(rows)
	if err != nil {
		return 0, 0, err
	}

	if err := insertMLUsers(ctx, db, userCount); err != nil {
		return 0, 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin ratings tx: %w", err)
	}
	defer tx.Rollback()

	// the inner SELECT gates on catalog membership: ratings for movies
	// the seeder never stored are dropped
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ratings (user_id, imdb_id, tmdb_id, rating, date_rated)
		SELECT ?, ?, ?, ?, ? FROM movies WHERE imdb_id = ?
	`)
	if err != nil {
		return 0, 0, fmt.Errorf("prepare ratings stmt: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		res, err := stmt.ExecContext(ctx, row.UserID, row.IMDBID, row.TMDBID, row.Rating, row.DateRated, row.IMDBID)
		if err != nil {
			return 0, 0, fmt.Errorf("insert rating for %s: %w", row.IMDBID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, 0, fmt.Errorf("insert rating rows for %s: %w", row.IMDBID, err)
		}
		if n == 0 {
			skipped++
			continue
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit ratings: %w", err)
	}
	return inserted, skipped, nil
}

func readRatings(path string) ([]ratingRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	var rows []ratingRow
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}

		userID, err := strconv.ParseInt(valueAt(header, row, "userid"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse userId: %w", err)
		}
		rating, err := strconv.Atoi(valueAt(header, row, "rating"))
		if err != nil {
			return nil, fmt.Errorf("parse rating for user %d: %w", userID, err)
		}
		imdbID := valueAt(header, row, "imdbid")
		if imdbID == "" {
			continue
		}
		tmdbID, err := parseNullInt(valueAt(header, row, "tmdbid"))
		if err != nil {
			return nil, fmt.Errorf("parse tmdbId for %s: %w", imdbID, err)
		}
		rated, err := time.Parse("2006-01-02", valueAt(header, row, "date_rated"))
		if err != nil {
			return nil, fmt.Errorf("parse date_rated for %s: %w", imdbID, err)
		}

		rows = append(rows, ratingRow{
			UserID:    userID,
			Rating:    rating,
			IMDBID:    imdbID,
			TMDBID:    tmdbID,
			DateRated: rated,
		})
	}
	return rows, nil
}

// checkUserSequence verifies the distinct userId sequence is exactly
// [1, 2, ..., N] in that order, which guarantees autoincrement ids
// will align with the CSV userId column.
func checkUserSequence(rows []ratingRow) (int, error) {
	seen := make(map[int64]bool)
	var next int64 = 1
	for _, row := range rows {
		if seen[row.UserID] {
			continue
		}
		if row.UserID != next {
			return 0, fmt.Errorf("user sequence check failed: expected userId %d, got %d", next, row.UserID)
		}
		seen[row.UserID] = true
		next++
	}
	return int(next - 1), nil
}

func insertMLUsers(ctx context.Context, db *sql.DB, count int) error {
	var existing int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&existing); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("users table is not empty (%d rows); refusing to import", existing)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin users tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO users (ml) VALUES (1)`)
	if err != nil {
		return fmt.Errorf("prepare users stmt: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < count; i++ {
		if _, err := stmt.ExecContext(ctx); err != nil {
			return fmt.Errorf("insert ml user %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit users: %w", err)
	}
	log.Printf("created %d ml users", count)
	return nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseNullInt(raw string) (sql.NullInt64, error) {
	if raw == "" {
		return sql.NullInt64{}, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: n, Valid: true}, nil
}
