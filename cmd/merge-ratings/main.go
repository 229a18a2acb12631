// Command merge-ratings joins the MovieLens ratings.csv with links.csv
// into the ratings_cleaned.csv consumed by import-ratings. Ratings are
// doubled onto the 1-10 scale used by the catalog, imdb ids get their
// "tt" prefix and unix timestamps become plain dates.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

func main() {
	var (
		ratingsIn = flag.String("ratings", "data/ml-latest-small/ratings.csv", "input CSV path for raw ratings")
		linksIn   = flag.String("links", "data/ml-latest-small/links.csv", "input CSV path for movie id links")
		out       = flag.String("out", "data/ml-latest-small/ratings_cleaned.csv", "output CSV path")
	)
	flag.Parse()

	links, err := readLinks(*linksIn)
	if err != nil {
		log.Fatalf("read links failed: %v", err)
	}

	written, dropped, err := mergeRatings(*ratingsIn, *out, links)
	if err != nil {
		log.Fatalf("merge failed: %v", err)
	}

	log.Printf("merged file saved as %s (%d rows, %d without a link dropped)", *out, written, dropped)
}

type link struct {
	IMDBID string
	TMDBID string
}

func readLinks(path string) (map[string]link, error) {
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

	links := make(map[string]link)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		movieID := valueAt(header, row, "movieid")
		imdbID := valueAt(header, row, "imdbid")
		if movieID == "" || imdbID == "" {
			continue
		}

		links[movieID] = link{
			IMDBID: "tt" + imdbID,
			TMDBID: valueAt(header, row, "tmdbid"),
		}
	}
	return links, nil
}

func mergeRatings(inPath, outPath string, links map[string]link) (written, dropped int, err error) {
	in, err := os.Open(inPath)
	if err != nil {
		return 0, 0, err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, 0, err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return 0, 0, err
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"userId", "rating", "imdbId", "tmdbId", "date_rated"}); err != nil {
		return 0, 0, err
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, 0, err
		}

		movieID := valueAt(header, row, "movieid")
		lnk, ok := links[movieID]
		if !ok {
			// inner join: ratings without a link row are dropped
			dropped++
			continue
		}

		rating, err := scaleRating(valueAt(header, row, "rating"))
		if err != nil {
			return 0, 0, fmt.Errorf("movie %s: %w", movieID, err)
		}

		date, err := timestampToDate(valueAt(header, row, "timestamp"))
		if err != nil {
			return 0, 0, fmt.Errorf("movie %s: %w", movieID, err)
		}

		if err := w.Write([]string{
			valueAt(header, row, "userid"),
			strconv.Itoa(rating),
			lnk.IMDBID,
			lnk.TMDBID,
			date,
		}); err != nil {
			return 0, 0, err
		}
		written++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, 0, err
	}
	return written, dropped, nil
}

// scaleRating doubles the 0.5-5.0 star rating onto the 1-10 scale
// used by the catalog, IMDb and TMDB.
func scaleRating(raw string) (int, error) {
	stars, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse rating %q: %w", raw, err)
	}
	scaled := int(stars * 2)
	if scaled < 1 || scaled > 10 {
		return 0, fmt.Errorf("rating %q out of range", raw)
	}
	return scaled, nil
}

func timestampToDate(raw string) (string, error) {
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02"), nil
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
