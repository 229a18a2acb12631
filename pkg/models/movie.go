package models

// Movie is the canonical catalog entity. The IMDb id is the durable
// primary key; the TMDB id is unique but only present for movies that
// came through the catalog pipeline.
type Movie struct {
	IMDBID           string   `json:"imdb_id"`
	TMDBID           int64    `json:"tmdb_id,omitempty"`
	Title            string   `json:"title"`
	OriginalTitle    string   `json:"original_title"`
	Overview         string   `json:"overview,omitempty"`
	ReleaseDate      string   `json:"release_date,omitempty"`
	Popularity       float64  `json:"popularity,omitempty"`
	VoteAverage      float64  `json:"vote_average,omitempty"`
	VoteCount        int      `json:"vote_count,omitempty"`
	OriginalLanguage string   `json:"original_language,omitempty"`
	Runtime          int      `json:"runtime,omitempty"`
	PosterPath       string   `json:"poster_path,omitempty"`
	BackdropPath     string   `json:"backdrop_path,omitempty"`
	Genres           []string `json:"genres,omitempty"`
	Directors        []string `json:"directors,omitempty"`
	Actors           []string `json:"actors,omitempty"`
}

// Genre is a reference entity from the fixed TMDB taxonomy.
type Genre struct {
	ID     int64  `json:"id"`
	TMDBID int64  `json:"tmdb_id"`
	Name   string `json:"name"`
}

// Person covers both directors and actors; the two are stored in
// separate tables because a person can hold either role per movie.
type Person struct {
	ID           int64  `json:"id"`
	TMDBPersonID int64  `json:"tmdb_person_id"`
	Name         string `json:"name"`
}
