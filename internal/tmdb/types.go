package tmdb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Clark-Hu/mytv-catalog/internal/domain"
)

// StatusError reports a non-2xx response from TMDB.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb: %s returned %d", e.Endpoint, e.StatusCode)
}

// MoviesOutcome is the result of a listing or search call. A failed call
// carries Err and no movies.
type MoviesOutcome struct {
	Movies []domain.Movie
	Err    error
}

// Status classifies the outcome.
func (o MoviesOutcome) Status() domain.FetchStatus {
	switch {
	case o.Err != nil:
		return domain.FetchFailed
	case len(o.Movies) == 0:
		return domain.FetchEmpty
	default:
		return domain.FetchOK
	}
}

// GenresOutcome is the result of a genre list call. Table is never nil.
type GenresOutcome struct {
	Table domain.GenreTable
	Err   error
}

// Status classifies the outcome.
func (o GenresOutcome) Status() domain.FetchStatus {
	switch {
	case o.Err != nil:
		return domain.FetchFailed
	case len(o.Table) == 0:
		return domain.FetchEmpty
	default:
		return domain.FetchOK
	}
}

var errMissingResults = errors.New("response has no results array")

type genreListResponse struct {
	Genres []genrePayload `json:"genres"`
}

type genrePayload struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type movieListResponse struct {
	Results *[]moviePayload `json:"results"`
}

// moviePayload keeps the mandatory fields as pointers so absence can be told
// apart from zero values.
type moviePayload struct {
	ID          *int          `json:"id"`
	Title       *string       `json:"title"`
	Overview    *string       `json:"overview"`
	PosterPath  *string       `json:"poster_path"`
	ReleaseDate lenientString `json:"release_date"`
	VoteAverage *float64      `json:"vote_average"`
	GenreIDs    []int         `json:"genre_ids"`
}

func (r movieListResponse) toMovies() ([]domain.Movie, error) {
	if r.Results == nil {
		return nil, errMissingResults
	}
	movies := make([]domain.Movie, 0, len(*r.Results))
	for i, p := range *r.Results {
		m, err := p.toMovie()
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		movies = append(movies, m)
	}
	return movies, nil
}

func (p moviePayload) toMovie() (domain.Movie, error) {
	switch {
	case p.ID == nil:
		return domain.Movie{}, errors.New("missing id")
	case p.Title == nil:
		return domain.Movie{}, errors.New("missing title")
	case p.Overview == nil:
		return domain.Movie{}, errors.New("missing overview")
	}
	genreIDs := p.GenreIDs
	if genreIDs == nil {
		genreIDs = []int{}
	}
	return domain.Movie{
		ID:          *p.ID,
		Title:       *p.Title,
		Overview:    *p.Overview,
		PosterPath:  p.PosterPath,
		ReleaseDate: p.ReleaseDate.value,
		VoteAverage: p.VoteAverage,
		GenreIDs:    genreIDs,
	}, nil
}

// lenientString decodes a JSON string and treats null or any other JSON type as absent.
type lenientString struct {
	value *string
}

func (s *lenientString) UnmarshalJSON(b []byte) error {
	s.value = nil
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	s.value = &v
	return nil
}
