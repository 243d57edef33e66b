package tmdb

import (
	"encoding/json"
	"testing"
)

func FuzzMovieListDecode(f *testing.F) {
	f.Add([]byte(`{"results":[{"id":1,"title":"A","overview":"","release_date":"2024-03-15"}]}`))
	f.Add([]byte(`{"results":[{"id":1,"title":"A","overview":"","release_date":7,"genre_ids":null}]}`))
	f.Add([]byte(`{"results":null}`))
	f.Add([]byte(`[]`))

	f.Fuzz(func(t *testing.T, body []byte) {
		var payload movieListResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			return
		}
		movies, err := payload.toMovies()
		if err != nil {
			if movies != nil {
				t.Fatalf("failed decode returned movies: %+v", movies)
			}
			return
		}
		if len(movies) != len(*payload.Results) {
			t.Fatalf("got %d movies for %d results", len(movies), len(*payload.Results))
		}
		for _, m := range movies {
			if m.GenreIDs == nil {
				t.Fatalf("genre ids should default to empty, got nil for movie %d", m.ID)
			}
			_ = m.FormattedReleaseDate()
		}
	})
}
