package httpserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Clark-Hu/mytv-catalog/internal/catalog"
	"github.com/Clark-Hu/mytv-catalog/internal/domain"
)

func BenchmarkHandleBrowse(b *testing.B) {
	listing := catalog.Listing{Genres: domain.GenreTable{28: "Action", 12: "Adventure"}}
	for i := 0; i < 60; i++ {
		listing.Movies = append(listing.Movies, domain.SectionedMovie{
			Section: "Popular",
			Movie: domain.Movie{
				ID:          i,
				Title:       fmt.Sprintf("Benchmark Movie %d", i),
				ReleaseDate: strPtr("2020-01-01"),
				GenreIDs:    []int{28, 12},
			},
		})
	}
	srv := buildTestServer(b, &fakeCatalog{listing: listing}, Deps{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "/movies/sections", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
