package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Clark-Hu/mytv-catalog/internal/domain"
	"github.com/Clark-Hu/mytv-catalog/internal/tmdb"
)

// ErrEmptyQuery is returned for a search query with no text.
var ErrEmptyQuery = errors.New("catalog: empty search query")

// MovieSearcher runs a title search upstream.
type MovieSearcher interface {
	Search(ctx context.Context, query string) tmdb.MoviesOutcome
}

// Searcher validates queries and reports upstream failures as errors.
type Searcher struct {
	client MovieSearcher
}

// NewSearcher wraps client.
func NewSearcher(client MovieSearcher) *Searcher {
	return &Searcher{client: client}
}

// Search trims query and runs it. An empty query issues no request.
func (s *Searcher) Search(ctx context.Context, query string) ([]domain.Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	out := s.client.Search(ctx, query)
	if out.Err != nil {
		return nil, fmt.Errorf("search %q: %w", query, out.Err)
	}
	if out.Movies == nil {
		return []domain.Movie{}, nil
	}
	return out.Movies, nil
}
