// Package catalog aggregates TMDB listings into the sections shown to users
// and serves movie search.
package catalog

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Clark-Hu/mytv-catalog/internal/domain"
	"github.com/Clark-Hu/mytv-catalog/internal/tmdb"
)

// ErrUnknownSection is returned when a section key is not configured.
var ErrUnknownSection = errors.New("catalog: unknown section")

// GenreResolver loads the genre table used to label movies.
type GenreResolver interface {
	Genres(ctx context.Context) tmdb.GenresOutcome
}

// MovieFetcher loads one catalog listing.
type MovieFetcher interface {
	Movies(ctx context.Context, path string) tmdb.MoviesOutcome
}

// Listing is the combined result of one aggregation pass.
type Listing struct {
	Movies   []domain.SectionedMovie
	Genres   domain.GenreTable
	Sections []domain.SectionReport
}

// Section returns the movies that came from the section labelled label, in provider order.
func (l Listing) Section(label string) []domain.Movie {
	var out []domain.Movie
	for _, m := range l.Movies {
		if m.Section == label {
			out = append(out, m.Movie)
		}
	}
	return out
}

// Aggregator fans out one request per section and joins the results.
type Aggregator struct {
	genres   GenreResolver
	movies   MovieFetcher
	sections []domain.SectionDescriptor
	logger   *zap.Logger
}

// NewAggregator builds an Aggregator over the given sections. A nil or empty
// sections slice selects domain.DefaultSections.
func NewAggregator(genres GenreResolver, movies MovieFetcher, sections []domain.SectionDescriptor, logger *zap.Logger) *Aggregator {
	if len(sections) == 0 {
		sections = domain.DefaultSections()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		genres:   genres,
		movies:   movies,
		sections: append([]domain.SectionDescriptor(nil), sections...),
		logger:   logger,
	}
}

// Sections returns the configured section descriptors.
func (a *Aggregator) Sections() []domain.SectionDescriptor {
	return append([]domain.SectionDescriptor(nil), a.sections...)
}

// FetchAll resolves genres, then fetches every section in parallel. It always
// completes: a failed section contributes no movies and is reported as failed.
// The combined order follows the section list, never completion order.
func (a *Aggregator) FetchAll(ctx context.Context) Listing {
	table := a.resolveGenres(ctx)

	outcomes := make([]tmdb.MoviesOutcome, len(a.sections))
	var g errgroup.Group
	for i, section := range a.sections {
		g.Go(func() error {
			outcomes[i] = a.movies.Movies(ctx, section.Path)
			return nil
		})
	}
	_ = g.Wait()

	listing := Listing{
		Genres:   table,
		Sections: make([]domain.SectionReport, 0, len(a.sections)),
	}
	for i, section := range a.sections {
		listing.Movies = append(listing.Movies, tag(outcomes[i].Movies, section.Label)...)
		listing.Sections = append(listing.Sections, report(section, outcomes[i]))
	}
	if listing.Movies == nil {
		listing.Movies = []domain.SectionedMovie{}
	}

	a.logger.Debug("catalog: aggregation pass complete",
		zap.Int("movies", len(listing.Movies)),
		zap.Int("genres", len(table)),
	)
	return listing
}

// FetchAllAsync runs FetchAll on its own goroutine and calls deliver exactly
// once with the result. deliver runs on that goroutine.
func (a *Aggregator) FetchAllAsync(ctx context.Context, deliver func(Listing)) {
	go func() {
		deliver(a.FetchAll(ctx))
	}()
}

// FetchSection resolves genres and fetches a single section by key.
func (a *Aggregator) FetchSection(ctx context.Context, key string) (Listing, error) {
	section, ok := a.lookup(key)
	if !ok {
		return Listing{}, ErrUnknownSection
	}
	table := a.resolveGenres(ctx)
	out := a.movies.Movies(ctx, section.Path)

	movies := tag(out.Movies, section.Label)
	if movies == nil {
		movies = []domain.SectionedMovie{}
	}
	return Listing{
		Movies:   movies,
		Genres:   table,
		Sections: []domain.SectionReport{report(section, out)},
	}, nil
}

func (a *Aggregator) lookup(key string) (domain.SectionDescriptor, bool) {
	for _, s := range a.sections {
		if s.Key == key {
			return s, true
		}
	}
	return domain.SectionDescriptor{}, false
}

func (a *Aggregator) resolveGenres(ctx context.Context) domain.GenreTable {
	out := a.genres.Genres(ctx)
	if out.Table == nil {
		return domain.GenreTable{}
	}
	return out.Table
}

func tag(movies []domain.Movie, label string) []domain.SectionedMovie {
	if len(movies) == 0 {
		return nil
	}
	tagged := make([]domain.SectionedMovie, 0, len(movies))
	for _, m := range movies {
		tagged = append(tagged, domain.SectionedMovie{Movie: m, Section: label})
	}
	return tagged
}

func report(section domain.SectionDescriptor, out tmdb.MoviesOutcome) domain.SectionReport {
	r := domain.SectionReport{
		Key:    section.Key,
		Label:  section.Label,
		Status: out.Status(),
		Count:  len(out.Movies),
	}
	if out.Err != nil {
		r.Error = out.Err.Error()
	}
	return r
}
