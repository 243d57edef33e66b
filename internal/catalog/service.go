package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Clark-Hu/mytv-catalog/internal/domain"
)

const sideEffectTimeout = 5 * time.Second

// PassRecorder persists completed aggregation passes.
type PassRecorder interface {
	RecordPass(ctx context.Context, pass domain.Pass) error
}

// PassNotifier announces completed aggregation passes.
type PassNotifier interface {
	PassCompleted(ctx context.Context, pass domain.Pass) error
}

// Service is the entry point used by the HTTP layer: one aggregator, one
// searcher and the optional pass hooks, built once at startup.
type Service struct {
	aggregator *Aggregator
	searcher   *Searcher
	recorder   PassRecorder
	notifier   PassNotifier
	logger     *zap.Logger
	now        func() time.Time
}

// ServiceOptions carries the optional collaborators of a Service.
type ServiceOptions struct {
	Recorder PassRecorder
	Notifier PassNotifier
	Logger   *zap.Logger
}

// NewService wires the catalog service.
func NewService(aggregator *Aggregator, searcher *Searcher, opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		aggregator: aggregator,
		searcher:   searcher,
		recorder:   opts.Recorder,
		notifier:   opts.Notifier,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Browse runs one aggregation pass and records it. Recording and notification
// failures are logged and do not affect the returned listing.
func (s *Service) Browse(ctx context.Context) (domain.Pass, Listing) {
	started := s.now()
	listing := s.aggregator.FetchAll(ctx)
	pass := domain.Pass{
		ID:         uuid.NewString(),
		StartedAt:  started,
		FinishedAt: s.now(),
		GenreCount: len(listing.Genres),
		Total:      len(listing.Movies),
		Sections:   listing.Sections,
	}

	s.logger.Info("catalog: browse pass",
		zap.String("pass_id", pass.ID),
		zap.Int("total", pass.Total),
		zap.Duration("duration", pass.Duration()),
	)
	s.afterPass(ctx, pass)
	return pass, listing
}

// Section fetches one section by key.
func (s *Service) Section(ctx context.Context, key string) (Listing, error) {
	return s.aggregator.FetchSection(ctx, key)
}

// Sections lists the configured section descriptors.
func (s *Service) Sections() []domain.SectionDescriptor {
	return s.aggregator.Sections()
}

// Genres resolves the genre table on its own.
func (s *Service) Genres(ctx context.Context) domain.GenreTable {
	return s.aggregator.resolveGenres(ctx)
}

// Search runs a title search.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Movie, error) {
	return s.searcher.Search(ctx, query)
}

func (s *Service) afterPass(ctx context.Context, pass domain.Pass) {
	if s.recorder == nil && s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if s.recorder != nil {
		if err := s.recorder.RecordPass(ctx, pass); err != nil {
			s.logger.Warn("catalog: record pass failed", zap.String("pass_id", pass.ID), zap.Error(err))
		}
	}
	if s.notifier != nil {
		if err := s.notifier.PassCompleted(ctx, pass); err != nil {
			s.logger.Warn("catalog: publish pass failed", zap.String("pass_id", pass.ID), zap.Error(err))
		}
	}
}
