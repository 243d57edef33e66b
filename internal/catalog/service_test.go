package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/mytv-catalog/internal/domain"
	"github.com/Clark-Hu/mytv-catalog/internal/tmdb"
)

type recordingHooks struct {
	recorded  []domain.Pass
	published []domain.Pass
	err       error
	ctxErr    error
}

func (r *recordingHooks) RecordPass(ctx context.Context, pass domain.Pass) error {
	r.ctxErr = ctx.Err()
	r.recorded = append(r.recorded, pass)
	return r.err
}

func (r *recordingHooks) PassCompleted(_ context.Context, pass domain.Pass) error {
	r.published = append(r.published, pass)
	return r.err
}

func newTestService(hooks *recordingHooks) *Service {
	fetcher := newGatedFetcher(map[string]tmdb.MoviesOutcome{
		featuredPath: {Movies: movies(1)},
		popularPath:  {Movies: movies(2, 3)},
	})
	genres := &fakeGenres{out: tmdb.GenresOutcome{Table: domain.GenreTable{28: "Action", 12: "Adventure"}}}
	agg := NewAggregator(genres, fetcher, nil, nil)
	opts := ServiceOptions{}
	if hooks != nil {
		opts.Recorder = hooks
		opts.Notifier = hooks
	}
	return NewService(agg, NewSearcher(&fakeSearch{}), opts)
}

func TestBrowseRecordsPass(t *testing.T) {
	hooks := &recordingHooks{}
	svc := newTestService(hooks)

	pass, listing := svc.Browse(context.Background())
	_, err := uuid.Parse(pass.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, pass.Total)
	assert.Equal(t, 2, pass.GenreCount)
	assert.Len(t, pass.Sections, 3)
	assert.False(t, pass.FinishedAt.Before(pass.StartedAt))
	assert.Len(t, listing.Movies, 3)

	require.Len(t, hooks.recorded, 1)
	require.Len(t, hooks.published, 1)
	assert.Equal(t, pass.ID, hooks.recorded[0].ID)
	assert.Equal(t, pass.ID, hooks.published[0].ID)
}

func TestBrowseSurvivesHookFailures(t *testing.T) {
	hooks := &recordingHooks{err: errors.New("db down")}
	svc := newTestService(hooks)

	pass, listing := svc.Browse(context.Background())
	assert.Equal(t, 3, pass.Total)
	assert.Len(t, listing.Movies, 3)
	assert.Len(t, hooks.published, 1)
}

func TestBrowseRecordsAfterCallerCancels(t *testing.T) {
	hooks := &recordingHooks{}
	svc := newTestService(hooks)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc.Browse(ctx)
	require.Len(t, hooks.recorded, 1)
	assert.NoError(t, hooks.ctxErr)
}

func TestBrowseWithoutHooks(t *testing.T) {
	svc := newTestService(nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) }

	pass, _ := svc.Browse(context.Background())
	assert.Zero(t, pass.Duration())
	assert.Len(t, svc.Sections(), 3)
	assert.Len(t, svc.Genres(context.Background()), 2)
}
