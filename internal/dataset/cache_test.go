package dataset

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/subway-facility-dashboard/internal/domain"
	"github.com/couchcryptid/subway-facility-dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- counting loader ---

type countingLoader struct {
	calls int
	err   error
	clock clockwork.Clock
}

func (l *countingLoader) Load(_ context.Context) (domain.Bundle, error) {
	l.calls++
	if l.err != nil {
		return domain.Bundle{}, l.err
	}
	return domain.Bundle{
		Status:    domain.Table{Dataset: domain.DatasetStatus, Rows: make([]domain.Record, l.calls)},
		FetchedAt: l.clock.Now(),
	}, nil
}

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *countingLoader, *clockwork.FakeClock, *observability.Metrics) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC))
	loader := &countingLoader{clock: clock}
	metrics := observability.NewMetricsForTesting()
	return NewCache(loader.Load, ttl, clock, metrics, discardLogger()), loader, clock, metrics
}

func TestCache_FirstGetLoads(t *testing.T) {
	cache, loader, clock, _ := newTestCache(t, time.Hour)
	assert.True(t, cache.ExpiresAt().IsZero())

	b, err := cache.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, loader.calls)
	assert.Len(t, b.Status.Rows, 1)
	assert.Equal(t, clock.Now().Add(time.Hour), cache.ExpiresAt())
}

func TestCache_HitWithinTTL(t *testing.T) {
	cache, loader, clock, metrics := newTestCache(t, time.Hour)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	b, err := cache.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, loader.calls, "should only load once within the TTL")
	assert.Len(t, b.Status.Rows, 1)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("miss")), 0)
}

func TestCache_ReloadsAfterExpiry(t *testing.T) {
	cache, loader, clock, _ := newTestCache(t, time.Hour)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	clock.Advance(time.Hour)
	b, err := cache.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, loader.calls)
	assert.Len(t, b.Status.Rows, 2, "the whole bundle is replaced")
}

func TestCache_FailedLoadIsNotCached(t *testing.T) {
	cache, loader, _, metrics := newTestCache(t, time.Hour)
	loader.err = errors.New("upstream down")

	_, err := cache.Get(context.Background())
	require.Error(t, err)
	require.Error(t, cache.CheckReadiness(context.Background()))

	loader.err = nil
	_, err = cache.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, loader.calls)
	require.NoError(t, cache.CheckReadiness(context.Background()))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CacheRefreshes.WithLabelValues("error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CacheRefreshes.WithLabelValues("success")), 0)
}

func TestCache_RefreshFailureKeepsValidBundle(t *testing.T) {
	cache, loader, _, _ := newTestCache(t, time.Hour)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	loader.err = errors.New("upstream down")
	require.Error(t, cache.Refresh(context.Background()))

	b, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, b.Status.Rows, 1)
	assert.Equal(t, 2, loader.calls)
}

func TestCache_RefreshForcesReload(t *testing.T) {
	cache, loader, _, _ := newTestCache(t, time.Hour)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.NoError(t, cache.Refresh(context.Background()))

	b, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
	assert.Len(t, b.Status.Rows, 2)
}

func TestCache_Invalidate(t *testing.T) {
	cache, loader, _, _ := newTestCache(t, time.Hour)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	cache.Invalidate()
	assert.True(t, cache.ExpiresAt().IsZero())

	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
}

func TestCache_GetDoesNotWaitForInFlightRefresh(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC))
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	load := func(_ context.Context) (domain.Bundle, error) {
		if calls.Add(1) > 1 {
			close(started)
			<-release
		}
		return domain.Bundle{FetchedAt: clock.Now()}, nil
	}
	cache := NewCache(load, time.Hour, clock, observability.NewMetricsForTesting(), discardLogger())

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	refreshed := make(chan error, 1)
	go func() { refreshed <- cache.Refresh(context.Background()) }()
	<-started

	served := make(chan error, 1)
	go func() {
		if _, err := cache.Get(context.Background()); err != nil {
			served <- err
			return
		}
		_ = cache.ExpiresAt()
		served <- cache.CheckReadiness(context.Background())
	}()

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Get and CheckReadiness waited on the in-flight refresh")
	}

	close(release)
	require.NoError(t, <-refreshed)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCache_ConcurrentMissesShareOneLoad(t *testing.T) {
	cache, loader, _, _ := newTestCache(t, time.Hour)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Get(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, loader.calls)
}

// --- warmer ---

type refreshCounter struct {
	calls chan struct{}
}

func (r *refreshCounter) Refresh(_ context.Context) error {
	r.calls <- struct{}{}
	return nil
}

func TestNewWarmer_InvalidSchedule(t *testing.T) {
	_, err := NewWarmer("not a schedule", &refreshCounter{}, time.Second, discardLogger())
	require.Error(t, err)
}

func TestWarmer_RunsRefresh(t *testing.T) {
	target := &refreshCounter{calls: make(chan struct{}, 1)}
	w, err := NewWarmer("@every 1h", target, time.Second, discardLogger())
	require.NoError(t, err)

	w.run()

	select {
	case <-target.calls:
	default:
		t.Fatal("expected a refresh")
	}
	require.NoError(t, w.Stop(context.Background()))
}
