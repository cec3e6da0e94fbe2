package dataset

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/subway-facility-dashboard/internal/domain"
	"github.com/couchcryptid/subway-facility-dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
)

// TableFetcher retrieves a full dataset table from the upstream.
type TableFetcher interface {
	FetchTable(ctx context.Context, endpoint string, pageSize int) (domain.Table, error)
}

// RefreshNotifier is told about every successfully loaded bundle.
type RefreshNotifier interface {
	NotifyRefresh(ctx context.Context, summary domain.RefreshSummary) error
}

// Source pairs a dataset with the page size used to fetch it.
type Source struct {
	Dataset  domain.Dataset
	PageSize int
}

// DefaultSources returns the four datasets in load order. The closure dataset
// is small and uses its own page size.
func DefaultSources(pageSize, closurePageSize int) []Source {
	return []Source{
		{Dataset: domain.DatasetClosures, PageSize: closurePageSize},
		{Dataset: domain.DatasetStatus, PageSize: pageSize},
		{Dataset: domain.DatasetLength, PageSize: pageSize},
		{Dataset: domain.DatasetAmenities, PageSize: pageSize},
	}
}

// Loader fetches all sources one after another into a Bundle.
type Loader struct {
	fetcher  TableFetcher
	sources  []Source
	notifier RefreshNotifier
	clock    clockwork.Clock
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewLoader creates a Loader. notifier may be nil.
func NewLoader(fetcher TableFetcher, sources []Source, notifier RefreshNotifier, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Loader {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Loader{
		fetcher:  fetcher,
		sources:  sources,
		notifier: notifier,
		clock:    clock,
		metrics:  metrics,
		logger:   logger,
	}
}

// Load fetches every source. Any failure aborts the whole load.
func (l *Loader) Load(ctx context.Context) (domain.Bundle, error) {
	var b domain.Bundle
	for _, src := range l.sources {
		endpoint := src.Dataset.Endpoint()
		t, err := l.fetcher.FetchTable(ctx, endpoint, src.PageSize)
		if err != nil {
			return domain.Bundle{}, fmt.Errorf("load %s dataset: %w", src.Dataset, err)
		}
		t.Dataset = src.Dataset
		t.Endpoint = endpoint
		b.Set(t)
		l.metrics.DatasetRows.WithLabelValues(string(src.Dataset)).Set(float64(len(t.Rows)))
	}
	b.FetchedAt = l.clock.Now()

	summary := b.Summarize()
	l.logger.Info("datasets loaded", "summary", summary.Datasets)

	if l.notifier != nil {
		if err := l.notifier.NotifyRefresh(ctx, summary); err != nil {
			l.logger.Warn("refresh notification failed", "error", err)
		}
	}
	return b, nil
}
