// Package dashboard answers station lookups from the cached facility datasets.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/subway-facility-dashboard/internal/domain"
	"github.com/couchcryptid/subway-facility-dashboard/internal/observability"
	"github.com/couchcryptid/subway-facility-dashboard/internal/presenter"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptyQuery is returned for a blank query.
var ErrEmptyQuery = errors.New("empty station query")

// BundleSource supplies the current dataset bundle.
type BundleSource interface {
	Get(ctx context.Context) (domain.Bundle, error)
}

// Service runs one lookup as a single pass: bundle, name map, resolve, report.
type Service struct {
	source  BundleSource
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewService creates a Service reading bundles from source.
func NewService(source BundleSource, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{source: source, metrics: metrics, logger: logger}
}

// Lookup resolves query against the current bundle and builds its report.
// A query that matches no station is not an error; check Report.Found.
func (s *Service) Lookup(ctx context.Context, query string) (presenter.Report, error) {
	start := time.Now()
	defer func() { s.metrics.LookupDuration.Observe(time.Since(start).Seconds()) }()

	query = norm.NFC.String(strings.TrimSpace(query))
	if query == "" {
		return presenter.Report{}, ErrEmptyQuery
	}

	b, err := s.source.Get(ctx)
	if err != nil {
		return presenter.Report{}, fmt.Errorf("load datasets: %w", err)
	}

	names := domain.BuildNameMap(b.Tables()...)
	res := domain.Resolve(names, query)
	s.metrics.Resolutions.WithLabelValues(string(res.Match)).Inc()
	s.logger.Debug("station resolved",
		"query", query,
		"key", res.Key,
		"match", res.Match,
		"matched_key", res.MatchedKey,
		"score", res.Score,
		"targets", len(res.Targets),
	)

	return presenter.BuildReport(b, res), nil
}
