package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/subway-facility-dashboard/internal/domain"
	"github.com/couchcryptid/subway-facility-dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
)

// LoadFunc produces a fresh bundle.
type LoadFunc func(ctx context.Context) (domain.Bundle, error)

// Cache holds one bundle for a fixed TTL. Expiry is all-or-nothing: after
// the TTL the next Get reloads every dataset.
type Cache struct {
	load    LoadFunc
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger

	// loadMu serialises loads so concurrent misses share one refresh.
	loadMu sync.Mutex

	// mu guards the fields below. It is never held across a load.
	mu        sync.RWMutex
	bundle    domain.Bundle
	loaded    bool
	expiresAt time.Time
	lastErr   error
}

// NewCache creates an empty cache. Nothing is fetched until the first Get.
func NewCache(load LoadFunc, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Cache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		load:    load,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
	}
}

// Get returns the cached bundle, loading it when absent or expired.
// A valid bundle is returned without waiting on an in-flight refresh.
// A failed load is not cached.
func (c *Cache) Get(ctx context.Context) (domain.Bundle, error) {
	if b, ok := c.current(); ok {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return b, nil
	}
	c.metrics.CacheLookups.WithLabelValues("miss").Inc()

	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	// Another caller may have loaded while this one waited.
	if b, ok := c.current(); ok {
		return b, nil
	}
	return c.refresh(ctx)
}

// Refresh reloads unconditionally. On failure a still-valid bundle is kept.
func (c *Cache) Refresh(ctx context.Context) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	_, err := c.refresh(ctx)
	return err
}

// Invalidate drops the cached bundle.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bundle = domain.Bundle{}
	c.loaded = false
	c.expiresAt = time.Time{}
}

// ExpiresAt returns when the cached bundle expires, or the zero time if
// nothing is cached.
func (c *Cache) ExpiresAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiresAt
}

// CheckReadiness reports the error of the last refresh attempt, if it failed.
func (c *Cache) CheckReadiness(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastErr != nil {
		return fmt.Errorf("last dataset refresh failed: %w", c.lastErr)
	}
	return nil
}

func (c *Cache) current() (domain.Bundle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.loaded && c.clock.Now().Before(c.expiresAt) {
		return c.bundle, true
	}
	return domain.Bundle{}, false
}

// refresh runs one load. Callers hold loadMu.
func (c *Cache) refresh(ctx context.Context) (domain.Bundle, error) {
	b, err := c.load(ctx)
	if err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		c.metrics.CacheRefreshes.WithLabelValues("error").Inc()
		if !errors.Is(err, context.Canceled) {
			c.logger.Error("dataset refresh failed", "error", err)
		}
		return domain.Bundle{}, err
	}

	c.mu.Lock()
	c.bundle = b
	c.loaded = true
	c.expiresAt = c.clock.Now().Add(c.ttl)
	c.lastErr = nil
	expiresAt := c.expiresAt
	c.mu.Unlock()

	c.metrics.CacheRefreshes.WithLabelValues("success").Inc()
	c.logger.Info("dataset cache refreshed", "expires_at", expiresAt)
	return b, nil
}
