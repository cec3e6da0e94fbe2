package seoul

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	"github.com/couchcryptid/subway-facility-dashboard/internal/domain"
	"github.com/couchcryptid/subway-facility-dashboard/internal/observability"
)

// DefaultBaseURL is the Seoul Open Data Plaza API root.
const DefaultBaseURL = "http://openapi.seoul.go.kr:8088"

// Page requests that fail with a transport error or a 5xx status are retried.
const (
	defaultMaxAttempts = 3
	initialBackoff     = 200 * time.Millisecond
	maxBackoff         = 2 * time.Second
)

// StatusError is a non-200 HTTP response from the upstream.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("seoul API status %d: %s", e.StatusCode, e.Body)
}

// Client fetches datasets from the Seoul Open Data API in XML format.
// It implements dataset.TableFetcher.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger

	maxAttempts int
	backoff     time.Duration
}

// NewClient creates a Seoul Open Data API client.
func NewClient(apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics:     metrics,
		logger:      logger,
		maxAttempts: defaultMaxAttempts,
		backoff:     initialBackoff,
	}
}

// FetchTable retrieves every row of endpoint, pageSize rows per request.
// The first page reports the total; further pages are requested until the
// total is covered. Rows are concatenated as received.
func (c *Client) FetchTable(ctx context.Context, endpoint string, pageSize int) (domain.Table, error) {
	if pageSize <= 0 {
		return domain.Table{}, fmt.Errorf("fetch %s: page size must be positive, got %d", endpoint, pageSize)
	}

	table := domain.Table{Endpoint: endpoint}

	first, err := c.fetchPage(ctx, endpoint, 1, pageSize)
	if err != nil {
		return domain.Table{}, err
	}
	table.Append(first.Columns, first.Rows)

	total := first.Total
	for start := pageSize + 1; start <= total; start += pageSize {
		end := min(start+pageSize-1, total)
		p, err := c.fetchPage(ctx, endpoint, start, end)
		if err != nil {
			return domain.Table{}, err
		}
		table.Append(p.Columns, p.Rows)
	}

	c.logger.Debug("dataset fetched", "endpoint", endpoint, "total", total, "rows", len(table.Rows))
	return table, nil
}

func (c *Client) pageURL(endpoint string, start, end int) string {
	return fmt.Sprintf("%s/%s/xml/%s/%d/%d/", c.baseURL, url.PathEscape(c.apiKey), url.PathEscape(endpoint), start, end)
}

func (c *Client) fetchPage(ctx context.Context, endpoint string, start, end int) (page, error) {
	backoff := c.backoff
	for attempt := 1; ; attempt++ {
		began := time.Now()
		p, err := c.doRequest(ctx, endpoint, start, end)
		c.metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(began).Seconds())

		if err == nil {
			c.metrics.UpstreamRequests.WithLabelValues(endpoint, "success").Inc()
			return p, nil
		}
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()

		if attempt >= c.maxAttempts || !retryable(ctx, err) {
			c.logger.Warn("seoul API request failed",
				"endpoint", endpoint,
				"start", start,
				"end", end,
				"attempts", attempt,
				"error", err,
			)
			return page{}, fmt.Errorf("fetch %s rows %d-%d: %w", endpoint, start, end, err)
		}

		c.logger.Debug("retrying seoul API request",
			"endpoint", endpoint,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		if !sharedretry.SleepWithContext(ctx, backoff) {
			return page{}, fmt.Errorf("fetch %s rows %d-%d: %w", endpoint, start, end, ctx.Err())
		}
		backoff = sharedretry.NextBackoff(backoff, maxBackoff)
	}
}

// retryable reports whether err is a transient transport or server failure.
// Upstream result codes and malformed bodies are final.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= http.StatusInternalServerError
	}
	var ne net.Error
	return errors.As(err, &ne)
}

func (c *Client) doRequest(ctx context.Context, endpoint string, start, end int) (page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(endpoint, start, end), nil)
	if err != nil {
		return page{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the request URL, which carries the API key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return page{}, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return page{}, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	p, err := decodePage(resp.Body)
	if err != nil {
		return page{}, err
	}
	if err := p.err(); err != nil {
		return page{}, err
	}
	return p, nil
}
