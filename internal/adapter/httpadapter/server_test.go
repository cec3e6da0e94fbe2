package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/couchcryptid/subway-facility-dashboard/internal/adapter/httpadapter"
	"github.com/couchcryptid/subway-facility-dashboard/internal/dashboard"
	"github.com/couchcryptid/subway-facility-dashboard/internal/domain"
	"github.com/couchcryptid/subway-facility-dashboard/internal/presenter"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockLookup struct {
	report  presenter.Report
	err     error
	queries []string
}

func (m *mockLookup) Lookup(_ context.Context, query string) (presenter.Report, error) {
	m.queries = append(m.queries, query)
	return m.report, m.err
}

func foundReport() presenter.Report {
	b := domain.Bundle{
		Status: domain.Table{
			Dataset: domain.DatasetStatus,
			Columns: []string{"STN_NM", "USE_YN"},
			Rows:    []domain.Record{{"STN_NM": "합정", "USE_YN": "사용가능"}},
		},
	}
	return presenter.BuildReport(b, domain.Resolution{
		Query: "합정", Key: "합정", MatchedKey: "합정", Match: domain.MatchExact, Score: 1, Targets: []string{"합정"},
	})
}

func notFoundReport() presenter.Report {
	return presenter.BuildReport(domain.Bundle{}, domain.Resolution{Query: "xyz", Key: "xyz", Match: domain.MatchNone, Targets: []string{}})
}

func newTestServer(t *testing.T, lookup httpadapter.Lookuper, readyErr error) *httpadapter.Server {
	t.Helper()
	renderer, err := presenter.NewRenderer()
	require.NoError(t, err)
	return httpadapter.NewServer(":0", lookup, renderer, &mockReadiness{err: readyErr}, slog.Default())
}

func get(srv http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(newTestServer(t, &mockLookup{}, nil), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(newTestServer(t, &mockLookup{}, nil), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(newTestServer(t, &mockLookup{}, fmt.Errorf("last dataset refresh failed")), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "last dataset refresh failed", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(newTestServer(t, &mockLookup{}, nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, &mockLookup{}, nil)

	rec := get(srv, "/healthz")
	_, err := uuid.Parse(rec.Header().Get(httpadapter.HeaderRequestID))
	require.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(httpadapter.HeaderRequestID, id)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(httpadapter.HeaderRequestID))
}

func TestPage_EmptyForm(t *testing.T) {
	lookup := &mockLookup{}
	rec := get(newTestServer(t, lookup, nil), "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), presenter.QueryPrompt)
	assert.Empty(t, lookup.queries, "no lookup without a query")
}

func TestPage_Found(t *testing.T) {
	lookup := &mockLookup{report: foundReport()}
	rec := get(newTestServer(t, lookup, nil), "/?q=%ED%95%A9%EC%A0%95")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"합정"}, lookup.queries)
	body := rec.Body.String()
	assert.Contains(t, body, "대상 역: 합정")
	assert.Contains(t, body, presenter.TextAllOperational)
}

func TestPage_NotFound(t *testing.T) {
	rec := get(newTestServer(t, &mockLookup{report: notFoundReport()}, nil), "/?q=xyz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), presenter.TextNotFound)
}

func TestPage_UpstreamFailure(t *testing.T) {
	rec := get(newTestServer(t, &mockLookup{err: errors.New("boom")}, nil), "/?q=xyz")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "데이터를 불러오지 못했습니다")
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestPage_UnknownPath(t *testing.T) {
	rec := get(newTestServer(t, &mockLookup{}, nil), "/nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStationsAPI_Found(t *testing.T) {
	rec := get(newTestServer(t, &mockLookup{report: foundReport()}, nil), "/api/stations?q=%ED%95%A9%EC%A0%95")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body presenter.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"합정"}, body.Resolution.Targets)
	assert.Equal(t, domain.MatchExact, body.Resolution.Match)
	require.Len(t, body.Sections, 4)
	assert.Equal(t, presenter.TitleStatus, body.Sections[1].Title)
	assert.True(t, body.Sections[0].Skipped)
}

func TestStationsAPI_MissingQuery(t *testing.T) {
	lookup := &mockLookup{}
	rec := get(newTestServer(t, lookup, nil), "/api/stations")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, lookup.queries)
}

func TestStationsAPI_EmptyQueryError(t *testing.T) {
	rec := get(newTestServer(t, &mockLookup{err: dashboard.ErrEmptyQuery}, nil), "/api/stations?q=%E3%80%80")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStationsAPI_NotFound(t *testing.T) {
	rec := get(newTestServer(t, &mockLookup{report: notFoundReport()}, nil), "/api/stations?q=xyz")

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body presenter.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, presenter.TextNotFound, body.Error.Text)
}

func TestStationsAPI_UpstreamFailure(t *testing.T) {
	rec := get(newTestServer(t, &mockLookup{err: errors.New("boom")}, nil), "/api/stations?q=xyz")

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "station data unavailable", body["error"])
}
