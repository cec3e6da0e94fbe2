// Command validate fetches all four facility datasets and checks that they
// still have the shape the dashboard relies on: station-name and section
// columns present, status and amenity flags in their known vocabularies,
// closure dates well formed, and every station name yielding a join key.
//
// Usage:
//
//	go run ./cmd/validate           # live API, key from .env / environment
//	go run ./cmd/validate -mock     # built-in sample datasets
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/couchcryptid/subway-facility-dashboard/internal/adapter/seoul"
	"github.com/couchcryptid/subway-facility-dashboard/internal/adapter/seoul/seoultest"
	"github.com/couchcryptid/subway-facility-dashboard/internal/config"
	"github.com/couchcryptid/subway-facility-dashboard/internal/dataset"
	"github.com/couchcryptid/subway-facility-dashboard/internal/domain"
	"github.com/couchcryptid/subway-facility-dashboard/internal/observability"
	"github.com/couchcryptid/subway-facility-dashboard/internal/presenter"
	"github.com/joho/godotenv"
)

const mockAPIKey = "sample"

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	mock := flag.Bool("mock", false, "validate the built-in sample datasets instead of the live API")
	verbose := flag.Bool("v", false, "log upstream requests")
	flag.Parse()

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, *mock, *verbose)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, mock, verbose bool) int {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	apiKey, baseURL, timeout := mockAPIKey, "", 30*time.Second
	pageSize, closurePageSize := 999, 99
	if mock {
		srv := seoultest.NewServer(mockAPIKey, seoultest.SampleTables())
		defer srv.Close()
		baseURL = srv.URL
	} else {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
			return 1
		}
		apiKey, baseURL, timeout = cfg.SeoulAPIKey, cfg.SeoulBaseURL, cfg.SeoulTimeout
		pageSize, closurePageSize = cfg.PageSize, cfg.ClosurePageSize
	}

	// ── Load all datasets ──
	fmt.Println("=== Subway Facility Dataset Validation ===")
	fmt.Println()

	metrics := observability.NewUnregisteredMetrics()
	client := seoul.NewClient(apiKey, baseURL, timeout, metrics, logger)
	loader := dataset.NewLoader(client, dataset.DefaultSources(pageSize, closurePageSize), nil, nil, metrics, logger)

	b, err := loader.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load datasets: %v\n", err)
		return 1
	}

	// ── Run validation phases ──
	phases := validate(b)

	// ── Report results ──
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d closures, %d status, %d length, %d amenities\n",
		len(b.Closures.Rows), len(b.Status.Rows), len(b.Length.Rows), len(b.Amenities.Rows))

	for _, p := range phases {
		for _, n := range p.notes {
			fmt.Printf("  Note: %s\n", n)
		}
	}

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validate(b domain.Bundle) []*phase {
	return []*phase{
		validateSchema(b),
		validateStatusValues(b.Status),
		validateLengthValues(b.Length),
		validateAmenityFlags(b.Amenities),
		validateClosureDates(b.Closures),
		validateNameKeys(b),
	}
}

// ── Schema ──

// sectionColumns lists the columns each report section reads.
func sectionColumns(d domain.Dataset) []string {
	switch d {
	case domain.DatasetClosures:
		return presenter.ClosureColumns
	case domain.DatasetStatus:
		return presenter.StatusColumns
	case domain.DatasetLength:
		return presenter.LengthColumns
	case domain.DatasetAmenities:
		codes := make([]string, 0, len(presenter.Amenities))
		for _, a := range presenter.Amenities {
			codes = append(codes, a.Code)
		}
		return codes
	}
	return nil
}

func validateSchema(b domain.Bundle) *phase {
	p := &phase{name: "Phase 1: Dataset schema"}
	for _, t := range b.Tables() {
		if len(t.Rows) == 0 {
			p.errorf("%s (%s): no rows", t.Dataset, t.Endpoint)
			continue
		}
		if !t.HasColumn(t.Dataset.NameColumn()) {
			p.errorf("%s (%s): station-name column %s missing; section would be skipped",
				t.Dataset, t.Endpoint, t.Dataset.NameColumn())
		}
		for _, c := range sectionColumns(t.Dataset) {
			if !t.HasColumn(c) {
				p.errorf("%s (%s): column %s missing", t.Dataset, t.Endpoint, c)
			}
		}
	}
	return p
}

// ── Values ──

func validateStatusValues(t domain.Table) *phase {
	p := &phase{name: "Phase 2: Operational status values"}
	counts := map[string]int{}
	for i, r := range t.Rows {
		v := r["USE_YN"]
		if v == "" {
			p.errorf("row %d (%s): empty USE_YN", i+1, r[domain.ColumnStationName])
			continue
		}
		counts[v]++
	}
	if counts[presenter.StatusUsable] == 0 && len(t.Rows) > 0 {
		p.errorf("no row has USE_YN=%q; every station would show out-of-service equipment", presenter.StatusUsable)
	}
	for v, n := range counts {
		if v != presenter.StatusUsable {
			p.notef("USE_YN=%q on %d row(s)", v, n)
		}
	}
	return p
}

func validateLengthValues(t domain.Table) *phase {
	p := &phase{name: "Phase 3: Equipment length values"}
	var placeholders int
	for _, r := range t.Rows {
		if presenter.FormatLength(r["PLF_PBADMS"]) == presenter.LengthPlaceholder {
			placeholders++
		}
	}
	switch {
	case len(t.Rows) > 0 && placeholders == len(t.Rows):
		p.errorf("all %d PLF_PBADMS values are non-numeric", placeholders)
	case placeholders > 0:
		p.notef("%d of %d length values render as %q", placeholders, len(t.Rows), presenter.LengthPlaceholder)
	}
	return p
}

func validateAmenityFlags(t domain.Table) *phase {
	p := &phase{name: "Phase 4: Amenity flags"}
	known := []string{presenter.FlagPresent, "N", ""}
	for i, r := range t.Rows {
		for _, a := range presenter.Amenities {
			if v := r[a.Code]; !slices.Contains(known, v) {
				p.errorf("row %d (%s): %s=%q, want Y or N", i+1, r[domain.ColumnStationNameEN], a.Code, v)
			}
		}
	}
	return p
}

func validateClosureDates(t domain.Table) *phase {
	p := &phase{name: "Phase 5: Closure periods"}
	const layout = "20060102"
	for i, r := range t.Rows {
		name := r[domain.ColumnSubwayStationName]
		begin, errBegin := time.Parse(layout, r["BGNG_YMD"])
		end, errEnd := time.Parse(layout, r["END_YMD"])
		if errBegin != nil {
			p.errorf("row %d (%s): BGNG_YMD %q is not YYYYMMDD", i+1, name, r["BGNG_YMD"])
		}
		if errEnd != nil {
			p.errorf("row %d (%s): END_YMD %q is not YYYYMMDD", i+1, name, r["END_YMD"])
		}
		if errBegin == nil && errEnd == nil && end.Before(begin) {
			p.errorf("row %d (%s): closure ends %s before it begins %s", i+1, name, r["END_YMD"], r["BGNG_YMD"])
		}
	}
	return p
}

// ── Station names ──

func validateNameKeys(b domain.Bundle) *phase {
	p := &phase{name: "Phase 6: Station name keys"}
	names := domain.BuildNameMap(b.Tables()...)
	if raws, ok := names[""]; ok {
		p.errorf("%d raw name(s) normalize to an empty key: %v", len(raws), raws)
	}

	// Keys whose station appears in every dataset.
	perDataset := make([]domain.NameMap, 0, len(domain.Datasets))
	for _, t := range b.Tables() {
		perDataset = append(perDataset, domain.BuildNameMap(t))
	}
	var everywhere int
	for key := range names {
		inAll := true
		for _, m := range perDataset {
			if _, ok := m[key]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			everywhere++
		}
	}
	p.notef("%d station keys, %d present in all four datasets", len(names), everywhere)
	return p
}
