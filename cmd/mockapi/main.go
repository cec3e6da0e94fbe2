// Command mockapi serves the sample facility datasets over the Seoul Open
// Data XML API layout, for running the dashboard without a real API key.
//
// Usage:
//
//	go run ./cmd/mockapi -addr :8088 -key sample
//	SEOUL_API_KEY=sample SEOUL_BASE_URL=http://localhost:8088 go run ./cmd/dashboard
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sort"
	"syscall"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/couchcryptid/subway-facility-dashboard/internal/adapter/seoul/seoultest"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	addr := flag.String("addr", ":8088", "listen address")
	key := flag.String("key", sharedcfg.EnvOrDefault("SEOUL_API_KEY", "sample"), "API key the mock accepts")
	flag.Parse()

	if *key == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -key")
	}

	tables := seoultest.SampleTables()
	endpoints := make([]string, 0, len(tables))
	for ep := range tables {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)
	for _, ep := range endpoints {
		log.Printf("%s: %d rows", ep, len(tables[ep]))
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           seoultest.NewHandler(*key, tables),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("mock Seoul API listening on %s", *addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
