// Command crawl runs one ingestion cycle and prints the summary as
// JSON. It is the operational entry point for cron-style scheduling
// and local debugging; the long-running API server lives at the
// repository root.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"noticewala/config"
	"noticewala/dedup"
	"noticewala/extraction"
	"noticewala/fetch"
	"noticewala/ingest"
	"noticewala/sources"
	"noticewala/store"
)

func main() {
	settings := config.Load()

	var st store.Store
	if settings.PostgresDSN != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		pg, err := store.NewPostgres(ctx, settings.PostgresDSN)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to postgres: %v", err)
		}
		st = pg
	} else {
		log.Println("DATABASE_DSN not set; using in-memory store")
		st = store.NewMemory()
	}
	defer st.Close()

	fetcher := fetch.New(fetch.Config{
		Timeout:      settings.FetchTimeout,
		MaxRetries:   settings.MaxRetries,
		BackoffBase:  settings.BackoffBase,
		PerHostDelay: settings.PerHostDelay,
	}, nil)

	extractors := []sources.Extractor{
		sources.NewUPSC(),
		sources.NewSSC(),
		sources.NewIBPS(),
		sources.NewNTA(),
	}
	for _, cfg := range settings.RSSSources {
		extractors = append(extractors, sources.NewRSS(cfg))
	}
	registry := sources.NewRegistry(extractors...)

	extractor := extraction.NewService(settings)
	detector := dedup.NewDetector(settings, dedup.NewEmbeddingsProvider(settings))

	coordinator := ingest.NewCoordinator(settings, fetcher, registry, extractor, detector, st, ingest.Options{})

	summary := coordinator.RunCycle(context.Background())

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Fatalf("marshal summary: %v", err)
	}
	os.Stdout.Write(append(out, '\n'))

	if !summary.Success {
		os.Exit(1)
	}
}
