package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"noticewala/api"
	"noticewala/common"
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

	st := buildStore(settings)
	defer st.Close()

	coordinator := buildCoordinator(settings, st)

	r := api.NewRouter(coordinator, st)
	addr := ":" + settings.Port

	log.Printf("Starting API server on %s", addr)
	log.Println("API endpoints available:")
	log.Println("  GET  /api/health")
	log.Println("  POST /api/crawl/run")
	log.Println("  POST /api/crawl/run/:source")
	log.Println("  GET  /api/crawl/sources")
	log.Println("  GET  /api/crawl/stats")

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func buildStore(settings config.Settings) store.Store {
	if settings.PostgresDSN == "" {
		log.Println("DATABASE_DSN not set; using in-memory store")
		return store.NewMemory()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pg, err := store.NewPostgres(ctx, settings.PostgresDSN)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	log.Println("Connected to postgres")
	return pg
}

func buildCoordinator(settings config.Settings, st store.Store) *ingest.Coordinator {
	fetcher := fetch.New(fetch.Config{
		Timeout:      settings.FetchTimeout,
		MaxRetries:   settings.MaxRetries,
		BackoffBase:  settings.BackoffBase,
		PerHostDelay: settings.PerHostDelay,
	}, nil)

	registry := buildRegistry(settings)
	log.Printf("Registered %d sources", registry.Len())

	extractor := extraction.NewService(settings)
	if extractor.Enabled() {
		log.Println("AI extraction enabled")
	} else {
		log.Println("AI extraction not configured; rule-based tier only")
	}

	provider := dedup.NewEmbeddingsProvider(settings)
	detector := dedup.NewDetector(settings, provider)
	if provider != nil {
		log.Printf("Duplicate detection: model=%s threshold=%.2f", provider.ModelName(), detector.Threshold())
	} else {
		log.Printf("Duplicate detection: local tf-idf vectorizer, threshold=%.2f", detector.Threshold())
	}

	opts := ingest.Options{}
	if len(settings.KafkaBrokers) > 0 {
		publisher, err := ingest.NewKafkaPublisher(settings.KafkaBrokers, settings.KafkaTopic)
		if err != nil {
			log.Printf("Warning: kafka disabled: %v", err)
		} else {
			opts.Publisher = publisher
		}
	}
	if settings.S3Bucket != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		s3Client, err := common.NewS3(ctx, common.S3Config{Region: settings.S3Region})
		cancel()
		if err != nil {
			log.Printf("Warning: s3 archival disabled: %v", err)
		} else {
			opts.Archiver = ingest.NewArchiver(s3Client, settings.S3Bucket, settings.S3Prefix)
		}
	}
	if settings.RedisAddr != "" {
		filter, err := store.NewURLFilter(store.URLFilterConfig{
			Addr:     settings.RedisAddr,
			Password: settings.RedisPass,
		})
		if err != nil {
			log.Printf("Warning: seen-URL filter disabled: %v", err)
		} else {
			opts.Seen = filter
		}
	}

	return ingest.NewCoordinator(settings, fetcher, registry, extractor, detector, st, opts)
}

func buildRegistry(settings config.Settings) *sources.Registry {
	extractors := []sources.Extractor{
		sources.NewUPSC(),
		sources.NewSSC(),
		sources.NewIBPS(),
		sources.NewNTA(),
	}
	for _, cfg := range settings.RSSSources {
		extractors = append(extractors, sources.NewRSS(cfg))
	}
	return sources.NewRegistry(extractors...)
}
