package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Settings holds everything the pipeline needs at startup. Values come
// from the environment (optionally a .env file); the RSS source list
// may additionally be loaded from a YAML file.
type Settings struct {
	// Fetcher
	FetchTimeout time.Duration
	MaxRetries   int
	BackoffBase  time.Duration
	PerHostDelay time.Duration

	// Structured extraction (OpenAI-compatible chat endpoint)
	AIAPIKey   string
	AIModel    string
	AIEndpoint string
	AITimeout  time.Duration

	// Embeddings for duplicate detection
	CohereAPIKey   string
	OpenAIAPIKey   string
	EmbeddingModel string

	// Duplicate detection
	SimilarityThreshold float64
	DedupWindow         time.Duration
	DedupWindowLimit    int

	// Coordinator
	SourceWorkers int
	LinkWorkers   int
	SourceBudget  time.Duration

	// Persistence
	PostgresDSN string
	RedisAddr   string
	RedisPass   string

	// Optional integrations
	KafkaBrokers []string
	KafkaTopic   string
	S3Bucket     string
	S3Region     string
	S3Prefix     string

	// Extra RSS sources loaded from SOURCES_FILE
	RSSSources []RSSSourceConfig

	// API server
	Port string
}

// RSSSourceConfig describes one RSS-backed source from the YAML registry file.
type RSSSourceConfig struct {
	Name       string   `yaml:"name"`
	FeedURL    string   `yaml:"feed_url"`
	Region     string   `yaml:"region"`
	Categories []string `yaml:"categories"`
}

type sourcesFile struct {
	Sources []RSSSourceConfig `yaml:"sources"`
}

// Load reads settings from the environment. A .env file is honored if
// present (non-fatal if missing), matching how the rest of the system
// is configured in development.
func Load() Settings {
	_ = godotenv.Load()

	s := Settings{
		FetchTimeout: envDuration("FETCH_TIMEOUT_SECONDS", DefaultFetchTimeout),
		MaxRetries:   envInt("FETCH_MAX_RETRIES", DefaultMaxRetries),
		BackoffBase:  envDuration("FETCH_BACKOFF_SECONDS", DefaultBackoffBase),
		PerHostDelay: envDuration("FETCH_PER_HOST_DELAY_SECONDS", DefaultPerHostDelay),

		AIAPIKey:   os.Getenv("AI_API_KEY"),
		AIModel:    GetEnvOrDefault("AI_MODEL", "gpt-4o-mini"),
		AIEndpoint: GetEnvOrDefault("AI_ENDPOINT", "https://api.openai.com/v1/chat/completions"),
		AITimeout:  envDuration("AI_TIMEOUT_SECONDS", DefaultAITimeout),

		CohereAPIKey:   os.Getenv("COHERE_API_KEY"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel: os.Getenv("EMBEDDING_MODEL"),

		SimilarityThreshold: envFloat("SIMILARITY_THRESHOLD", DefaultSimilarityThreshold),
		DedupWindow:         envDuration("DEDUP_WINDOW_SECONDS", DefaultDedupWindow),
		DedupWindowLimit:    envInt("DEDUP_WINDOW_LIMIT", DefaultDedupWindowLimit),

		SourceWorkers: envInt("SOURCE_WORKERS", DefaultSourceWorkers),
		LinkWorkers:   envInt("LINK_WORKERS", DefaultLinkWorkers),
		SourceBudget:  envDuration("SOURCE_BUDGET_SECONDS", DefaultSourceBudget),

		PostgresDSN: os.Getenv("DATABASE_DSN"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisPass:   os.Getenv("REDIS_PASS"),

		KafkaTopic: GetEnvOrDefault("KAFKA_TOPIC", "announcements.saved"),
		S3Bucket:   os.Getenv("S3_BUCKET"),
		S3Region:   os.Getenv("S3_REGION"),
		S3Prefix:   os.Getenv("S3_PREFIX"),

		Port: GetEnvOrDefault("PORT", "8080"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		s.KafkaBrokers = splitAndTrim(brokers)
	}

	if path := os.Getenv("SOURCES_FILE"); path != "" {
		extra, err := loadSourcesFile(path)
		if err != nil {
			log.Printf("config: cannot load sources file %s: %v (continuing without it)", path, err)
		} else {
			s.RSSSources = extra
		}
	}

	return s
}

func loadSourcesFile(path string) ([]RSSSourceConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var parsed sourcesFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}
	return parsed.Sources, nil
}

// GetEnvOrDefault returns the environment value or a fallback.
func GetEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

func splitAndTrim(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
