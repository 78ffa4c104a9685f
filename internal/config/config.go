package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Classifier profile: "legal", "contract", "regulation" or "general".
	DocumentType string

	// Remote heading classifier (optional; rule-based when unset)
	ClassifierEndpoint string
	ClassifierAPIKey   string
	ClassifierModel    string
	ClassifierTimeout  time.Duration
	ClassifierCache    bool

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Chunking defaults
	DefaultMaxSize   int
	DefaultOverlap   int
	DefaultStrategy  string
	DedupThreshold   float64
	DefaultTokenizer string // "char" or "token"

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("CONTRACTSPLIT_API_KEY"),

		DocumentType: envOr("DOCUMENT_TYPE", "legal"),

		ClassifierEndpoint: os.Getenv("CLASSIFIER_ENDPOINT"),
		ClassifierAPIKey:   os.Getenv("CLASSIFIER_API_KEY"),
		ClassifierModel:    envOr("CLASSIFIER_MODEL", "qwen-plus"),
		ClassifierTimeout:  envDuration("CLASSIFIER_TIMEOUT", 30*time.Second),
		ClassifierCache:    envBool("CLASSIFIER_CACHE", true),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		DefaultMaxSize:   envInt("DEFAULT_MAX_SIZE", 2000),
		DefaultOverlap:   envInt("DEFAULT_OVERLAP", 200),
		DefaultStrategy:  envOr("DEFAULT_STRATEGY", "finest_granularity"),
		DedupThreshold:   envFloat("DEDUP_THRESHOLD", 0.7),
		DefaultTokenizer: envOr("DEFAULT_TOKENIZER", "char"),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.DefaultMaxSize <= 0 {
		cfg.DefaultMaxSize = 2000
	}
	if cfg.DefaultOverlap < 0 {
		cfg.DefaultOverlap = 200
	}
	if cfg.DedupThreshold <= 0 || cfg.DedupThreshold > 1 {
		cfg.DedupThreshold = 0.7
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("CONTRACTSPLIT_API_KEY is required")
	}
	if c.ClassifierEndpoint != "" && c.ClassifierAPIKey == "" {
		return fmt.Errorf("CLASSIFIER_API_KEY is required when CLASSIFIER_ENDPOINT is set")
	}
	if c.DefaultOverlap >= c.DefaultMaxSize {
		return fmt.Errorf("DEFAULT_OVERLAP (%d) must be smaller than DEFAULT_MAX_SIZE (%d)", c.DefaultOverlap, c.DefaultMaxSize)
	}
	switch c.DefaultTokenizer {
	case "char", "token":
	default:
		return fmt.Errorf("DEFAULT_TOKENIZER must be \"char\" or \"token\", got %q", c.DefaultTokenizer)
	}
	switch c.DocumentType {
	case "legal", "contract", "regulation", "general":
	default:
		return fmt.Errorf("DOCUMENT_TYPE must be one of legal, contract, regulation, general, got %q", c.DocumentType)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
