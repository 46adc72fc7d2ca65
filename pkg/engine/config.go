package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/raold/second-brain-sub005/pkg/algorithm"
)

// Supported storage providers.
const (
	ProviderMemory   = "memory"
	ProviderSQLite   = "sqlite"
	ProviderPostgres = "postgres"
	ProviderMySQL    = "mysql"
)

// Config contains the complete configuration for a Scheduler.
//
// Example:
//
//	cfg := &engine.Config{
//	    Storage: engine.StorageConfig{
//	        Provider: engine.ProviderSQLite,
//	        DSN:      "./reviews.db",
//	    },
//	    DefaultAlgorithm: algorithm.AlgorithmSM2,
//	}
//	sched, _ := engine.New(cfg)
type Config struct {
	// Storage selects and configures the schedule/history store backend.
	Storage StorageConfig `json:"storage"`

	// DefaultAlgorithm is used when a caller passes an empty algorithm.
	// Defaults to SM-2.
	DefaultAlgorithm algorithm.Algorithm `json:"default_algorithm"`

	// Anki contains the tunables of the Anki-style strategy.
	Anki algorithm.AnkiConfig `json:"anki"`

	// Leitner contains the box intervals of the Leitner strategy.
	Leitner algorithm.LeitnerConfig `json:"leitner"`

	// Retry controls the bounded backoff around store operations.
	Retry RetryConfig `json:"retry"`
}

// StorageConfig selects a store backend.
type StorageConfig struct {
	// Provider is one of "memory", "sqlite", "postgres", "mysql".
	Provider string `json:"provider"`

	// DSN is the backend connection string: a file path for sqlite, a
	// lib/pq DSN for postgres, a go-sql-driver DSN for mysql. Unused by
	// the memory provider.
	DSN string `json:"dsn,omitempty"`
}

// RetryConfig controls retries of transient store failures.
type RetryConfig struct {
	// MaxAttempts is the total number of tries per store call (default 3).
	MaxAttempts int `json:"max_attempts"`

	// BaseDelay is the first backoff delay; it doubles per attempt
	// (default 50ms).
	BaseDelay time.Duration `json:"base_delay"`
}

// DefaultConfig returns a configuration backed by the in-memory store
// with stock algorithm tunables.
func DefaultConfig() *Config {
	return &Config{
		Storage:          StorageConfig{Provider: ProviderMemory},
		DefaultAlgorithm: algorithm.AlgorithmSM2,
		Anki:             algorithm.DefaultAnkiConfig(),
		Leitner:          algorithm.DefaultLeitnerConfig(),
		Retry:            RetryConfig{MaxAttempts: 3, BaseDelay: 50 * time.Millisecond},
	}
}

// Validate checks the configuration, returning an error wrapping
// ErrInvalidConfig on the first problem. Zero-valued tunables are filled
// with defaults rather than rejected.
func (c *Config) Validate() error {
	switch c.Storage.Provider {
	case ProviderMemory:
	case ProviderSQLite, ProviderPostgres, ProviderMySQL:
		if c.Storage.DSN == "" {
			return fmt.Errorf("%w: %s provider requires a DSN", ErrInvalidConfig, c.Storage.Provider)
		}
	case "":
		c.Storage.Provider = ProviderMemory
	default:
		return fmt.Errorf("%w: unknown storage provider %q", ErrInvalidConfig, c.Storage.Provider)
	}

	if c.DefaultAlgorithm == "" {
		c.DefaultAlgorithm = algorithm.AlgorithmSM2
	}
	if !c.DefaultAlgorithm.IsValid() {
		return fmt.Errorf("%w: unknown default algorithm %q", ErrInvalidConfig, c.DefaultAlgorithm)
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BaseDelay <= 0 {
		c.Retry.BaseDelay = 50 * time.Millisecond
	}
	return nil
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function:
//  1. Searches for a .env or .env.example file, up to 5 directory levels up
//  2. Loads environment variables from the found file
//  3. Parses SRS_* variables into a Config
//
// Supported environment variables:
//   - SRS_STORAGE_PROVIDER (memory, sqlite, postgres, mysql)
//   - SRS_STORAGE_DSN
//   - SRS_DEFAULT_ALGORITHM (sm2, anki, leitner)
//   - SRS_ANKI_EASY_BONUS, SRS_ANKI_LAPSE_PENALTY, SRS_ANKI_LEECH_THRESHOLD,
//     SRS_ANKI_GRADUATING_DAYS
//   - SRS_LEITNER_BOXES (comma-separated day intervals, e.g. "1,2,4,8,16")
//   - SRS_RETRY_MAX_ATTEMPTS
//
// Unset variables keep their defaults.
func LoadConfigFromEnv() (*Config, error) {
	loadDotEnv()

	cfg := DefaultConfig()
	if v := os.Getenv("SRS_STORAGE_PROVIDER"); v != "" {
		cfg.Storage.Provider = v
	}
	if v := os.Getenv("SRS_STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("SRS_DEFAULT_ALGORITHM"); v != "" {
		alg, err := algorithm.ParseAlgorithm(v)
		if err != nil {
			return nil, fmt.Errorf("%w: SRS_DEFAULT_ALGORITHM: %v", ErrInvalidConfig, err)
		}
		cfg.DefaultAlgorithm = alg
	}
	if v := os.Getenv("SRS_ANKI_EASY_BONUS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: SRS_ANKI_EASY_BONUS: %v", ErrInvalidConfig, err)
		}
		cfg.Anki.EasyBonus = f
	}
	if v := os.Getenv("SRS_ANKI_LAPSE_PENALTY"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: SRS_ANKI_LAPSE_PENALTY: %v", ErrInvalidConfig, err)
		}
		cfg.Anki.LapsePenalty = f
	}
	if v := os.Getenv("SRS_ANKI_LEECH_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: SRS_ANKI_LEECH_THRESHOLD: %v", ErrInvalidConfig, err)
		}
		cfg.Anki.LeechThreshold = n
	}
	if v := os.Getenv("SRS_ANKI_GRADUATING_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: SRS_ANKI_GRADUATING_DAYS: %v", ErrInvalidConfig, err)
		}
		cfg.Anki.GraduatingIntervalDays = n
	}
	if v := os.Getenv("SRS_LEITNER_BOXES"); v != "" {
		boxes, err := parseIntList(v)
		if err != nil {
			return nil, fmt.Errorf("%w: SRS_LEITNER_BOXES: %v", ErrInvalidConfig, err)
		}
		cfg.Leitner.BoxIntervalDays = boxes
	}
	if v := os.Getenv("SRS_RETRY_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: SRS_RETRY_MAX_ATTEMPTS: %v", ErrInvalidConfig, err)
		}
		cfg.Retry.MaxAttempts = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv searches for .env (or .env.example) in the current directory
// and up to five parents, loading the first one found. Missing files are
// not an error; the process environment simply wins.
func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for i := 0; i < 5; i++ {
		for _, name := range []string{".env", ".env.example"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				_ = godotenv.Load(path)
				return
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// parseIntList parses a comma-separated list of positive integers.
func parseIntList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		if n < 1 {
			return nil, fmt.Errorf("interval %d below 1", n)
		}
		out = append(out, n)
	}
	return out, nil
}
