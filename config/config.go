package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the trf tool.
type Config struct {
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Scorer     ScorerConfig     `yaml:"scorer"`
	Text       TextConfig       `yaml:"text"`
	Cache      CacheConfig      `yaml:"cache"`
	Store      StoreConfig      `yaml:"store"`
	Batch      BatchConfig      `yaml:"batch"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// VocabularyConfig points at the "<word> <count>" resource for the unigram baseline.
// It is independent of the scorer model file.
type VocabularyConfig struct {
	Path      string `yaml:"path" env:"TRF_VOCABULARY"`
	Threshold int    `yaml:"threshold" env:"TRF_VOCABULARY_THRESHOLD"`
}

// ScorerConfig holds external language model configuration.
type ScorerConfig struct {
	Provider   string        `yaml:"provider" env:"TRF_SCORER_PROVIDER"` // "rnnlm", "remote", "static"
	Binary     string        `yaml:"binary" env:"TRF_SCORER_BINARY"`
	Model      string        `yaml:"model" env:"TRF_SCORER_MODEL"`
	Args       []string      `yaml:"args"` // {model} and {input} are substituted
	OOVToken   string        `yaml:"oov_token" env:"TRF_SCORER_OOV_TOKEN"`
	Timeout    time.Duration `yaml:"timeout" env:"TRF_SCORER_TIMEOUT"`
	BaseURL    string        `yaml:"base_url" env:"TRF_SCORER_BASE_URL"`
	APIKeyEnv  string        `yaml:"api_key_env"`
	ScoresPath string        `yaml:"scores_path" env:"TRF_SCORER_SCORES"`
}

// TextConfig controls sentence splitting.
type TextConfig struct {
	Delimiter string `yaml:"delimiter" env:"TRF_DELIMITER"`
}

// CacheConfig holds the in-memory scorer result cache configuration.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled" env:"TRF_CACHE_ENABLED"`
	MaxEntries int           `yaml:"max_entries"`
	TTL        time.Duration `yaml:"ttl"`
}

// StoreConfig selects where finished reports are persisted.
type StoreConfig struct {
	Backend string `yaml:"backend" env:"TRF_STORE_BACKEND"` // "bolt", "sqlite", "memory", "none"
	Path    string `yaml:"path" env:"TRF_STORE_PATH"`       // empty means .trf/<backend file> under the root dir
}

// BatchConfig holds directory scoring configuration.
type BatchConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
	Workers  int      `yaml:"workers" env:"TRF_BATCH_WORKERS"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"TRF_LOG_LEVEL"`
	Format string `yaml:"format" env:"TRF_LOG_FORMAT"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Vocabulary: VocabularyConfig{
			Threshold: 1,
		},
		Scorer: ScorerConfig{
			Provider:  "rnnlm",
			Binary:    "rnnlm",
			Args:      []string{"-rnnlm", "{model}", "-test", "{input}"},
			OOVToken:  "OOV",
			Timeout:   5 * time.Minute,
			APIKeyEnv: "TRF_SCORER_API_KEY",
		},
		Text: TextConfig{
			Delimiter: "\n",
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 100,
			TTL:        10 * time.Minute,
		},
		Store: StoreConfig{
			Backend: "none",
		},
		Batch: BatchConfig{
			Includes: []string{"**/*.txt", "**/*.pdf"},
			Excludes: []string{"**/.git/**", "**/.trf/**", "**/node_modules/**"},
			Workers:  2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file, then applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for trf.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "trf.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".trf", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	cfg := DefaultConfig()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv loads an optional .env file and overlays TRF_* variables.
func applyEnv(cfg *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("read env: %w", err)
	}
	return nil
}

// Validate checks the configuration for values no component can work with.
func (c *Config) Validate() error {
	var errs []error

	if c.Vocabulary.Threshold < 0 {
		errs = append(errs, fmt.Errorf("vocabulary.threshold must be >= 0, got %d", c.Vocabulary.Threshold))
	}
	switch c.Scorer.Provider {
	case "rnnlm":
		if c.Scorer.Binary == "" {
			errs = append(errs, errors.New("scorer.binary is required for the rnnlm provider"))
		}
	case "remote":
		if c.Scorer.BaseURL == "" {
			errs = append(errs, errors.New("scorer.base_url is required for the remote provider"))
		}
	case "static":
		if c.Scorer.ScoresPath == "" {
			errs = append(errs, errors.New("scorer.scores_path is required for the static provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported scorer provider: %q", c.Scorer.Provider))
	}
	if c.Scorer.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("scorer.timeout must be positive, got %s", c.Scorer.Timeout))
	}
	if c.Scorer.OOVToken == "" {
		errs = append(errs, errors.New("scorer.oov_token must not be empty"))
	}
	switch c.Store.Backend {
	case "bolt", "sqlite", "memory", "none":
	default:
		errs = append(errs, fmt.Errorf("unsupported store backend: %q", c.Store.Backend))
	}
	if c.Batch.Workers < 1 {
		errs = append(errs, fmt.Errorf("batch.workers must be >= 1, got %d", c.Batch.Workers))
	}

	return errors.Join(errs...)
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StoreDBPath returns the report store path for the configured backend.
func (c *Config) StoreDBPath(dir string) string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	name := "reports.db"
	if c.Store.Backend == "sqlite" {
		name = "reports.sqlite"
	}
	return filepath.Join(dir, ".trf", name)
}
