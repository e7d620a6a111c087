// Package config handles reading and writing .letterloop/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for .letterloop/config.yaml.
// Secrets are never written to the file; ApplyEnv fills them in.
type Config struct {
	Version    int              `yaml:"version"`
	Interview  InterviewConfig  `yaml:"interview"`
	Generation GenerationConfig `yaml:"generation"`
	Email      EmailConfig      `yaml:"email"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	LogDir     string           `yaml:"log_dir"`
}

// InterviewConfig controls question progression.
type InterviewConfig struct {
	DebounceMs    int    `yaml:"debounce_ms"`
	MaxFollowUps  int    `yaml:"max_follow_ups"`
	MinCharacters int    `yaml:"min_characters"`
	QuestionsFile string `yaml:"questions_file,omitempty"`
}

// Debounce returns the idle window as a duration.
func (c InterviewConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// GenerationConfig selects the text-generation backend.
type GenerationConfig struct {
	Provider   string `yaml:"provider"` // "anthropic" | "gemini" | "openai" | "mock"
	Model      string `yaml:"model,omitempty"`
	MaxTokens  int    `yaml:"max_tokens"`
	MaxRetries int    `yaml:"max_retries"`

	APIKey string `yaml:"-"`
}

// EmailConfig selects the summary delivery backend.
type EmailConfig struct {
	Provider   string `yaml:"provider"` // "sendgrid" | "console"
	From       string `yaml:"from,omitempty"`
	FromName   string `yaml:"from_name,omitempty"`
	Developer  string `yaml:"developer"`
	SendToUser bool   `yaml:"send_to_user"`

	APIKey string `yaml:"-"`
}

// ArchiveConfig points at the SQLite archive. An empty path disables it.
// MaxAgeDays is the retention used by "letterloop clean".
type ArchiveConfig struct {
	Path       string `yaml:"path"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// MetricsConfig controls the Prometheus endpoint. An empty listen address disables it.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

const configDir = ".letterloop"
const configFile = "config.yaml"

// ErrNotFound is returned by ReadConfig when no config file exists.
var ErrNotFound = errors.New("config file not found")

// Path returns the config file location for the project directory dir.
func Path(dir string) string {
	return filepath.Join(dir, configDir, configFile)
}

// ReadConfig reads .letterloop/config.yaml from the given directory.
// dir is the project root (not .letterloop/ itself). Fields absent from the
// file keep their defaults.
func ReadConfig(dir string) (*Config, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Load reads the config in dir, falling back to defaults when the file is
// missing, then applies environment overrides and validates the result.
func Load(dir string) (*Config, error) {
	cfg, err := ReadConfig(dir)
	if errors.Is(err, ErrNotFound) {
		cfg = DefaultConfig()
	} else if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteConfig writes cfg to .letterloop/config.yaml in the given directory.
// Creates the .letterloop/ directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, configDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(Path(dir), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Interview: InterviewConfig{
			DebounceMs:    5000,
			MaxFollowUps:  2,
			MinCharacters: 400,
		},
		Generation: GenerationConfig{
			Provider:   "anthropic",
			MaxTokens:  1000,
			MaxRetries: 0,
		},
		Email: EmailConfig{
			Provider:   "console",
			SendToUser: true,
		},
		Archive: ArchiveConfig{
			Path:       filepath.Join(configDir, "interviews.db"),
			MaxAgeDays: 30,
		},
		LogDir: configDir,
	}
}

// ApplyEnv overlays secrets and overrides from the environment.
func (c *Config) ApplyEnv() {
	overrideString(&c.Generation.Provider, "LETTERLOOP_PROVIDER")
	overrideString(&c.Generation.Model, "LETTERLOOP_MODEL")
	overrideInt(&c.Interview.DebounceMs, "LETTERLOOP_DEBOUNCE_MS")
	overrideString(&c.Metrics.Listen, "LETTERLOOP_METRICS_LISTEN")
	overrideString(&c.Email.Developer, "LETTERLOOP_DEVELOPER_EMAIL")
	overrideBool(&c.Email.SendToUser, "LETTERLOOP_SEND_TO_USER")

	switch c.Generation.Provider {
	case "anthropic":
		c.Generation.APIKey = envOr(c.Generation.APIKey, "ANTHROPIC_API_KEY")
	case "gemini":
		c.Generation.APIKey = envOr(c.Generation.APIKey, "GEMINI_API_KEY")
	case "openai":
		c.Generation.APIKey = envOr(c.Generation.APIKey, "OPENAI_API_KEY")
	}

	c.Email.APIKey = envOr(c.Email.APIKey, "SENDGRID_API_KEY")
	overrideString(&c.Email.From, "SENDGRID_FROM_EMAIL")
	overrideString(&c.Email.Provider, "LETTERLOOP_EMAIL_PROVIDER")
}

// Validate rejects settings the interview cannot run with.
func (c *Config) Validate() error {
	if c.Interview.MaxFollowUps <= 0 {
		return fmt.Errorf("interview.max_follow_ups must be positive, got %d", c.Interview.MaxFollowUps)
	}
	if c.Interview.MinCharacters <= 0 {
		return fmt.Errorf("interview.min_characters must be positive, got %d", c.Interview.MinCharacters)
	}
	if c.Interview.DebounceMs < 0 {
		return fmt.Errorf("interview.debounce_ms must not be negative, got %d", c.Interview.DebounceMs)
	}
	switch c.Generation.Provider {
	case "anthropic", "gemini", "openai", "mock":
	default:
		return fmt.Errorf("unknown generation provider %q", c.Generation.Provider)
	}
	if c.Generation.MaxRetries < 0 {
		return fmt.Errorf("generation.max_retries must not be negative, got %d", c.Generation.MaxRetries)
	}
	switch c.Email.Provider {
	case "sendgrid", "console", "":
	default:
		return fmt.Errorf("unknown email provider %q", c.Email.Provider)
	}
	return nil
}

// Resolve returns p relative to dir unless it is already absolute or empty.
func Resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func envOr(current, key string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return current
}

func overrideString(dest *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dest = val
	}
}

func overrideBool(dest *bool, key string) {
	if val := os.Getenv(key); val != "" {
		switch strings.ToLower(val) {
		case "1", "true", "yes", "y", "on":
			*dest = true
		case "0", "false", "no", "n", "off":
			*dest = false
		}
	}
}

func overrideInt(dest *int, key string) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			*dest = parsed
		}
	}
}
