package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/xolan/tally/internal/osutil"
)

const (
	// AppName is the application name used for config directory
	AppName = "tally"
	// ConfigFile is the name of the TOML configuration file
	ConfigFile = "config.toml"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid config")

// Config represents the application configuration
type Config struct {
	// Timezone used for day boundaries (IANA name, or "Local")
	Timezone  string          `toml:"timezone" yaml:"timezone"`
	Insights  InsightsConfig  `toml:"insights" yaml:"insights"`
	Generator GeneratorConfig `toml:"generator" yaml:"generator"`
	Store     StoreConfig     `toml:"store" yaml:"store"`
	Server    ServerConfig    `toml:"server" yaml:"server"`
	Log       LogConfig       `toml:"log" yaml:"log"`
}

// InsightsConfig tunes the insights pipeline
type InsightsConfig struct {
	// WindowDays is how far back entries are fetched. At least 14 so week-over-week works.
	WindowDays       int           `toml:"window_days" yaml:"window_days" validate:"min=14,max=730"`
	TargetDailyHours float64       `toml:"target_daily_hours" yaml:"target_daily_hours" validate:"gt=0,lte=24"`
	MaxInsights      int           `toml:"max_insights" yaml:"max_insights" validate:"min=1,max=100"`
	Dedupe           bool          `toml:"dedupe" yaml:"dedupe"`
	TaskTimeout      time.Duration `toml:"task_timeout" yaml:"task_timeout" validate:"gte=1s"`
}

// GeneratorConfig selects and tunes the generative analysis service
type GeneratorConfig struct {
	Provider    string  `toml:"provider" yaml:"provider" validate:"oneof=openai disabled"`
	BaseURL     string  `toml:"base_url" yaml:"base_url" validate:"omitempty,url"`
	Model       string  `toml:"model" yaml:"model"`
	Temperature float64 `toml:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `toml:"max_tokens" yaml:"max_tokens" validate:"gte=0"`
	// APIKeyEnv names the environment variable holding the API key
	APIKeyEnv  string `toml:"api_key_env" yaml:"api_key_env" validate:"required_if=Provider openai"`
	MaxRetries int    `toml:"max_retries" yaml:"max_retries" validate:"gte=0,lte=10"`
}

// StoreConfig selects where entries, clients and projects are read from
type StoreConfig struct {
	Driver string `toml:"driver" yaml:"driver" validate:"oneof=jsonl sqlite3 postgres"`
	DSN    string `toml:"dsn" yaml:"dsn" validate:"required_unless=Driver jsonl"`
	// DataDir holds the JSONL files; empty means the user config directory
	DataDir string `toml:"data_dir" yaml:"data_dir"`
}

// ServerConfig configures `tally serve`
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr" validate:"required"`
	// RedisAddr enables the response cache when set
	RedisAddr string        `toml:"redis_addr" yaml:"redis_addr"`
	CacheTTL  time.Duration `toml:"cache_ttl" yaml:"cache_ttl" validate:"gte=0"`
}

// LogConfig configures the slog handler
type LogConfig struct {
	Level  string `toml:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" yaml:"format" validate:"oneof=text json"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Timezone: "Local",
		Insights: InsightsConfig{
			WindowDays:       90,
			TargetDailyHours: 6,
			MaxInsights:      20,
			Dedupe:           true,
			TaskTimeout:      45 * time.Second,
		},
		Generator: GeneratorConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.3,
			MaxTokens:   2000,
			APIKeyEnv:   "OPENAI_API_KEY",
			MaxRetries:  2,
		},
		Store: StoreConfig{
			Driver: "jsonl",
		},
		Server: ServerConfig{
			Addr:     ":8080",
			CacheTTL: 10 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// GetConfigPath returns the path to the config file.
// Uses the user config directory for cross-platform XDG-compliant config directory.
// Creates the config directory if it doesn't exist.
func GetConfigPath() (string, error) {
	configDir, err := osutil.Provider.UserConfigDir()
	if err != nil {
		return "", err
	}

	appDir := filepath.Join(configDir, AppName)

	// Create config directory if it doesn't exist
	if err := osutil.Provider.MkdirAll(appDir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(appDir, ConfigFile), nil
}

// Load reads the config file at path on top of DefaultConfig.
// Files ending in .yaml or .yml are parsed as YAML, everything else as TOML.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("%w: unknown key %q in %s", ErrInvalid, undecoded[0].String(), path)
		}
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault loads the config file, returning DefaultConfig when it does not exist
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// Normalize lowercases enumerated fields and trims whitespace
func (c *Config) Normalize() {
	c.Timezone = strings.TrimSpace(c.Timezone)
	c.Generator.Provider = strings.ToLower(strings.TrimSpace(c.Generator.Provider))
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field, returning an error wrapping ErrInvalid
func (c Config) Validate() error {
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("%w: timezone %q: %v", ErrInvalid, c.Timezone, err)
		}
	}

	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", fe.Namespace(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// Location returns the configured time zone, falling back to time.Local
func (c Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// LoadEnv loads .env files into the process environment without overriding
// variables that are already set. Missing files are ignored.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// APIKey returns the generator API key from the configured environment variable
func (c Config) APIKey() string {
	if c.Generator.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(c.Generator.APIKeyEnv))
}
