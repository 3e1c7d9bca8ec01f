// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.promptboard/config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Main configuration categories:
//   - Generation: model identifiers and retry tuning
//   - Server: HTTP listen address and session pruning
//   - Observability: OTLP trace export (see observability.go)
//
// Security: the API key is never logged; it is masked in MarshalJSON and
// persisted separately under a locked credential file (see credentials.go).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates no Gemini API key is configured.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates an empty or malformed model identifier.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidMaxAttempts indicates the retry budget is out of range.
	ErrInvalidMaxAttempts = errors.New("invalid max attempts")

	// ErrInvalidAddr indicates an unusable listen address.
	ErrInvalidAddr = errors.New("invalid listen address")

	// ErrInvalidIdleTimeout indicates a nonpositive session idle timeout.
	ErrInvalidIdleTimeout = errors.New("invalid session idle timeout")
)

// Retry bounds; see Validate.
const (
	MinAttempts = 1
	MaxAttempts = 10
)

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
type Config struct {
	// Gemini API key. Read from GEMINI_API_KEY or the credential file;
	// never from config.yaml.
	APIKey string `mapstructure:"api_key" json:"api_key"` // SENSITIVE: masked in MarshalJSON

	// Generation model identifiers.
	FlashModel       string `mapstructure:"flash_model" json:"flash_model"`
	ProModel         string `mapstructure:"pro_model" json:"pro_model"`
	TextToImageModel string `mapstructure:"text_to_image_model" json:"text_to_image_model"`
	EntityModel      string `mapstructure:"entity_model" json:"entity_model"`
	VideoModel       string `mapstructure:"video_model" json:"video_model"`

	// Retry tuning for the generation loop.
	GenMaxAttempts int `mapstructure:"gen_max_attempts" json:"gen_max_attempts"`

	// Video polling cadence.
	VideoPollInterval time.Duration `mapstructure:"video_poll_interval" json:"video_poll_interval"`

	// HTTP server configuration.
	Addr               string        `mapstructure:"addr" json:"addr"`
	SessionIdleTimeout time.Duration `mapstructure:"session_idle_timeout" json:"session_idle_timeout"`

	// Logging configuration.
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`

	// Observability configuration (see observability.go).
	Tracing TracingConfig `mapstructure:"tracing" json:"tracing"`
}

// Dir returns the application configuration directory, creating it with
// restricted permissions on first use.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting user home directory: %w", err)
	}
	dir := filepath.Join(home, ".promptboard")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error, defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{dir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// The credential file backs up the environment variable, not the
	// other way round.
	if cfg.APIKey == "" {
		if key, err := LoadAPIKey(); err == nil {
			cfg.APIKey = key
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("flash_model", "gemini-2.5-flash-image")
	v.SetDefault("pro_model", "gemini-3-pro-image-preview")
	v.SetDefault("text_to_image_model", "imagen-4.0-generate-001")
	v.SetDefault("entity_model", "gemini-2.5-flash")
	v.SetDefault("video_model", "veo-3.0-generate-001")

	v.SetDefault("gen_max_attempts", 4)
	v.SetDefault("video_poll_interval", 20*time.Second)

	v.SetDefault("addr", "localhost:8085")
	v.SetDefault("session_idle_timeout", 2*time.Hour)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.service_name", "promptboard")
	v.SetDefault("tracing.environment", "dev")
}

func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("api_key", "GEMINI_API_KEY")
	mustBind("addr", "PROMPTBOARD_ADDR")
	mustBind("log_level", "PROMPTBOARD_LOG_LEVEL")
	mustBind("log_json", "PROMPTBOARD_LOG_JSON")
	mustBind("tracing.enabled", "PROMPTBOARD_TRACING")
	mustBind("tracing.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// Validate checks the configuration for out-of-range values. The API key is
// deliberately not required here: the server starts without one and routes
// generation requests to the credential-entry flow until a key is saved.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}
	for _, model := range []string{
		c.FlashModel, c.ProModel, c.TextToImageModel, c.EntityModel, c.VideoModel,
	} {
		if model == "" {
			return ErrInvalidModelName
		}
	}
	if c.GenMaxAttempts < MinAttempts || c.GenMaxAttempts > MaxAttempts {
		return fmt.Errorf("%w: %d not in [%d, %d]",
			ErrInvalidMaxAttempts, c.GenMaxAttempts, MinAttempts, MaxAttempts)
	}
	if c.Addr == "" {
		return ErrInvalidAddr
	}
	if c.SessionIdleTimeout <= 0 {
		return ErrInvalidIdleTimeout
	}
	return nil
}

// HasAPIKey reports whether a credential is configured.
func (c *Config) HasAPIKey() bool {
	return c != nil && c.APIKey != ""
}

// maskedValue is the placeholder for masked sensitive data.
const maskedValue = "████████"

// maskSecret masks a secret for safe logging. Short secrets are fully
// masked; longer ones keep the first and last two characters for debug
// utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field
// masking.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.APIKey = maskSecret(c.APIKey)
	return json.Marshal(a)
}
