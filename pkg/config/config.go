package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Provider names accepted in classifier.providers
const (
	ProviderLocal  = "local"
	ProviderRemote = "remote"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Classifier configuration
	Classifier ClassifierConfig `mapstructure:"classifier"`

	// Local model configuration
	Local LocalConfig `mapstructure:"local"`

	// Remote inference configuration
	Remote RemoteConfig `mapstructure:"remote"`

	// Retry configuration
	Retry RetryConfig `mapstructure:"retry"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`

	// Alert configuration
	Alert AlertConfig `mapstructure:"alert"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ClassifierConfig controls the provider chain
type ClassifierConfig struct {
	// Providers lists model-backed providers in priority order ("local", "remote").
	// The keyword fallback always runs last and is not listed.
	Providers []string `mapstructure:"providers"`
	// DefaultMultiLabel is used when a caller does not choose a mode.
	DefaultMultiLabel bool `mapstructure:"default_multi_label"`
	// AttemptTimeout bounds each provider attempt, in seconds.
	AttemptTimeout int `mapstructure:"attempt_timeout"`
}

// LocalConfig holds configuration for the locally loaded model
type LocalConfig struct {
	// Backend is "nli" (zero-shot NLI pipeline) or "reranker".
	Backend string `mapstructure:"backend"`
	// Model defaults per backend when empty.
	Model              string `mapstructure:"model"`
	ModelDir           string `mapstructure:"model_dir"`
	HypothesisTemplate string `mapstructure:"hypothesis_template"`
	Accelerated        bool   `mapstructure:"accelerated"`
}

// RemoteConfig holds configuration for the hosted inference endpoint
type RemoteConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	// APIToken is never serialized.
	APIToken string `mapstructure:"api_token" json:"-" yaml:"-"`
	Timeout  int    `mapstructure:"timeout"` // in seconds
}

// RetryConfig holds configuration for retrying transient provider failures
type RetryConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	MaxRetries        int     `mapstructure:"max_retries"`
	InitialDelayMs    int     `mapstructure:"initial_delay_ms"`
	MaxDelayMs        int     `mapstructure:"max_delay_ms"`
	BackoffMultiplier float64 `mapstructure:"backoff_multiplier"`
}

// AlertConfig holds configuration for alerting
type AlertConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	SMTPHost string   `mapstructure:"smtp_host"`
	SMTPPort int      `mapstructure:"smtp_port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password" json:"-" yaml:"-"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	// ParquetPath receives ERROR log records. Empty disables the sink.
	ParquetPath string `mapstructure:"parquet_path"`
	// AttemptsPath receives one record per provider attempt. Empty disables tracking.
	AttemptsPath string `mapstructure:"attempts_path"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	if err := overrideWithEnv(config); err != nil {
		return nil, err
	}

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Classifier defaults
	viper.SetDefault("classifier.providers", []string{ProviderLocal, ProviderRemote})
	viper.SetDefault("classifier.default_multi_label", true)
	viper.SetDefault("classifier.attempt_timeout", 60)

	// Local model defaults
	viper.SetDefault("local.backend", "nli")
	viper.SetDefault("local.model", "")
	viper.SetDefault("local.hypothesis_template", "This example is about {}.")
	viper.SetDefault("local.accelerated", false)

	// Remote defaults
	viper.SetDefault("remote.base_url", "https://api-inference.huggingface.co")
	viper.SetDefault("remote.model", "facebook/bart-large-mnli")
	viper.SetDefault("remote.timeout", 60)

	// Retry defaults
	viper.SetDefault("retry.enabled", true)
	viper.SetDefault("retry.max_retries", 2)
	viper.SetDefault("retry.initial_delay_ms", 1000)
	viper.SetDefault("retry.max_delay_ms", 10000)
	viper.SetDefault("retry.backoff_multiplier", 2.0)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", false)
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("telemetry.attempts_path", filepath.Join(home, ".zeroshot", "attempts"))
		viper.SetDefault("local.model_dir", filepath.Join(home, ".zeroshot", "models"))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) error {
	// Remote credentials, most specific first
	for _, key := range []string{"HF_API_TOKEN", "HUGGINGFACEHUB_API_TOKEN"} {
		if token := os.Getenv(key); token != "" {
			config.Remote.APIToken = token
			break
		}
	}
	if baseURL := os.Getenv("ZEROSHOT_REMOTE_BASE_URL"); baseURL != "" {
		config.Remote.BaseURL = baseURL
	}

	if backend := os.Getenv("ZEROSHOT_LOCAL_BACKEND"); backend != "" {
		config.Local.Backend = backend
	}
	if model := os.Getenv("ZEROSHOT_LOCAL_MODEL"); model != "" {
		config.Local.Model = model
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT %q: %w", port, err)
		}
		config.Server.Port = p
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}

	return nil
}
