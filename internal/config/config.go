// Package config loads the application and symbol-table configuration
// from YAML files, with compiled-in defaults when a file is absent.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration decodes from YAML strings like "30s" or "2m" and, for
// bare numbers, seconds. The yaml package does not handle
// time.Duration fields on its own.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!int" || value.Tag == "!!float" {
		var seconds float64
		if err := value.Decode(&seconds); err != nil {
			return err
		}
		*d = Duration(seconds * float64(time.Second))
		return nil
	}

	var text string
	if err := value.Decode(&text); err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	parsed, err := time.ParseDuration(text)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Cache    CacheConfig    `yaml:"cache"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout"`
}

// ProviderConfig holds the upstream data-source transport settings.
type ProviderConfig struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout Duration      `yaml:"request_timeout"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryBackoff   Duration      `yaml:"retry_backoff"`
	Breaker        BreakerConfig `yaml:"breaker"`
}

// BreakerConfig holds circuit-breaker thresholds.
type BreakerConfig struct {
	MaxRequests         uint32        `yaml:"max_requests"`
	Interval            Duration `yaml:"interval"`
	Timeout             Duration `yaml:"timeout"`
	ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
}

// FetchConfig holds fan-out settings.
type FetchConfig struct {
	Workers int `yaml:"workers"`
}

// CacheConfig overrides the per-class TTLs.
type CacheConfig struct {
	FuturesTTL Duration `yaml:"futures_ttl"`
	CryptoTTL  Duration `yaml:"crypto_ttl"`
	SessionTTL Duration `yaml:"session_ttl"`
	Timezone   string   `yaml:"timezone"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  Duration(10 * time.Second),
			WriteTimeout: Duration(30 * time.Second),
			IdleTimeout:  Duration(60 * time.Second),
		},
		Provider: ProviderConfig{
			BaseURL:        "https://query1.finance.yahoo.com",
			RequestTimeout: Duration(10 * time.Second),
			RateLimitRPS:   5.0,
			RateLimitBurst: 10,
			MaxRetries:     3,
			RetryBackoff:   Duration(time.Second),
			Breaker: BreakerConfig{
				MaxRequests:         3,
				Interval:            Duration(60 * time.Second),
				Timeout:             Duration(30 * time.Second),
				ConsecutiveFailures: 5,
			},
		},
		Fetch: FetchConfig{Workers: 10},
		Cache: CacheConfig{
			FuturesTTL: Duration(30 * time.Second),
			CryptoTTL:  Duration(2 * time.Minute),
			SessionTTL: Duration(2 * time.Minute),
			Timezone:   "America/New_York",
		},
	}
}

// Load reads path and merges its values over the defaults. An empty
// path returns the defaults unchanged; a missing or malformed file is
// an error.
func Load(path string) (Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return config, nil
}
