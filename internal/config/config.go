package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/instant-hdr/autoenhance-go/autoenhance"
	"github.com/instant-hdr/autoenhance-go/internal/logging"
)

// EnvPrefix prefixes every environment variable, e.g. AUTOENHANCE_API_KEY or
// AUTOENHANCE_POLL_TIMEOUT.
const EnvPrefix = "AUTOENHANCE"

// defaultConfigName is looked up in the working directory when no file is given.
const defaultConfigName = "autoenhance"

type Config struct {
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	LogLevel string `mapstructure:"log_level"`

	Retry      Retry      `mapstructure:"retry"`
	Poll       Poll       `mapstructure:"poll"`
	MockServer MockServer `mapstructure:"mock_server"`
}

type Retry struct {
	Max     int           `mapstructure:"max"`
	WaitMin time.Duration `mapstructure:"wait_min"`
	WaitMax time.Duration `mapstructure:"wait_max"`
}

type Poll struct {
	Interval    time.Duration `mapstructure:"interval"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// MockServer configures the local fake API.
type MockServer struct {
	Addr         string `mapstructure:"addr"`
	APIKey       string `mapstructure:"api_key"`
	ProcessAfter int    `mapstructure:"process_after"`
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"api-key":       "api_key",
	"base-url":      "base_url",
	"log-level":     "log_level",
	"addr":          "mock_server.addr",
	"process-after": "mock_server.process_after",
}

func setDefaults(v *viper.Viper) {
	retry := autoenhance.DefaultRetryOptions()
	poll := autoenhance.DefaultPollOptions()

	v.SetDefault("api_key", "")
	v.SetDefault("base_url", autoenhance.DefaultBaseURL)
	v.SetDefault("log_level", "info")

	v.SetDefault("retry.max", retry.Max)
	v.SetDefault("retry.wait_min", retry.WaitMin)
	v.SetDefault("retry.wait_max", retry.WaitMax)

	v.SetDefault("poll.interval", poll.Interval)
	v.SetDefault("poll.max_attempts", poll.MaxAttempts)
	v.SetDefault("poll.timeout", poll.Timeout)

	v.SetDefault("mock_server.addr", "127.0.0.1:8080")
	v.SetDefault("mock_server.api_key", "test-api-key")
	v.SetDefault("mock_server.process_after", 2)
}

// Load reads configuration from, in increasing priority: defaults, the YAML
// file at path (or ./autoenhance.yaml if present when path is empty),
// AUTOENHANCE_* environment variables and any changed flags in flags.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks ranges and formats. The API key is checked separately by
// RequireAPIKey since the mock server runs without one.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("base_url %q must be an absolute URL", c.BaseURL)
		}
	}
	if c.Retry.Max < 0 {
		return fmt.Errorf("retry.max must not be negative")
	}
	if c.Retry.WaitMin <= 0 {
		return fmt.Errorf("retry.wait_min must be positive")
	}
	if c.Retry.WaitMax < c.Retry.WaitMin {
		return fmt.Errorf("retry.wait_max must not be less than retry.wait_min")
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive")
	}
	if c.Poll.MaxAttempts <= 0 {
		return fmt.Errorf("poll.max_attempts must be positive")
	}
	if c.Poll.Timeout <= 0 {
		return fmt.Errorf("poll.timeout must be positive")
	}
	if c.MockServer.ProcessAfter < 0 {
		return fmt.Errorf("mock_server.process_after must not be negative")
	}
	return nil
}

// RequireAPIKey fails when no API key was configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("api key is required: set --api-key or %s_API_KEY", EnvPrefix)
	}
	return nil
}

// ClientConfig builds the client configuration.
func (c *Config) ClientConfig(logger *zap.Logger) autoenhance.Config {
	return autoenhance.Config{
		APIKey:  c.APIKey,
		BaseURL: c.BaseURL,
		Logger:  logger,
		Retry: autoenhance.RetryOptions{
			Max:     c.Retry.Max,
			WaitMin: c.Retry.WaitMin,
			WaitMax: c.Retry.WaitMax,
		},
		Poll: autoenhance.PollOptions{
			Interval:    c.Poll.Interval,
			MaxAttempts: c.Poll.MaxAttempts,
			Timeout:     c.Poll.Timeout,
		},
	}
}
