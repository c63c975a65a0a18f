package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dusk-indust/usermgr/internal/userapi"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvBaseURL   = "USERMGR_BASE_URL"
	EnvTimeout   = "USERMGR_TIMEOUT"
	EnvRateLimit = "USERMGR_RATE_LIMIT"
	EnvRateBurst = "USERMGR_RATE_BURST"
	EnvLogLevel  = "USERMGR_LOG_LEVEL"
	EnvLogDev    = "USERMGR_LOG_DEV"
)

// Config holds client settings loaded from usermgr.yml, .env and the
// environment, in increasing order of precedence.
type Config struct {
	BaseURL   string        `yaml:"baseURL,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	RateLimit float64       `yaml:"rateLimit,omitempty"`
	RateBurst int           `yaml:"rateBurst,omitempty"`
	LogLevel  string        `yaml:"logLevel,omitempty"`
	LogDev    bool          `yaml:"logDev,omitempty"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		BaseURL:   userapi.DefaultBaseURL,
		Timeout:   30 * time.Second,
		RateBurst: 1,
		LogLevel:  "info",
	}
}

// Load builds a Config for dir. If file is non-empty it must exist;
// otherwise usermgr.yml or usermgr.yaml in dir is used when present. A .env
// file in dir is read next, and process environment variables win over it.
func Load(dir, file string) (*Config, error) {
	cfg := Default()

	if file != "" {
		if err := readYAML(file, cfg); err != nil {
			return nil, err
		}
	} else {
		for _, name := range []string{"usermgr.yml", "usermgr.yaml"} {
			err := readYAML(filepath.Join(dir, name), cfg)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, err
			}
			break
		}
	}

	dotenv, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	if dotenv == nil {
		dotenv = map[string]string{}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.BaseURL = v
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	if v, ok := lookup(EnvRateLimit); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvRateLimit, err)
		}
		c.RateLimit = f
	}
	if v, ok := lookup(EnvRateBurst); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvRateBurst, err)
		}
		c.RateBurst = n
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvLogDev); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvLogDev, err)
		}
		c.LogDev = b
	}
	return nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("config: baseURL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: baseURL %q must be an absolute http(s) URL", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("config: rateLimit must not be negative, got %g", c.RateLimit)
	}
	return nil
}

// ClientOptions translates the settings into userapi client options.
func (c *Config) ClientOptions() []userapi.ClientOption {
	return []userapi.ClientOption{
		userapi.WithBaseURL(c.BaseURL),
		userapi.WithTimeout(c.Timeout),
		userapi.WithRateLimit(c.RateLimit, c.RateBurst),
	}
}
