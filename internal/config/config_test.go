package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dusk-indust/usermgr/internal/userapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// clearEnv makes sure the host environment cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvBaseURL, EnvTimeout, EnvRateLimit, EnvRateBurst, EnvLogLevel, EnvLogDev} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_DefaultsWhenNothingConfigured(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, userapi.DefaultBaseURL, cfg.BaseURL)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "usermgr.yml", `
baseURL: http://localhost:8080
timeout: 5s
rateLimit: 2.5
rateBurst: 3
logLevel: debug
logDev: true
`)

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, &Config{
		BaseURL:   "http://localhost:8080",
		Timeout:   5 * time.Second,
		RateLimit: 2.5,
		RateBurst: 3,
		LogLevel:  "debug",
		LogDev:    true,
	}, cfg)
}

func TestLoad_YAMLAlternateExtension(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "usermgr.yaml", "baseURL: https://users.example.com\n")

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "https://users.example.com", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	clearEnv(t)
	_, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "usermgr.yml", "baseURL: [unterminated\n")

	_, err := Load(dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: parse")
}

func TestLoad_DotEnvOverridesFileAndEnvOverridesDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "usermgr.yml", "baseURL: http://from-file\nlogLevel: warn\n")
	writeFile(t, dir, ".env", "USERMGR_BASE_URL=http://from-dotenv\nUSERMGR_LOG_LEVEL=debug\nUSERMGR_TIMEOUT=7s\n")
	t.Setenv(EnvBaseURL, "http://from-env")

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "http://from-env", cfg.BaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 7*time.Second, cfg.Timeout)
}

func TestLoad_BadEnvValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvTimeout, "soon"},
		{EnvRateLimit, "fast"},
		{EnvRateBurst, "many"},
		{EnvLogDev, "perhaps"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load(t.TempDir(), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"relative url", func(c *Config) { c.BaseURL = "/users" }, true},
		{"ftp url", func(c *Config) { c.BaseURL = "ftp://example.com" }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClientOptions(t *testing.T) {
	cfg := Default()
	cfg.BaseURL = "http://localhost:9999/"
	cfg.RateLimit = 5

	client := userapi.NewHTTPClient(cfg.ClientOptions()...)
	assert.Equal(t, "http://localhost:9999", client.BaseURL())
}
