package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/contactform/internal/errors"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return v
}

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	assert.Equal(t, 5, cfg.Form.Rules().FirstNameMinLength)
}

func TestLoadFromFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
server:
  port: 9090
  environment: production
  allowed_origins:
    - https://example.com
  shutdown_timeout: 30s
form:
  title: Say hello
  first_name_min_length: 3
logging:
  level: debug
  format: json
`)
	v := newViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "production", cfg.Server.Environment)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "Say hello", cfg.Form.Title)
	assert.Equal(t, 3, cfg.Form.FirstNameMinLength)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CONTACTFORM_SERVER_PORT", "7070")
	t.Setenv("CONTACTFORM_FORM_TITLE", "Write to us")
	t.Setenv("CONTACTFORM_SERVER_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "Write to us", cfg.Form.Title)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"negative port", func(c *Config) { c.Server.Port = -1 }},
		{"host injection", func(c *Config) { c.Server.Host = "localhost;rm -rf" }},
		{"host with port", func(c *Config) { c.Server.Host = "localhost:80" }},
		{"unknown environment", func(c *Config) { c.Server.Environment = "staging" }},
		{"negative timeout", func(c *Config) { c.Server.ReadTimeout = -time.Second }},
		{"bad origin", func(c *Config) { c.Server.AllowedOrigins = []string{"example.com"} }},
		{"empty title", func(c *Config) { c.Form.Title = "  " }},
		{"zero min length", func(c *Config) { c.Form.FirstNameMinLength = 0 }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)

			require.Error(t, err)
			assert.True(t, errors.IsConfigError(err))
		})
	}
}

func TestValidateAcceptsIPv6Host(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = "::1"

	require.NoError(t, Validate(cfg))
	assert.Equal(t, "[::1]:8080", cfg.Server.Addr())
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	require.NoError(t, WriteDefault(path, false))

	v := newViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "shutdown_timeout: 5s")
}

func TestWriteDefaultRefusesOverwrite(t *testing.T) {
	path := writeFile(t, t.TempDir(), "form:\n  title: Mine\n")

	err := WriteDefault(path, false)
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))

	require.NoError(t, WriteDefault(path, true))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: Contact Form")
}

func TestWatchReloadsForm(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "form:\n  title: Before\n")
	v := newViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	reloaded := make(chan *Config, 8)
	Watch(v, func(_ fsnotify.Event, cfg *Config, err error) {
		if err == nil {
			reloaded <- cfg
		}
	})

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("form:\n  title: After\n"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-reloaded:
			if cfg.Form.Title == "After" {
				return
			}
		case <-deadline:
			t.Fatal("config change was not observed")
		}
	}
}
