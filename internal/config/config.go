// Package config loads contactform configuration using Viper from a YAML
// file, CONTACTFORM_ prefixed environment variables and bound command-line
// flags, applies defaults, and validates the result.
package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/contactform/internal/errors"
	"github.com/conneroisu/contactform/internal/form"
)

// EnvPrefix is the prefix of every environment override, e.g. CONTACTFORM_SERVER_PORT.
const EnvPrefix = "CONTACTFORM"

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = ".contactform.yml"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"  yaml:"server"`
	Form    FormConfig    `mapstructure:"form"    yaml:"form"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"             yaml:"host"`
	Port            int           `mapstructure:"port"             yaml:"port"`
	Environment     string        `mapstructure:"environment"      yaml:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"  yaml:"allowed_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	Live            bool          `mapstructure:"live"             yaml:"live"`
}

// FormConfig holds the settings that can be hot reloaded while serving.
type FormConfig struct {
	Title              string `mapstructure:"title"                 yaml:"title"`
	FirstNameMinLength int    `mapstructure:"first_name_min_length" yaml:"first_name_min_length"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			Environment:     "development",
			AllowedOrigins:  []string{},
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			Live:            true,
		},
		Form: FormConfig{
			Title:              "Contact Form",
			FirstNameMinLength: form.DefaultFirstNameMinLength,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SetDefaults registers every default with v. Keys must be known to Viper
// for AutomaticEnv overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.environment", d.Server.Environment)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.live", d.Server.Live)
	v.SetDefault("form.title", d.Form.Title)
	v.SetDefault("form.first_name_min_length", d.Form.FirstNameMinLength)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// BindEnv enables CONTACTFORM_SECTION_KEY overrides on v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeConfigRead, "failed to decode configuration", err)
	}

	// Env overrides arrive as a single comma separated string.
	if origins := v.GetStringSlice("server.allowed_origins"); len(origins) == 1 && strings.Contains(origins[0], ",") {
		cfg.Server.AllowedOrigins = splitList(origins[0])
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks configuration values for correctness.
func Validate(cfg *Config) error {
	if err := validateServerConfig(&cfg.Server); err != nil {
		return invalid("server", err)
	}
	if err := validateFormConfig(&cfg.Form); err != nil {
		return invalid("form", err)
	}
	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return invalid("logging", err)
	}

	return nil
}

func invalid(section string, err error) error {
	return errors.NewConfigError(errors.ErrCodeConfigInvalid, "invalid configuration", fmt.Errorf("%s config: %w", section, err)).
		WithContext("section", section)
}

func validateServerConfig(c *ServerConfig) error {
	// Port 0 asks the kernel for a free port.
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", c.Port)
	}
	if c.Host != "" && strings.ContainsAny(c.Host, ";&|$`()<>\"'\\ ") {
		return fmt.Errorf("host %q contains invalid characters", c.Host)
	}
	if c.Host != "" && net.ParseIP(c.Host) == nil && strings.Contains(c.Host, ":") {
		return fmt.Errorf("host %q must not include a port", c.Host)
	}
	switch c.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("environment %q must be development or production", c.Environment)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.ShutdownTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	for _, origin := range c.AllowedOrigins {
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("allowed origin %q must start with http:// or https://", origin)
		}
	}

	return nil
}

func validateFormConfig(c *FormConfig) error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("title must not be empty")
	}
	if c.FirstNameMinLength < 1 || c.FirstNameMinLength > 256 {
		return fmt.Errorf("first_name_min_length %d is not in range 1-256", c.FirstNameMinLength)
	}

	return nil
}

func validateLoggingConfig(c *LoggingConfig) error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown level %q", c.Level)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format %q must be text or json", c.Format)
	}

	return nil
}

// Rules converts the form section into validation rules.
func (c FormConfig) Rules() form.Rules {
	return form.Rules{FirstNameMinLength: c.FirstNameMinLength}
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.Port))
}
