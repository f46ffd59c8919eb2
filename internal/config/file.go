package config

import (
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/contactform/internal/errors"
)

// fileServer mirrors ServerConfig with durations spelled the way Viper parses them.
type fileServer struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	Environment     string   `yaml:"environment"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	ReadTimeout     string   `yaml:"read_timeout"`
	WriteTimeout    string   `yaml:"write_timeout"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	Live            bool     `yaml:"live"`
}

type fileConfig struct {
	Server  fileServer    `yaml:"server"`
	Form    FormConfig    `yaml:"form"`
	Logging LoggingConfig `yaml:"logging"`
}

// MarshalYAML renders cfg in the layout of .contactform.yml.
func MarshalYAML(cfg *Config) ([]byte, error) {
	fc := fileConfig{
		Server: fileServer{
			Host:            cfg.Server.Host,
			Port:            cfg.Server.Port,
			Environment:     cfg.Server.Environment,
			AllowedOrigins:  cfg.Server.AllowedOrigins,
			ReadTimeout:     cfg.Server.ReadTimeout.String(),
			WriteTimeout:    cfg.Server.WriteTimeout.String(),
			ShutdownTimeout: cfg.Server.ShutdownTimeout.String(),
			Live:            cfg.Server.Live,
		},
		Form:    cfg.Form,
		Logging: cfg.Logging,
	}

	return yaml.Marshal(fc)
}

// WriteDefault writes the default configuration to path. An existing file is
// only replaced when overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.NewConfigError(errors.ErrCodeConfigWrite, "config file already exists", nil).
				WithContext("path", path)
		}
	}

	data, err := MarshalYAML(Default())
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeInternalError, "failed to encode default config", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewIOError(errors.ErrCodeConfigWrite, "failed to write config file", err).
			WithContext("path", path)
	}

	return nil
}

// ChangeFunc receives the freshly loaded config after the watched file
// changes. cfg is nil when the new file does not load.
type ChangeFunc func(ev fsnotify.Event, cfg *Config, err error)

// Watch reloads v whenever its config file changes and hands the result to fn.
// v must have a config file set.
func Watch(v *viper.Viper, fn ChangeFunc) {
	v.OnConfigChange(func(ev fsnotify.Event) {
		if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
			return
		}
		cfg, err := Load(v)
		fn(ev, cfg, err)
	})
	v.WatchConfig()
}
