// Package cmd provides the contactform command-line interface.
//
// Configuration is read, highest priority first, from command-line flags,
// CONTACTFORM_<SECTION>_<OPTION> environment variables, the file named by
// --config or CONTACTFORM_CONFIG_FILE, and finally .contactform.yml in the
// working directory.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/contactform/internal/config"
	"github.com/conneroisu/contactform/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "contactform",
	Short: "Serve and exercise a validated contact form",
	Long: `contactform serves a contact form that collects a first name, last name,
email and optional message, validates every keystroke, and displays the
submitted values.

Quick Start:
  contactform init                 Write a default .contactform.yml
  contactform serve                Start the form server
  contactform validate --email x   Validate values from the command line
  contactform render               Print the form HTML`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .contactform.yml, can also use CONTACTFORM_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	v := viper.GetViper()
	config.SetDefaults(v)
	config.BindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("CONTACTFORM_CONFIG_FILE"); envConfigFile != "" {
		v.SetConfigFile(envConfigFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".contactform")
	}

	// A missing file is fine; defaults and env still apply.
	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

func newLogger(cfg *config.Config) *logging.SlogLogger {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
}
