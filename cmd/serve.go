package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/contactform/internal/config"
	"github.com/conneroisu/contactform/internal/logging"
	"github.com/conneroisu/contactform/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the contact form server",
	Long: `Start the HTTP server hosting the contact form. Inputs are validated live
over a websocket session; plain form posts work without JavaScript.

Changes to the form and logging sections of the config file are applied
without a restart.

Examples:
  contactform serve
  contactform serve --port 3000 --host 0.0.0.0
  CONTACTFORM_SERVER_ENVIRONMENT=production contactform serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().Bool("live", true, "Validate on every keystroke over a websocket")

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.live", serveCmd.Flags().Lookup("live"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger(cfg)
	srv := server.New(cfg, logger)

	if viper.ConfigFileUsed() != "" {
		config.Watch(viper.GetViper(), reloadHandler(cmd.Context(), srv, logger))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Starting contact form server at http://%s\n", cfg.Server.Addr())

	return srv.Start(ctx)
}

func reloadHandler(ctx context.Context, srv *server.Server, logger *logging.SlogLogger) config.ChangeFunc {
	return func(ev fsnotify.Event, cfg *config.Config, err error) {
		if err != nil {
			logger.Warn(ctx, err, "Ignoring invalid config change", "file", ev.Name)
			return
		}
		if level, err := logging.ParseLevel(cfg.Logging.Level); err == nil {
			logger.SetLevel(level)
		}
		srv.UpdateForm(cfg.Form)
	}
}
