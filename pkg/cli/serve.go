package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/batcomd/batcomd/pkg/api"
	"github.com/batcomd/batcomd/pkg/config"
	"github.com/batcomd/batcomd/pkg/logging"
)

var serveFlags struct {
	host      string
	port      int
	logLevel  string
	logFormat string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Batcomputer API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyServeFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		log, err := logging.FromStrings(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return err
		}

		a := api.New(cfg, api.WithLogger(log))
		if err := a.Start(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "batcomd listening on %s:%d\n", cfg.Server.Host, cfg.Server.Port)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nShutting down...")

		return a.Stop()
	},
}

// loadConfig resolves the effective configuration. Without --config the
// built-in defaults are used.
func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.Default(), nil
	}
	return config.Load(configFile)
}

// applyServeFlags lets command-line flags override file values, but only
// when the flag was actually set.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveFlags.host
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serveFlags.port
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = serveFlags.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format = serveFlags.logFormat
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.host, "host", config.DefaultHost, "Host interface to bind")
	serveCmd.Flags().IntVar(&serveFlags.port, "port", config.DefaultPort, "Port to listen on")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&serveFlags.logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.AddCommand(serveCmd)
}
