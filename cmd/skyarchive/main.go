package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sky-archive/config"
	"sky-archive/logging"
	"sky-archive/renderer"
)

var (
	// Global flags
	cfgPath string
	verbose bool
	backend string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "skyarchive",
	Short: "364 Sky Archive - one sky for every day of the year",
	Long: `364 Sky Archive shows the sky of any day of a 364-day year.

The procedural backend ray-marches volumetric clouds whose light, colour and
shape follow the season and a running time of day. The photo backend
cross-fades the captured frames of each day.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if backend != "" {
			c.Renderer.Backend = backend
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		logger, err = logging.New(c.Logging, verbose)
		if err != nil {
			return err
		}
		logger.Debug("config loaded", zap.String("path", cfgPath), zap.String("backend", c.Renderer.Backend))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&backend, "backend", "b", "", "Renderer backend: procedural or photo (default from config)")

	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(termCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(exportDomeCmd)
	rootCmd.AddCommand(labelsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newRenderer builds the configured backend.
func newRenderer(s renderer.Settings, log *zap.Logger) (renderer.SkyRenderer, error) {
	kind, err := renderer.ParseKind(cfg.Renderer.Backend)
	if err != nil {
		return nil, err
	}
	return renderer.New(kind, s, log)
}
