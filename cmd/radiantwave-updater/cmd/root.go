package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"radiantwavetech.com/radiantwave-updater/internal/config"
	"radiantwavetech.com/radiantwave-updater/internal/domain/run"
	"radiantwavetech.com/radiantwave-updater/internal/service/updater"
	"radiantwavetech.com/radiantwave-updater/internal/version"
)

var errRunFailed = errors.New("maintenance run failed")

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// debug forces debug logging.
	debug bool

	// rootCmd represents the base command running one maintenance pass.
	rootCmd = &cobra.Command{
		Use:   "radiantwave-updater",
		Short: "Keep a RadiantWave kiosk up to date.",
		Long: `Runs one maintenance pass on a kiosk and exits.

The pass checks network connectivity, makes sure the overlay network client is
installed, logged in and advertising the device license key as its hostname,
then upgrades the radiantwave package through apt and restarts the display
manager. Overlay problems never fail the pass; a failed package refresh or
install does.

Meant to be started periodically by a systemd timer. Exits 0 when the kiosk is
up to date or was upgraded, 1 when the upgrade failed.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			outcome, err := updater.Run(ctx, &updater.Options{
				ConfigPath: configPath,
				Debug:      debug,
			})
			if err != nil {
				return err
			}

			if outcome == run.Failure {
				return errRunFailed
			}

			return nil
		},
	}
)

// Execute runs the radiantwave-updater CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename,
		"path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "log at debug level")

	rootCmd.AddCommand(statusCmd)
}
