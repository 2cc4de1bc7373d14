package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"radiantwavetech.com/radiantwave-updater/internal/logger"
	"radiantwavetech.com/radiantwave-updater/internal/service/inspect"
)

// statusCmd prints the kiosk state without changing it.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show device identity and overlay network state.",
	Long: `Reads the device license key and queries the overlay client, then prints
what a maintenance pass would see. Nothing is installed, logged in or restarted,
and no privilege escalation is used.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		level := zap.WarnLevel
		if debug {
			level = zap.DebugLevel
		}

		log := logger.New(level)

		defer func() {
			_ = log.Sync()
		}()

		return inspect.Run(logger.ToContext(ctx, log), &inspect.Options{
			ConfigPath: configPath,
			Out:        cmd.OutOrStdout(),
		})
	},
}
