package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alert-node/internal/config"
	"github.com/oshokin/alert-node/internal/service/node"
	"github.com/oshokin/alert-node/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// device overrides the serial device from the configuration.
	device string
	// dryRun replaces the GPIO pin with a simulated one.
	dryRun bool

	// rootCmd represents the base command running the node.
	rootCmd = &cobra.Command{
		Use:   "alert-node",
		Short: "Toggle an alert output when ALERT arrives on the serial line.",
		Long: `Listens on a serial line for text commands. When a line equal to ALERT arrives,
the alert output (a buzzer or LED) toggles HIGH and LOW every 200ms for about 5 seconds,
then ALERT_ACK is written back. Any other line is ignored.

While an alert cycle runs no input is read; commands received meanwhile are
processed after the acknowledgment. Pin, durations and serial settings come
from the configuration file; the device can be overridden with --device.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &node.Options{
				ConfigPath: configPath,
				Device:     device,
				DryRun:     dryRun,
			}

			return node.Run(ctx, options)
		},
	}
)

// Execute runs the alert-node CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(sendCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&device, "device", "D", "", "serial device, overrides configuration")

	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "simulate the alert output instead of driving GPIO")
}
