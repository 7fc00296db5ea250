package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/alert-node/internal/service/sender"
)

var (
	// settle is waited after opening the port.
	settle time.Duration
	// ackTimeout overrides the acknowledgment timeout.
	ackTimeout time.Duration

	// sendCmd triggers an alert on a node and waits for the acknowledgment.
	sendCmd = &cobra.Command{
		Use:   "send [device]",
		Short: "Send ALERT to a node and wait for ALERT_ACK.",
		Long: `Opens the serial line, writes ALERT and waits until the node answers ALERT_ACK.
The node only answers after its alert cycle completes, so the timeout must be
longer than the cycle. Boards that reset when the port opens need --settle.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Positional device wins over --device.
			target := device
			if len(args) > 0 {
				target = args[0]
			}

			options := &sender.Options{
				ConfigPath: configPath,
				Device:     target,
				Settle:     settle,
				AckTimeout: ackTimeout,
			}

			return sender.Run(ctx, options)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	sendCmd.Flags().DurationVar(&settle, "settle", 0, "wait after opening the port, e.g. 2s for boards that reset")
	sendCmd.Flags().DurationVarP(&ackTimeout, "timeout", "t", 0, "acknowledgment timeout, overrides configuration")
}
