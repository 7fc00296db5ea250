package sender

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/oshokin/alert-node/internal/config"
	"github.com/oshokin/alert-node/internal/domain/alert"
	"github.com/oshokin/alert-node/internal/hardware/serial"
	"github.com/oshokin/alert-node/internal/logger"
)

// Options configures a single alert request.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// Device overrides the serial device from the configuration.
	Device string
	// Settle is waited after opening the port, for boards that reset on open.
	Settle time.Duration
	// AckTimeout overrides the acknowledgment timeout from the configuration.
	AckTimeout time.Duration
}

// ErrAckTimeout is returned when no acknowledgment arrives in time.
var ErrAckTimeout = errors.New("no acknowledgment received")

// Run opens the serial channel, sends the alert command and waits for the acknowledgment.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alert-send")

	cfg, err := config.Load(opts.ConfigPath, config.WithDevice(opts.Device))
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	ackTimeout := cfg.AckTimeout
	if opts.AckTimeout > 0 {
		ackTimeout = opts.AckTimeout
	}

	port, err := serial.Open(serial.Config{
		Device:      cfg.Device,
		BaudRate:    cfg.BaudRate,
		ReadTimeout: cfg.PollInterval,
	})
	if err != nil {
		return err
	}

	defer func() {
		_ = port.Close()
	}()

	if opts.Settle > 0 {
		logger.InfoKV(ctx, "Waiting for the device to settle", "settle", opts.Settle.String())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opts.Settle):
		}
	}

	logger.InfoKV(ctx, "Sending alert", "device", cfg.Device, "ack_timeout", ackTimeout.String())

	elapsed, err := Send(ctx, port, ackTimeout)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Alert acknowledged", "elapsed", elapsed.String())

	return nil
}

// Send writes the alert command to port and polls for the acknowledgment.
// port should return from Read within a bounded time when idle. Lines other
// than the acknowledgment are skipped. It returns the time between the write
// and the acknowledgment.
func Send(ctx context.Context, port io.ReadWriter, ackTimeout time.Duration) (time.Duration, error) {
	lines := serial.NewLineReader(port, serial.DefaultMaxLineLength)

	if err := serial.WriteLine(port, alert.Command); err != nil {
		return 0, fmt.Errorf("send alert: %w", err)
	}

	sent := time.Now()
	deadline := sent.Add(ackTimeout)

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		if !time.Now().Before(deadline) {
			return 0, fmt.Errorf("%w within %s", ErrAckTimeout, ackTimeout)
		}

		line, ok, err := lines.Poll()

		switch {
		case errors.Is(err, serial.ErrLineTooLong):
			continue
		case err != nil:
			return 0, err
		case !ok:
			continue
		}

		if strings.TrimSpace(line) == alert.Ack {
			return time.Since(sent), nil
		}

		logger.DebugKV(ctx, "Skipping line", "line", line)
	}
}
