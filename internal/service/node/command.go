package node

import (
	"context"
	"fmt"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/oshokin/alert-node/internal/config"
	"github.com/oshokin/alert-node/internal/hardware/gpio"
	"github.com/oshokin/alert-node/internal/hardware/serial"
	"github.com/oshokin/alert-node/internal/logger"
	"github.com/oshokin/alert-node/internal/metrics"
	"github.com/oshokin/alert-node/internal/service/common"
)

// Options controls the alert-node process.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// Device overrides the serial device from the configuration.
	Device string
	// DryRun replaces the GPIO pin with a simulated line that only logs.
	DryRun bool
}

// Run loads the configuration, performs the startup contract (output LOW,
// serial channel open) and listens for commands until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alert-node")

	cfg, err := config.Load(opts.ConfigPath, config.WithDevice(opts.Device))
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	// Validate already accepted the level.
	level, _ := logger.ParseLogLevel(cfg.LogLevel)
	logger.SetLevel(level)

	if err = common.EnsureSingleInstance(); err != nil {
		return err
	}

	output, closeOutput, err := openOutput(ctx, cfg.AlertPin, opts.DryRun)
	if err != nil {
		return err
	}

	defer closeOutput()

	var m *metrics.Metrics
	if cfg.MetricsAddress != "" {
		m = metrics.New(nil)

		go func() {
			if serveErr := m.Serve(ctx, cfg.MetricsAddress); serveErr != nil {
				logger.ErrorKV(ctx, "Metrics endpoint failed", "error", serveErr)
			}
		}()
	}

	// The output is already LOW once opened; only then is the serial channel opened.
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

	driver, err := NewDriver(
		port,
		output,
		cfg.AlertSettings(),
		WithMetrics(m),
		WithMaxLineLength(cfg.MaxLineLength),
	)
	if err != nil {
		return err
	}

	if err = driver.Setup(ctx); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Listening for commands", "device", cfg.Device, "baud_rate", cfg.BaudRate, "dry_run", opts.DryRun)

	if sent, notifyErr := daemon.SdNotify(false, daemon.SdNotifyReady); notifyErr != nil {
		logger.WarnKV(ctx, "Readiness notification failed", "error", notifyErr)
	} else if sent {
		logger.Debug(ctx, "Readiness notified to systemd")
	}

	return driver.Listen(ctx)
}

// openOutput returns the alert output line and a function releasing it.
func openOutput(ctx context.Context, pin string, dryRun bool) (gpio.Output, func(), error) {
	if dryRun {
		return gpio.NewSimulated(ctx, pin), func() {}, nil
	}

	p, err := gpio.Open(pin)
	if err != nil {
		return nil, nil, fmt.Errorf("open alert output: %w", err)
	}

	return p, func() {
		if closeErr := p.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Release alert output failed", "error", closeErr)
		}
	}, nil
}
