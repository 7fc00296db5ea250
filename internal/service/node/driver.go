package node

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/oshokin/alert-node/internal/domain/alert"
	"github.com/oshokin/alert-node/internal/hardware/gpio"
	"github.com/oshokin/alert-node/internal/hardware/serial"
	"github.com/oshokin/alert-node/internal/logger"
	"github.com/oshokin/alert-node/internal/metrics"
)

// defaultErrorBackoff is the pause after a failed poll before polling again.
const defaultErrorBackoff = time.Second

// Driver is the command listener and alert driver.
type Driver struct {
	// port is the serial channel commands are read from and acks written to.
	port io.ReadWriter
	// lines splits the port's input into lines.
	lines *serial.LineReader
	// output is the line toggled during a cycle.
	output gpio.Output
	// settings describes the alert cycle.
	settings alert.Settings
	// metrics records commands and cycles; nil disables recording.
	metrics *metrics.Metrics
	// errorBackoff is the pause after a failed poll.
	errorBackoff time.Duration
	// maxLineLength bounds an unterminated input line.
	maxLineLength int
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithMetrics records commands and cycles in m.
func WithMetrics(m *metrics.Metrics) DriverOption {
	return func(d *Driver) {
		d.metrics = m
	}
}

// WithMaxLineLength bounds an unterminated input line.
func WithMaxLineLength(n int) DriverOption {
	return func(d *Driver) {
		if n > 0 {
			d.maxLineLength = n
		}
	}
}

// WithErrorBackoff sets the pause after a failed poll.
func WithErrorBackoff(backoff time.Duration) DriverOption {
	return func(d *Driver) {
		if backoff > 0 {
			d.errorBackoff = backoff
		}
	}
}

// NewDriver creates a Driver. port should return from Read within a bounded
// time when no data is available, as a serial port with a read timeout does.
func NewDriver(port io.ReadWriter, output gpio.Output, settings alert.Settings, opts ...DriverOption) (*Driver, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid alert settings: %w", err)
	}

	d := &Driver{
		port:          port,
		output:        output,
		settings:      settings,
		errorBackoff:  defaultErrorBackoff,
		maxLineLength: serial.DefaultMaxLineLength,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.lines = serial.NewLineReader(port, d.maxLineLength)

	return d, nil
}

// Setup drives the output to its inactive level.
func (d *Driver) Setup(ctx context.Context) error {
	if err := d.output.Set(alert.Low); err != nil {
		return fmt.Errorf("initialize alert output: %w", err)
	}

	logger.InfoKV(
		ctx,
		"Alert output ready",
		"pin", d.output.Name(),
		"duration", d.settings.Duration.String(),
		"toggle_period", d.settings.TogglePeriod.String(),
	)

	return nil
}

// Listen polls for commands until ctx is canceled. A cycle that has already
// started always runs to completion and is acknowledged before Listen
// notices the cancellation.
func (d *Driver) Listen(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			logger.Info(ctx, "Context canceled, listener stopped")
			return nil
		}

		if err := d.Step(ctx); err != nil {
			logger.ErrorKV(ctx, "Poll failed", "error", err)

			select {
			case <-ctx.Done():
			case <-time.After(d.errorBackoff):
			}
		}
	}
}

// Step performs one iteration of the main loop: it checks for a complete
// line and, if that line is the alert command, runs the cycle and writes the
// acknowledgment. Other lines are dropped without any output.
func (d *Driver) Step(ctx context.Context) error {
	line, ok, err := d.lines.Poll()

	switch {
	case errors.Is(err, serial.ErrLineTooLong):
		logger.WarnKV(ctx, "Discarding oversized input line", "max_length", d.maxLineLength)
		d.metrics.ObserveCommand(metrics.ResultOverflow)

		return nil
	case err != nil:
		return err
	case !ok:
		return nil
	}

	if !alert.Match(line) {
		logger.DebugKV(ctx, "Ignoring line", "line", line)
		d.metrics.ObserveCommand(metrics.ResultIgnored)

		return nil
	}

	d.metrics.ObserveCommand(metrics.ResultAlert)
	logger.Info(ctx, "Alert command received")

	report := d.Cycle(ctx)
	d.metrics.ObserveCycle(report)

	if err = serial.WriteLine(d.port, alert.Ack); err != nil {
		return fmt.Errorf("acknowledge alert: %w", err)
	}

	logger.InfoKV(
		ctx,
		"Alert cycle acknowledged",
		"pulses", report.Pulses,
		"elapsed", report.Elapsed().String(),
		"write_errors", report.WriteErrors,
	)

	return nil
}

// Cycle toggles the output HIGH and LOW for one toggle period each until the
// deadline passes. The deadline is only checked before each HIGH/LOW pair, so
// the cycle overruns the configured duration by less than one pair. It
// always ends with a LOW phase and cannot be interrupted.
func (d *Driver) Cycle(ctx context.Context) alert.Report {
	start := time.Now()
	end := d.settings.Deadline(start)
	report := alert.Report{Started: start}

	for time.Now().Before(end) {
		d.drive(ctx, alert.High, &report)
		report.Pulses++

		time.Sleep(d.settings.TogglePeriod)

		d.drive(ctx, alert.Low, &report)

		time.Sleep(d.settings.TogglePeriod)
	}

	report.Finished = time.Now()

	return report
}

// drive writes level to the output, counting and logging failures.
// A failed write does not shorten the cycle.
func (d *Driver) drive(ctx context.Context, level alert.Level, report *alert.Report) {
	if err := d.output.Set(level); err != nil {
		report.WriteErrors++
		logger.ErrorKV(ctx, "Output write failed", "level", level.String(), "error", err)
	}
}
