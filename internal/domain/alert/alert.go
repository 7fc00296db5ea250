package alert

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// Command is the only line that triggers an alert cycle.
	Command = "ALERT"
	// Ack is written after every completed alert cycle.
	Ack = "ALERT_ACK"
)

const (
	// DefaultPin is the output line driving the buzzer or LED.
	DefaultPin = "GPIO8"
	// DefaultDuration is how long the output toggles after a command.
	DefaultDuration = 5000 * time.Millisecond
	// DefaultTogglePeriod is the time spent in each HIGH and LOW phase.
	DefaultTogglePeriod = 200 * time.Millisecond
)

// Level is the logical state of the alert output line.
type Level bool

const (
	// Low is the inactive state.
	Low Level = false
	// High is the active state.
	High Level = true
)

// String returns "HIGH" or "LOW".
func (l Level) String() string {
	if l {
		return "HIGH"
	}

	return "LOW"
}

var (
	// ErrPinRequired is returned when no output line is configured.
	ErrPinRequired = errors.New("alert pin must be provided")
	// ErrDurationNotPositive is returned for a zero or negative duration.
	ErrDurationNotPositive = errors.New("alert duration must be positive")
	// ErrPeriodNotPositive is returned for a zero or negative toggle period.
	ErrPeriodNotPositive = errors.New("toggle period must be positive")
)

// Settings describes one alert cycle. It is built once at startup.
type Settings struct {
	// Pin names the output line that is toggled.
	Pin string
	// Duration is the nominal wall-clock length of the cycle.
	Duration time.Duration
	// TogglePeriod is the half-cycle time of the HIGH and LOW phases.
	TogglePeriod time.Duration
}

// DefaultSettings returns the reference cycle: GPIO8, 5s, 200ms.
func DefaultSettings() Settings {
	return Settings{
		Pin:          DefaultPin,
		Duration:     DefaultDuration,
		TogglePeriod: DefaultTogglePeriod,
	}
}

// Validate checks the settings invariants.
func (s Settings) Validate() error {
	switch {
	case s.Pin == "":
		return ErrPinRequired
	case s.Duration <= 0:
		return fmt.Errorf("%w: %s", ErrDurationNotPositive, s.Duration)
	case s.TogglePeriod <= 0:
		return fmt.Errorf("%w: %s", ErrPeriodNotPositive, s.TogglePeriod)
	}

	return nil
}

// Deadline returns the absolute end time of a cycle started at start.
func (s Settings) Deadline(start time.Time) time.Time {
	return start.Add(s.Duration)
}

// ExpectedPulses returns how many HIGH phases a cycle produces.
// The deadline is only checked between full HIGH/LOW pairs, so a cycle may
// overrun Duration by less than one pair.
func (s Settings) ExpectedPulses() int {
	pair := 2 * s.TogglePeriod
	pulses := int(s.Duration / pair)

	if s.Duration%pair != 0 {
		pulses++
	}

	return pulses
}

// Match reports whether line, once trimmed, is exactly the alert command.
// The comparison is byte-exact and case sensitive.
func Match(line string) bool {
	return strings.TrimSpace(line) == Command
}

// Report summarizes one completed alert cycle.
type Report struct {
	// Started is when the first HIGH phase began.
	Started time.Time
	// Finished is when the last LOW phase ended.
	Finished time.Time
	// Pulses is the number of HIGH phases driven.
	Pulses int
	// WriteErrors counts output writes that failed during the cycle.
	WriteErrors int
}

// Elapsed returns the wall-clock length of the cycle.
func (r Report) Elapsed() time.Duration {
	return r.Finished.Sub(r.Started)
}
