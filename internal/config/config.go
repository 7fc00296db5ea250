package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/alert-node/internal/domain/alert"
	"github.com/oshokin/alert-node/internal/logger"
)

// Config holds the settings shared by the node and the sender.
type Config struct {
	// Device is the serial device path, e.g. /dev/ttyACM0.
	Device string `yaml:"device"`
	// BaudRate is the serial line speed.
	BaudRate int `yaml:"baud_rate"`
	// AlertPin is the name of the output line toggled during a cycle.
	AlertPin string `yaml:"alert_pin"`
	// AlertDuration is the nominal length of one alert cycle.
	AlertDuration time.Duration `yaml:"alert_duration"`
	// TogglePeriod is the time spent in each HIGH and LOW phase.
	TogglePeriod time.Duration `yaml:"toggle_period"`
	// PollInterval bounds how long one check for input may wait.
	PollInterval time.Duration `yaml:"poll_interval"`
	// MaxLineLength bounds an unterminated line kept in the input buffer.
	MaxLineLength int `yaml:"max_line_length"`
	// AckTimeout is how long the sender waits for an acknowledgment.
	AckTimeout time.Duration `yaml:"ack_timeout"`
	// MetricsAddress enables the Prometheus endpoint when set.
	MetricsAddress string `yaml:"metrics_address,omitempty"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default settings file name.
	DefaultConfigFilename = "alert-node.yaml"

	// DefaultBaudRate is the reference serial speed.
	DefaultBaudRate = 115200

	// DefaultPollInterval is the serial read timeout of one poll.
	DefaultPollInterval = 50 * time.Millisecond

	// DefaultMaxLineLength is large enough for any sane command.
	DefaultMaxLineLength = 256

	// DefaultAckTimeout covers a full default cycle plus transport slack.
	DefaultAckTimeout = 10 * time.Second

	// DefaultLogLevel is used when log_level is empty.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the permission of saved settings files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errDeviceRequired is returned when no serial device is configured.
	errDeviceRequired = errors.New("serial device must be provided")
	// errBaudRateNotPositive is returned for a zero or negative baud rate.
	errBaudRateNotPositive = errors.New("baud rate must be positive")
	// errUnknownLogLevel is returned for an unrecognized log level.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Option adjusts a loaded Config before it is validated.
type Option func(*Config)

// WithDevice overrides the serial device when device is not empty.
func WithDevice(device string) Option {
	return func(c *Config) {
		if device != "" {
			c.Device = device
		}
	}
}

// Default returns a Config with every default applied and no device.
func Default() *Config {
	settings := alert.DefaultSettings()

	return &Config{
		BaudRate:      DefaultBaudRate,
		AlertPin:      settings.Pin,
		AlertDuration: settings.Duration,
		TogglePeriod:  settings.TogglePeriod,
		PollInterval:  DefaultPollInterval,
		MaxLineLength: DefaultMaxLineLength,
		AckTimeout:    DefaultAckTimeout,
		LogLevel:      DefaultLogLevel,
	}
}

// Load reads configuration from path, applies options and validates the result.
// A missing file at the default location yields the defaults, so a node can
// run with a single --device flag.
func Load(path string, opts ...Option) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	cfg := Default()

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultConfigFilename:
		// Keep defaults.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills zero values with defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Device == "" {
		return errDeviceRequired
	}

	if cfg.BaudRate < 0 {
		return fmt.Errorf("%w: %d", errBaudRateNotPositive, cfg.BaudRate)
	}

	applyDefaults(cfg)

	if err := cfg.AlertSettings().Validate(); err != nil {
		return fmt.Errorf("invalid alert settings: %w", err)
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}

	if cfg.MetricsAddress == "" {
		return nil
	}

	if _, _, err := net.SplitHostPort(cfg.MetricsAddress); err != nil {
		return fmt.Errorf("invalid metrics address: %w", err)
	}

	return nil
}

// AlertSettings returns the alert cycle part of the configuration.
func (c *Config) AlertSettings() alert.Settings {
	return alert.Settings{
		Pin:          c.AlertPin,
		Duration:     c.AlertDuration,
		TogglePeriod: c.TogglePeriod,
	}
}

// applyDefaults fills optional fields left at their zero value.
// Negative durations are kept so that validation can reject them.
func applyDefaults(cfg *Config) {
	defaults := Default()

	if cfg.BaudRate == 0 {
		cfg.BaudRate = defaults.BaudRate
	}

	if cfg.AlertPin == "" {
		cfg.AlertPin = defaults.AlertPin
	}

	if cfg.AlertDuration == 0 {
		cfg.AlertDuration = defaults.AlertDuration
	}

	if cfg.TogglePeriod == 0 {
		cfg.TogglePeriod = defaults.TogglePeriod
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaults.PollInterval
	}

	if cfg.MaxLineLength <= 0 {
		cfg.MaxLineLength = defaults.MaxLineLength
	}

	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = defaults.AckTimeout
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
}
