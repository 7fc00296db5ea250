package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alert-node/internal/domain/alert"
)

// TestValidate checks required fields and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)

	// Missing device.
	require.ErrorIs(t, Validate(new(Config)), errDeviceRequired)

	// Bad log level.
	cfg := &Config{Device: "/dev/ttyACM0", LogLevel: "loud"}
	require.ErrorIs(t, Validate(cfg), errUnknownLogLevel)

	// Negative duration is rejected, not replaced.
	cfg = &Config{Device: "/dev/ttyACM0", AlertDuration: -time.Second}
	require.ErrorIs(t, Validate(cfg), alert.ErrDurationNotPositive)

	// Bad metrics address.
	cfg = &Config{Device: "/dev/ttyACM0", MetricsAddress: "9090"}
	require.Error(t, Validate(cfg))

	// Okay with only a device; defaults are filled in.
	cfg = &Config{Device: "/dev/ttyACM0", MetricsAddress: ":9090"}
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultBaudRate, cfg.BaudRate)
	require.Equal(t, alert.DefaultSettings(), cfg.AlertSettings())
	require.Equal(t, DefaultPollInterval, cfg.PollInterval)
	require.Equal(t, DefaultMaxLineLength, cfg.MaxLineLength)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := Default()
	cfg.Device = "/dev/ttyUSB1"
	cfg.AlertPin = "GPIO17"
	cfg.AlertDuration = 2 * time.Second

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoadPartialFile verifies that omitted keys keep their defaults.
func TestLoadPartialFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	contents := "device: /dev/ttyAMA0\ntoggle_period: 100ms\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), DefaultFilePermissions))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyAMA0", cfg.Device)
	require.Equal(t, 100*time.Millisecond, cfg.TogglePeriod)
	require.Equal(t, alert.DefaultDuration, cfg.AlertDuration)
	require.Equal(t, alert.DefaultPin, cfg.AlertPin)
}

// TestLoadOptions checks that WithDevice overrides the file and empty values are ignored.
func TestLoadOptions(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("device: /dev/ttyS0\n"), DefaultFilePermissions))

	cfg, err := Load(path, WithDevice("/dev/ttyACM3"))
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyACM3", cfg.Device)

	cfg, err = Load(path, WithDevice(""))
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyS0", cfg.Device)
}

// TestLoadMissingFile distinguishes an explicit path from the default one.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
