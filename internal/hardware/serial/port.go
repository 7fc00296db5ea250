package serial

import (
	"errors"
	"fmt"
	"io"
	"time"

	tarm "github.com/tarm/serial"
)

// Config holds serial port parameters.
type Config struct {
	// Device is the path of the serial device, e.g. /dev/ttyACM0.
	Device string
	// BaudRate is the line speed.
	BaudRate int
	// ReadTimeout bounds a single Read. On POSIX systems it is rounded to
	// tenths of a second with a minimum of 100ms.
	ReadTimeout time.Duration
}

var (
	// errDeviceRequired is returned when Config.Device is empty.
	errDeviceRequired = errors.New("serial device must be provided")
	// errNoReadTimeout is returned when ReadTimeout is not positive,
	// which would make every poll block until data arrives.
	errNoReadTimeout = errors.New("read timeout must be positive")
)

// Open opens the device as 8 data bits, no parity, 1 stop bit.
func Open(cfg Config) (*tarm.Port, error) {
	if cfg.Device == "" {
		return nil, errDeviceRequired
	}

	if cfg.ReadTimeout <= 0 {
		return nil, errNoReadTimeout
	}

	port, err := tarm.OpenPort(&tarm.Config{
		Name:        cfg.Device,
		Baud:        cfg.BaudRate,
		ReadTimeout: cfg.ReadTimeout,
		Size:        tarm.DefaultSize,
		Parity:      tarm.ParityNone,
		StopBits:    tarm.Stop1,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.Device, err)
	}

	return port, nil
}

// WriteLine writes text followed by a newline in a single Write.
func WriteLine(w io.Writer, text string) error {
	if _, err := io.WriteString(w, text+"\n"); err != nil {
		return fmt.Errorf("write line: %w", err)
	}

	return nil
}
