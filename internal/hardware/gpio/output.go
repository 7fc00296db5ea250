package gpio

import (
	"errors"
	"fmt"

	periph "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/oshokin/alert-node/internal/domain/alert"
)

// Output is a digital output line.
type Output interface {
	// Set drives the line to level.
	Set(level alert.Level) error
	// Name identifies the line in logs.
	Name() string
}

// ErrPinNotFound is returned when no registered pin has the requested name.
var ErrPinNotFound = errors.New("gpio pin not found")

// Pin is an Output backed by a periph.io GPIO pin.
type Pin struct {
	// pin is the underlying periph pin, already configured as output.
	pin periph.PinIO
}

// Open initializes the host drivers, looks the pin up by name (for example
// "GPIO8" or "8") and configures it as an output driven LOW.
func Open(name string) (*Pin, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initialize host drivers: %w", err)
	}

	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPinNotFound, name)
	}

	if err := p.Out(periph.Low); err != nil {
		return nil, fmt.Errorf("configure %s as output: %w", name, err)
	}

	return &Pin{pin: p}, nil
}

// Set drives the pin.
func (p *Pin) Set(level alert.Level) error {
	if err := p.pin.Out(periph.Level(level)); err != nil {
		return fmt.Errorf("set %s %s: %w", p.pin.Name(), level, err)
	}

	return nil
}

// Name returns the periph name of the pin.
func (p *Pin) Name() string {
	return p.pin.Name()
}

// Close leaves the pin LOW and halts it.
func (p *Pin) Close() error {
	if err := p.Set(alert.Low); err != nil {
		return err
	}

	return p.pin.Halt()
}
