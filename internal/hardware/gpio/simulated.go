package gpio

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/alert-node/internal/domain/alert"
	"github.com/oshokin/alert-node/internal/logger"
)

// Transition is one observed write to a Simulated line.
type Transition struct {
	// At is the wall-clock time of the write.
	At time.Time
	// Level is the level written.
	Level alert.Level
}

// Simulated is an in-memory Output that records every write.
// It starts LOW.
type Simulated struct {
	// ctx carries the logger used to report writes.
	ctx context.Context //nolint:containedctx // Only used for logging.
	// name identifies the line in logs.
	name string

	// mu protects level and transitions.
	mu sync.Mutex
	// level is the last written level.
	level alert.Level
	// transitions is the full write history.
	transitions []Transition
}

// NewSimulated returns a Simulated line that logs writes at debug level.
func NewSimulated(ctx context.Context, name string) *Simulated {
	return &Simulated{
		ctx:  logger.WithKV(ctx, "pin", name, "simulated", true),
		name: name,
	}
}

// Set records level.
func (s *Simulated) Set(level alert.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.level = level
	s.transitions = append(s.transitions, Transition{At: time.Now(), Level: level})

	logger.DebugKV(s.ctx, "Output set", "level", level.String())

	return nil
}

// Name returns the configured name.
func (s *Simulated) Name() string {
	return s.name
}

// Level returns the last written level.
func (s *Simulated) Level() alert.Level {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.level
}

// Transitions returns a copy of the write history.
func (s *Simulated) Transitions() []Transition {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Transition(nil), s.transitions...)
}

// Pulses counts the HIGH writes in the history.
func (s *Simulated) Pulses() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pulses int

	for _, tr := range s.transitions {
		if tr.Level == alert.High {
			pulses++
		}
	}

	return pulses
}
