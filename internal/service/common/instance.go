//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another process runs the same executable.
var ErrAlreadyRunning = errors.New("another instance is already running")

// processLister returns the running processes.
type processLister func() ([]ps.Process, error)

// EnsureSingleInstance fails when a process other than the current one runs
// an executable with the same name.
func EnsureSingleInstance() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("detect executable: %w", err)
	}

	return ensureSingleInstance(ps.Processes, filepath.Base(executable), os.Getpid())
}

func ensureSingleInstance(list processLister, executable string, selfPID int) error {
	processList, err := list()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	for _, process := range processList {
		if process.Pid() == selfPID {
			continue
		}

		if process.Executable() != executable {
			continue
		}

		return fmt.Errorf("%w: %s (pid %d)", ErrAlreadyRunning, executable, process.Pid())
	}

	return nil
}
