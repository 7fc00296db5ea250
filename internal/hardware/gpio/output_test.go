package gpio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestOpen_UnknownPin reports a missing pin by name.
func TestOpen_UnknownPin(t *testing.T) {
	t.Parallel()

	_, err := Open("NO_SUCH_PIN")
	if err != nil && !errors.Is(err, ErrPinNotFound) {
		t.Skipf("host drivers unavailable: %v", err)
	}

	require.ErrorIs(t, err, ErrPinNotFound)
}
