package schedule

import (
	"errors"
	"fmt"
)

// ErrStructural is wrapped by every local pre-check failure. Such failures
// are detected before any remote call is made.
var ErrStructural = errors.New("structural violation")

// Structural errors.
var (
	ErrCapacityExceeded = fmt.Errorf("%w: trip task capacity exceeded", ErrStructural)
	ErrLocked           = fmt.Errorf("%w: trip is full-load locked", ErrStructural)
	ErrVehicleNotFound  = fmt.Errorf("%w: vehicle not found", ErrStructural)
	ErrTripNotFound     = fmt.Errorf("%w: trip not found", ErrStructural)
	ErrTaskNotFound     = fmt.Errorf("%w: task not found", ErrStructural)
	ErrInvalidTimeRange = fmt.Errorf("%w: end before start", ErrStructural)
	ErrDuplicateID      = fmt.Errorf("%w: duplicate id", ErrStructural)
	ErrInvalidDraft     = fmt.Errorf("%w: invalid draft", ErrStructural)
)

// IsNotFound reports whether err signals a missing vehicle, trip or task.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrVehicleNotFound) || errors.Is(err, ErrTripNotFound) || errors.Is(err, ErrTaskNotFound)
}
