package mawaqit

import (
	"errors"
	"fmt"
)

// ScheduleLookupError reports that the fixed schedule has no usable entry for
// the requested date. It is fatal for the run; nothing is installed.
type ScheduleLookupError struct {
	Month  int // 1-12
	Day    int
	Reason string
}

func (e *ScheduleLookupError) Error() string {
	return fmt.Sprintf("schedule lookup %02d-%02d: %s", e.Month, e.Day, e.Reason)
}

// IsScheduleLookupError reports whether err is (or wraps) a *ScheduleLookupError.
func IsScheduleLookupError(err error) bool {
	var se *ScheduleLookupError
	return errors.As(err, &se)
}
