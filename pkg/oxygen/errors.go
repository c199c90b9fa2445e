package oxygen

import (
	"errors"
	"fmt"
)

// ErrInvalidFlowRate is matched (via errors.Is) by every validation failure.
var ErrInvalidFlowRate = errors.New("invalid flow rate")

// InvalidFlowRateError describes why a flow rate was rejected.
type InvalidFlowRateError struct {
	// Input is the rejected value as the caller supplied it.
	Input string
	// Reason is a short human-readable explanation.
	Reason string
}

func (e *InvalidFlowRateError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidFlowRate, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", ErrInvalidFlowRate, e.Input, e.Reason)
}

// Is reports whether target is ErrInvalidFlowRate.
func (e *InvalidFlowRateError) Is(target error) bool {
	return target == ErrInvalidFlowRate
}

func invalid(input, format string, args ...any) error {
	return &InvalidFlowRateError{Input: input, Reason: fmt.Sprintf(format, args...)}
}
