package minimax

import (
	"errors"
	"fmt"
)

// ConfigurationError is returned when the rules or arguments given to
// [Search] cannot be searched with. It is returned before any search work.
type ConfigurationError struct {
	// Capability names the missing rules capability, if that's the cause.
	Capability string
	Reason     string
}

func missingCapability(name string) *ConfigurationError {
	return &ConfigurationError{
		Capability: name,
		Reason:     fmt.Sprintf("rules must implement all required capabilities, %q is not implemented", name),
	}
}

func (e *ConfigurationError) Error() string {
	return "minimax: " + e.Reason
}

// ErrNoSuccessors is matched by every [NoSuccessorsError].
var ErrNoSuccessors = errors.New("minimax: no successor states for a non-terminal state")

// NoSuccessorsError is returned when the rules report a state as
// non-terminal but yield no children for it. It means the rules are wrong.
type NoSuccessorsError[S any] struct {
	State S
	Rules any
}

func (e *NoSuccessorsError[S]) Error() string {
	return fmt.Sprintf("%v (state %v)", ErrNoSuccessors, e.State)
}

// Is reports whether target is [ErrNoSuccessors].
func (e *NoSuccessorsError[S]) Is(target error) bool {
	return target == ErrNoSuccessors
}
