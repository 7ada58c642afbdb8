package registration

import (
	"errors"
	"fmt"
)

// ErrNestedScope is returned when an extension scope is entered while
// another one is still active.
var ErrNestedScope = errors.New("registration: nested extension scope")

// NoActiveExtensionError is returned by AddPending when no extension scope
// is active. It points at a decorator or context usage bug.
type NoActiveExtensionError struct {
	Kind         Kind
	Contribution string
}

func (e *NoActiveExtensionError) Error() string {
	return fmt.Sprintf("registration: cannot buffer %s %q outside an extension scope", e.Kind, e.Contribution)
}
