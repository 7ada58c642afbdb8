package extension

import (
	"errors"
	"fmt"

	"github.com/agentx-labs/exthost/internal/registration"
)

// ErrEntryPointNotFound is returned by an Importer that cannot resolve an
// entry point.
var ErrEntryPointNotFound = errors.New("entry point not found")

// ErrAlreadyLoaded is returned when an extension id is loaded twice.
var ErrAlreadyLoaded = errors.New("extension already loaded")

// ContributionValidationError is returned when an extension registers a
// contribution its manifest does not declare. Nothing from the extension is
// registered.
type ContributionValidationError struct {
	ExtensionID    string
	ContributionID string
	Kind           registration.Kind
}

func (e *ContributionValidationError) Error() string {
	return fmt.Sprintf("extension %s: %s %q is not declared in its manifest; add it to backend.contributions.%s",
		e.ExtensionID, e.Kind.Label(), e.ContributionID, e.Kind.ManifestKey())
}

// ImportError is returned when an entry point cannot be resolved, returns
// an error or panics.
type ImportError struct {
	ExtensionID string
	EntryPoint  string
	Err         error
	// Panic and Stack are set when the entry point panicked.
	Panic any
	Stack []byte
}

func (e *ImportError) Error() string {
	if e.EntryPoint == "" {
		return fmt.Sprintf("extension %s: installing backend: %v", e.ExtensionID, e.Err)
	}
	if e.Panic != nil {
		return fmt.Sprintf("extension %s: entry point %s panicked: %v", e.ExtensionID, e.EntryPoint, e.Panic)
	}
	return fmt.Sprintf("extension %s: importing %s: %v", e.ExtensionID, e.EntryPoint, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }
