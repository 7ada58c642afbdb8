package contrib

import (
	"errors"
	"fmt"

	"github.com/agentx-labs/exthost/internal/registration"
)

// ErrHostAPIInExtension is returned by HostAPI while an extension is being
// loaded. Extensions contribute REST APIs through RestAPI.
var ErrHostAPIInExtension = errors.New("contrib: host API registration is not allowed from an extension")

// UninitializedRegistrationError is returned when a decorator needs a
// registrar that was never wired. It is a host startup bug.
type UninitializedRegistrationError struct {
	Kind registration.Kind
	// Component names the missing piece; empty means the registrar itself.
	Component string
}

func (e *UninitializedRegistrationError) Error() string {
	component := e.Component
	if component == "" {
		component = e.Kind.Label() + " registrar"
	}
	return fmt.Sprintf("contrib: %s decorator not initialized: %s must be wired during host startup", e.Kind, component)
}
