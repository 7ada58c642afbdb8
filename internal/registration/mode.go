package registration

import (
	"fmt"
	"strings"
)

// Mode selects how contribution decorators behave.
type Mode int

const (
	// ModeHost registers contributions immediately with the capability registrars.
	ModeHost Mode = iota
	// ModeExtension buffers contributions until the manager validates them.
	ModeExtension
	// ModeBuild only attaches metadata for offline discovery.
	ModeBuild
)

// String returns the lowercase name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeHost:
		return "host"
	case ModeExtension:
		return "extension"
	case ModeBuild:
		return "build"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode converts a mode name back into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "host":
		return ModeHost, nil
	case "extension":
		return ModeExtension, nil
	case "build":
		return ModeBuild, nil
	default:
		return 0, fmt.Errorf("unknown registration mode %q", s)
	}
}
