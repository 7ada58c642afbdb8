package registration

import "fmt"

// Kind discriminates the three contribution variants.
type Kind int

const (
	KindTool Kind = iota + 1
	KindPrompt
	KindRestAPI
)

// Kinds lists every contribution kind in display order.
var Kinds = []Kind{KindTool, KindPrompt, KindRestAPI}

// String returns the decorator-facing name: "tool", "prompt" or "restApi".
func (k Kind) String() string {
	switch k {
	case KindTool:
		return "tool"
	case KindPrompt:
		return "prompt"
	case KindRestAPI:
		return "restApi"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ManifestKey returns the name of the manifest list that declares
// contributions of this kind.
func (k Kind) ManifestKey() string {
	switch k {
	case KindTool:
		return "mcpTools"
	case KindPrompt:
		return "mcpPrompts"
	case KindRestAPI:
		return "restApis"
	default:
		return ""
	}
}

// Label is the human-readable form used in error messages.
func (k Kind) Label() string {
	switch k {
	case KindTool:
		return "MCP tool"
	case KindPrompt:
		return "MCP prompt"
	case KindRestAPI:
		return "REST API"
	default:
		return k.String()
	}
}

// ParseKind accepts both the decorator name ("tool") and the manifest list
// name ("mcpTools").
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if s == k.String() || s == k.ManifestKey() {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown contribution kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if k.ManifestKey() == "" {
		return nil, fmt.Errorf("cannot marshal unknown contribution kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
