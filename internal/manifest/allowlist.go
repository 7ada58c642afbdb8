package manifest

import (
	"github.com/agentx-labs/exthost/internal/registration"
)

// Allowlists holds the contribution ids a manifest declares, per kind.
// Matching is exact and case-sensitive.
type Allowlists struct {
	Tools    map[string]struct{}
	Prompts  map[string]struct{}
	RestAPIs map[string]struct{}
}

// BuildAllowlists collects the declared ids. A manifest without a backend
// yields three empty sets.
func BuildAllowlists(m *Manifest) Allowlists {
	a := Allowlists{
		Tools:    map[string]struct{}{},
		Prompts:  map[string]struct{}{},
		RestAPIs: map[string]struct{}{},
	}
	if m == nil || m.Backend == nil {
		return a
	}
	add := func(set map[string]struct{}, refs []ContributionRef) {
		for _, r := range refs {
			set[r.ID] = struct{}{}
		}
	}
	add(a.Tools, m.Backend.Contributions.MCPTools)
	add(a.Prompts, m.Backend.Contributions.MCPPrompts)
	add(a.RestAPIs, m.Backend.Contributions.RestAPIs)
	return a
}

// For returns the set for kind, or nil for an unknown kind.
func (a Allowlists) For(kind registration.Kind) map[string]struct{} {
	switch kind {
	case registration.KindTool:
		return a.Tools
	case registration.KindPrompt:
		return a.Prompts
	case registration.KindRestAPI:
		return a.RestAPIs
	default:
		return nil
	}
}

// Allows reports whether id is declared for kind.
func (a Allowlists) Allows(kind registration.Kind, id string) bool {
	_, ok := a.For(kind)[id]
	return ok
}
