package manifest

import (
	"fmt"

	"go.yaml.in/yaml/v3"
)

// Manifest is the parsed form of an extension's manifest.json.
type Manifest struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Version     string   `yaml:"version" json:"version"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Author      string   `yaml:"author,omitempty" json:"author,omitempty"`
	HostVersion string   `yaml:"hostVersion,omitempty" json:"hostVersion,omitempty"`
	Backend     *Backend `yaml:"backend,omitempty" json:"backend,omitempty"`
}

// Backend describes the server-side half of an extension.
type Backend struct {
	// EntryPoints are the module paths imported, in order, when the
	// extension loads.
	EntryPoints   []string      `yaml:"entryPoints" json:"entryPoints"`
	Contributions Contributions `yaml:"contributions" json:"contributions"`
}

// Contributions lists what the extension is allowed to register.
type Contributions struct {
	MCPTools   []ContributionRef `yaml:"mcpTools,omitempty" json:"mcpTools,omitempty"`
	MCPPrompts []ContributionRef `yaml:"mcpPrompts,omitempty" json:"mcpPrompts,omitempty"`
	RestAPIs   []ContributionRef `yaml:"restApis,omitempty" json:"restApis,omitempty"`
}

// ContributionRef declares one contribution. In YAML and JSON it is either
// an object with an id or just the id as a string.
type ContributionRef struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name,omitempty" json:"name,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (r *ContributionRef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		r.ID = node.Value
		return nil
	case yaml.MappingNode:
		type plain ContributionRef
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		*r = ContributionRef(p)
		return nil
	default:
		return fmt.Errorf("line %d: contribution must be a string or an object", node.Line)
	}
}

// EntryPoints returns the backend entry points, or nil when the extension
// has no backend.
func (m *Manifest) EntryPoints() []string {
	if m.Backend == nil {
		return nil
	}
	return m.Backend.EntryPoints
}
