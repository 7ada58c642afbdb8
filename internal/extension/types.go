package extension

import (
	"github.com/agentx-labs/exthost/internal/manifest"
)

// LoadedExtension is a discovered extension.
type LoadedExtension struct {
	ID         string
	Name       string
	Version    string
	Manifest   *manifest.Manifest
	SourcePath string
}

// New builds a LoadedExtension from its manifest.
func New(m *manifest.Manifest, sourcePath string) *LoadedExtension {
	return &LoadedExtension{
		ID:         m.ID,
		Name:       m.Name,
		Version:    m.Version,
		Manifest:   m,
		SourcePath: sourcePath,
	}
}

// Set is an ordered collection of extensions keyed by id.
type Set struct {
	order []string
	byID  map[string]*LoadedExtension
}

// NewSet returns a set holding exts in order. Later duplicates are dropped.
func NewSet(exts ...*LoadedExtension) *Set {
	s := &Set{byID: make(map[string]*LoadedExtension)}
	for _, ext := range exts {
		s.Add(ext)
	}
	return s
}

// Add appends ext and reports false when its id is already present.
func (s *Set) Add(ext *LoadedExtension) bool {
	if _, ok := s.byID[ext.ID]; ok {
		return false
	}
	s.byID[ext.ID] = ext
	s.order = append(s.order, ext.ID)
	return true
}

// Get returns the extension with id.
func (s *Set) Get(id string) (*LoadedExtension, bool) {
	ext, ok := s.byID[id]
	return ext, ok
}

// List returns the extensions in insertion order.
func (s *Set) List() []*LoadedExtension {
	out := make([]*LoadedExtension, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

func (s *Set) Len() int { return len(s.order) }

// State is where an extension is in its load lifecycle.
type State int

const (
	StateDiscovered State = iota
	StateLoading
	StateValidating
	StateRegistered
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDiscovered:
		return "discovered"
	case StateLoading:
		return "loading"
	case StateValidating:
		return "validating"
	case StateRegistered:
		return "registered"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
