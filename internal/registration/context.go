package registration

import (
	"errors"
	"fmt"
	"sync"
)

// Context is the registration authority shared by the decorators and the
// extension manager.
type Context struct {
	mu       sync.Mutex
	mode     Mode
	current  string
	inScope  bool
	pending  map[string][]PendingContribution
	attached []Metadata
	index    map[attachKey]int
}

type attachKey struct {
	kind   Kind
	origin string
}

// New returns a Context in host mode with no active extension.
func New() *Context {
	return &Context{
		mode:    ModeHost,
		pending: make(map[string][]PendingContribution),
		index:   make(map[attachKey]int),
	}
}

// SetMode switches the mode for every decorator invoked afterwards.
func (c *Context) SetMode(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
}

// Mode returns the current mode.
func (c *Context) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Context) IsHostMode() bool      { return c.Mode() == ModeHost }
func (c *Context) IsExtensionMode() bool { return c.Mode() == ModeExtension }
func (c *Context) IsBuildMode() bool     { return c.Mode() == ModeBuild }

// CurrentExtension returns the id of the extension being loaded.
func (c *Context) CurrentExtension() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.inScope
}

// EnterExtension switches to extension mode for id and starts an empty
// pending buffer for it. The returned exit func restores the mode and
// extension id that were active before the call; it is safe to call more
// than once. Scopes do not nest.
func (c *Context) EnterExtension(id string) (exit func(), err error) {
	if id == "" {
		return nil, errors.New("registration: extension id is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inScope {
		return nil, fmt.Errorf("%w: %q is still loading, cannot enter %q", ErrNestedScope, c.current, id)
	}

	prevMode, prevID, prevScope := c.mode, c.current, c.inScope
	c.mode = ModeExtension
	c.current = id
	c.inScope = true
	c.pending[id] = []PendingContribution{}

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.mode = prevMode
			c.current = prevID
			c.inScope = prevScope
		})
	}, nil
}

// WithExtension runs fn inside an extension scope for id. The previous mode
// is restored when fn returns, fails or panics.
func (c *Context) WithExtension(id string, fn func() error) error {
	exit, err := c.EnterExtension(id)
	if err != nil {
		return err
	}
	defer exit()
	return fn()
}

// AddPending appends a contribution to the active extension's buffer.
func (c *Context) AddPending(payload any, md Metadata, kind Kind) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.inScope {
		name := ""
		if md != nil {
			name = md.ContributionName()
		}
		return &NoActiveExtensionError{Kind: kind, Contribution: name}
	}

	c.pending[c.current] = append(c.pending[c.current], PendingContribution{
		Payload:  payload,
		Metadata: md,
		Kind:     kind,
	})
	return nil
}

// PendingFor returns a snapshot of the buffer for id in insertion order.
func (c *Context) PendingFor(id string) []PendingContribution {
	c.mu.Lock()
	defer c.mu.Unlock()

	buf, ok := c.pending[id]
	if !ok {
		return nil
	}
	out := make([]PendingContribution, len(buf))
	copy(out, buf)
	return out
}

// HasPending reports whether a buffer exists for id, even an empty one.
func (c *Context) HasPending(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[id]
	return ok
}

// ClearPending drops the buffer for id. Clearing an absent buffer is a no-op.
func (c *Context) ClearPending(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}

// Attach records metadata against its symbol. Decorating the same symbol
// twice as the same kind replaces the earlier record.
func (c *Context) Attach(md Metadata) {
	if md == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := attachKey{kind: md.Kind(), origin: md.Origin()}
	if i, ok := c.index[key]; ok {
		c.attached[i] = md
		return
	}
	c.index[key] = len(c.attached)
	c.attached = append(c.attached, md)
}

// Attached returns every metadata record in attachment order.
func (c *Context) Attached() []Metadata {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Metadata, len(c.attached))
	copy(out, c.attached)
	return out
}

// AttachedFor returns the metadata attached to origin as kind.
func (c *Context) AttachedFor(kind Kind, origin string) (Metadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[attachKey{kind: kind, origin: origin}]
	if !ok {
		return nil, false
	}
	return c.attached[i], true
}

// Reset returns the Context to its initial host-mode state.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeHost
	c.current = ""
	c.inScope = false
	c.pending = make(map[string][]PendingContribution)
	c.attached = nil
	c.index = make(map[attachKey]int)
}
