package contrib

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/agentx-labs/exthost/internal/registration"
)

// Decorators turns handlers into contributions. The zero value is not
// usable; call New.
type Decorators struct {
	ctx    *registration.Context
	logger *slog.Logger

	mu   sync.RWMutex
	regs Registrars
}

// New returns decorators in their stub state. Build and extension mode work
// immediately; host mode needs Wire.
func New(ctx *registration.Context, logger *slog.Logger) *Decorators {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decorators{ctx: ctx, logger: logger}
}

// Wire installs the concrete registrars. Calling it again replaces them.
func (d *Decorators) Wire(r Registrars) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.regs = r
}

// Context returns the registration context the decorators consult.
func (d *Decorators) Context() *registration.Context { return d.ctx }

func (d *Decorators) registrars() Registrars {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.regs
}

// Tool declares h as an MCP tool.
func (d *Decorators) Tool(h ToolHandler, opts ...ToolOption) (ToolHandler, *registration.ToolMetadata, error) {
	if h == nil {
		return nil, nil, errors.New("contrib: tool handler is nil")
	}
	cfg := toolConfig{protect: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	md := toolMetadata(SymbolOf(h), cfg)
	d.ctx.Attach(md)

	switch d.ctx.Mode() {
	case registration.ModeBuild:
		return h, md, nil
	case registration.ModeExtension:
		return h, md, d.ctx.AddPending(h, md, registration.KindTool)
	}

	wrapped, err := d.registerTool(h, md, md.Name)
	if err != nil {
		return h, md, err
	}
	return wrapped, md, nil
}

// Prompt declares h as an MCP prompt.
func (d *Decorators) Prompt(h PromptHandler, opts ...PromptOption) (PromptHandler, *registration.PromptMetadata, error) {
	if h == nil {
		return nil, nil, errors.New("contrib: prompt handler is nil")
	}
	cfg := promptConfig{protect: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	md := promptMetadata(SymbolOf(h), cfg)
	d.ctx.Attach(md)

	switch d.ctx.Mode() {
	case registration.ModeBuild:
		return h, md, nil
	case registration.ModeExtension:
		return h, md, d.ctx.AddPending(h, md, registration.KindPrompt)
	}

	wrapped, err := d.registerPrompt(h, md, md.Name)
	if err != nil {
		return h, md, err
	}
	return wrapped, md, nil
}

// RestAPI declares api as a REST API. In host mode it is mounted under
// /extensions{basePath}; extensions get /extensions/{extID}{basePath}.
func (d *Decorators) RestAPI(api API, opts ...RestAPIOption) (API, *registration.RestAPIMetadata, error) {
	if api == nil {
		return nil, nil, errors.New("contrib: REST API is nil")
	}
	var cfg apiConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	md := restAPIMetadata(SymbolOf(api), cfg)
	d.ctx.Attach(md)

	switch d.ctx.Mode() {
	case registration.ModeBuild:
		return api, md, nil
	case registration.ModeExtension:
		return api, md, d.ctx.AddPending(api, md, registration.KindRestAPI)
	}

	if err := d.registerRoute(api, md, "/extensions"+md.BasePath); err != nil {
		return api, md, err
	}
	return api, md, nil
}

// HostAPI mounts a host-owned API at /extensions{basePath} without
// producing metadata. It is a no-op in build mode.
func (d *Decorators) HostAPI(api API, basePath string) error {
	if api == nil {
		return errors.New("contrib: REST API is nil")
	}
	switch d.ctx.Mode() {
	case registration.ModeBuild:
		return nil
	case registration.ModeExtension:
		return ErrHostAPIInExtension
	}

	routes := d.registrars().Routes
	if routes == nil {
		return &UninitializedRegistrationError{Kind: registration.KindRestAPI}
	}
	routeBase := "/extensions" + normalizeBasePath(basePath)
	if err := routes.RegisterRoute(api, routeBase, ""); err != nil {
		return fmt.Errorf("registering host API %s: %w", routeBase, err)
	}
	d.logger.Info("registered host REST API", "route", routeBase)
	return nil
}

// Activation records what a pending contribution was registered as.
type Activation struct {
	Kind registration.Kind
	// Name is the namespaced tool or prompt name, or the route base of a
	// REST API.
	Name    string
	Payload any
}

// Activate registers a validated contribution on behalf of extID. Tool and
// prompt names are namespaced as "{extID}.{name}".
func (d *Decorators) Activate(extID string, pc registration.PendingContribution) (Activation, error) {
	switch pc.Kind {
	case registration.KindTool:
		h, hok := pc.Payload.(ToolHandler)
		md, mok := pc.Metadata.(*registration.ToolMetadata)
		if !hok || !mok {
			return Activation{}, mismatch(pc)
		}
		name := extID + "." + md.Name
		wrapped, err := d.registerTool(h, md, name)
		if err != nil {
			return Activation{}, err
		}
		return Activation{Kind: pc.Kind, Name: name, Payload: wrapped}, nil

	case registration.KindPrompt:
		h, hok := pc.Payload.(PromptHandler)
		md, mok := pc.Metadata.(*registration.PromptMetadata)
		if !hok || !mok {
			return Activation{}, mismatch(pc)
		}
		name := extID + "." + md.Name
		wrapped, err := d.registerPrompt(h, md, name)
		if err != nil {
			return Activation{}, err
		}
		return Activation{Kind: pc.Kind, Name: name, Payload: wrapped}, nil

	case registration.KindRestAPI:
		api, aok := pc.Payload.(API)
		md, mok := pc.Metadata.(*registration.RestAPIMetadata)
		if !aok || !mok {
			return Activation{}, mismatch(pc)
		}
		routeBase := "/extensions/" + extID + md.BasePath
		if err := d.registerRoute(api, md, routeBase); err != nil {
			return Activation{}, err
		}
		return Activation{Kind: pc.Kind, Name: routeBase, Payload: api}, nil
	}
	return Activation{}, fmt.Errorf("contrib: unknown contribution kind %d", int(pc.Kind))
}

// Deactivate withdraws an activation when the registrar supports it.
func (d *Decorators) Deactivate(a Activation) error {
	regs := d.registrars()
	switch a.Kind {
	case registration.KindTool:
		if u, ok := regs.Tools.(toolUnregisterer); ok {
			return u.UnregisterTool(a.Name)
		}
	case registration.KindPrompt:
		if u, ok := regs.Prompts.(promptUnregisterer); ok {
			return u.UnregisterPrompt(a.Name)
		}
	case registration.KindRestAPI:
		if u, ok := regs.Routes.(routeUnregisterer); ok {
			return u.UnregisterRoute(a.Name)
		}
	default:
		return fmt.Errorf("contrib: unknown contribution kind %d", int(a.Kind))
	}
	return nil
}

func (d *Decorators) registerTool(h ToolHandler, md *registration.ToolMetadata, name string) (ToolHandler, error) {
	regs := d.registrars()
	if regs.Tools == nil {
		return nil, &UninitializedRegistrationError{Kind: registration.KindTool}
	}
	if md.Protect {
		if regs.Gate == nil {
			return nil, &UninitializedRegistrationError{Kind: registration.KindTool, Component: "auth gate"}
		}
		h = regs.Gate.WrapTool(h)
	}
	if err := regs.Tools.RegisterTool(h, name, md.Description, md.Tags, md.Protect); err != nil {
		return nil, fmt.Errorf("registering tool %s: %w", name, err)
	}
	d.logger.Info("registered MCP tool", "name", name, "access", access(md.Protect))
	return h, nil
}

func (d *Decorators) registerPrompt(h PromptHandler, md *registration.PromptMetadata, name string) (PromptHandler, error) {
	regs := d.registrars()
	if regs.Prompts == nil {
		return nil, &UninitializedRegistrationError{Kind: registration.KindPrompt}
	}
	if md.Protect {
		if regs.Gate == nil {
			return nil, &UninitializedRegistrationError{Kind: registration.KindPrompt, Component: "auth gate"}
		}
		h = regs.Gate.WrapPrompt(h)
	}
	if err := regs.Prompts.RegisterPrompt(h, name, md.Title, md.Description, md.Tags, md.Protect); err != nil {
		return nil, fmt.Errorf("registering prompt %s: %w", name, err)
	}
	d.logger.Info("registered MCP prompt", "name", name, "access", access(md.Protect))
	return h, nil
}

func (d *Decorators) registerRoute(api API, md *registration.RestAPIMetadata, routeBase string) error {
	routes := d.registrars().Routes
	if routes == nil {
		return &UninitializedRegistrationError{Kind: registration.KindRestAPI}
	}
	if err := routes.RegisterRoute(api, routeBase, md.PermissionName); err != nil {
		return fmt.Errorf("registering REST API %s: %w", routeBase, err)
	}
	d.logger.Info("registered REST API", "id", md.ID, "route", routeBase, "permission", md.PermissionName)
	return nil
}

func access(protect bool) string {
	if protect {
		return "protected"
	}
	return "public"
}

func mismatch(pc registration.PendingContribution) error {
	return fmt.Errorf("contrib: pending %s has payload %T and metadata %T", pc.Kind, pc.Payload, pc.Metadata)
}
