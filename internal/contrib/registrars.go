package contrib

// ToolRegistrar exposes tools to MCP clients.
type ToolRegistrar interface {
	RegisterTool(h ToolHandler, name, description string, tags []string, protect bool) error
}

// PromptRegistrar exposes prompts to MCP clients.
type PromptRegistrar interface {
	RegisterPrompt(h PromptHandler, name, title, description string, tags []string, protect bool) error
}

// RouteRegistrar mounts REST APIs. routeBase is relative to the API prefix,
// e.g. "/extensions/acme/reports". An empty permission means the route is
// open.
type RouteRegistrar interface {
	RegisterRoute(api API, routeBase, permission string) error
}

// AuthGate wraps protected handlers. Wrappers keep the call signature and
// return the wrapped handler's errors unchanged.
type AuthGate interface {
	WrapTool(h ToolHandler) ToolHandler
	WrapPrompt(h PromptHandler) PromptHandler
}

// Registrars is the set of concrete implementations the host wires in.
type Registrars struct {
	Tools   ToolRegistrar
	Prompts PromptRegistrar
	Routes  RouteRegistrar
	Gate    AuthGate
}

// The following are optional and used to withdraw a partially registered
// extension.

type toolUnregisterer interface{ UnregisterTool(name string) error }
type promptUnregisterer interface{ UnregisterPrompt(name string) error }
type routeUnregisterer interface{ UnregisterRoute(routeBase string) error }
