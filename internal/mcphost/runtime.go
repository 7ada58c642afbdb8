// Package mcphost exposes registered tools and prompts through an MCP
// server.
package mcphost

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/agentx-labs/exthost/internal/contrib"
)

// ErrAlreadyRegistered is returned when a tool or prompt name is taken.
var ErrAlreadyRegistered = errors.New("mcphost: name already registered")

// Runtime implements contrib.ToolRegistrar and contrib.PromptRegistrar on
// top of an MCP server.
type Runtime struct {
	server *server.MCPServer
	logger *slog.Logger

	mu      sync.Mutex
	tools   map[string]struct{}
	prompts map[string]struct{}
}

// New creates a runtime whose server advertises tool and prompt
// capabilities and recovers from handler panics.
func New(name, version string, logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
	)
	return &Runtime{
		server:  s,
		logger:  logger,
		tools:   make(map[string]struct{}),
		prompts: make(map[string]struct{}),
	}
}

// Server returns the underlying MCP server.
func (r *Runtime) Server() *server.MCPServer { return r.server }

// RegisterTool adds h to the server as name. An empty description becomes
// "Tool: {name}".
func (r *Runtime) RegisterTool(h contrib.ToolHandler, name, description string, tags []string, protect bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; ok {
		return fmt.Errorf("tool %s: %w", name, ErrAlreadyRegistered)
	}
	if description == "" {
		description = "Tool: " + name
	}

	tool := mcp.NewTool(name, mcp.WithDescription(description))
	r.server.AddTool(tool, h.HandleTool)
	r.tools[name] = struct{}{}
	r.logger.Debug("added MCP tool", "name", name, "tags", tags, "protected", protect)
	return nil
}

// UnregisterTool removes name from the server.
func (r *Runtime) UnregisterTool(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; !ok {
		return nil
	}
	r.server.DeleteTools(name)
	delete(r.tools, name)
	return nil
}

// RegisterPrompt adds h to the server as name. An empty description becomes
// "Prompt: {title}", the title defaulting to name.
func (r *Runtime) RegisterPrompt(h contrib.PromptHandler, name, title, description string, tags []string, protect bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prompts[name]; ok {
		return fmt.Errorf("prompt %s: %w", name, ErrAlreadyRegistered)
	}
	if title == "" {
		title = name
	}
	if description == "" {
		description = "Prompt: " + title
	}

	prompt := mcp.NewPrompt(name, mcp.WithPromptDescription(description))
	r.server.AddPrompt(prompt, h.HandlePrompt)
	r.prompts[name] = struct{}{}
	r.logger.Debug("added MCP prompt", "name", name, "title", title, "tags", tags, "protected", protect)
	return nil
}

// UnregisterPrompt removes name from the server.
func (r *Runtime) UnregisterPrompt(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prompts[name]; !ok {
		return nil
	}
	r.server.DeletePrompts(name)
	delete(r.prompts, name)
	return nil
}

// Tools returns the registered tool names, sorted.
func (r *Runtime) Tools() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedKeys(r.tools)
}

// Prompts returns the registered prompt names, sorted.
func (r *Runtime) Prompts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedKeys(r.prompts)
}

// Handler serves the runtime over streamable HTTP. contextFunc, when set,
// derives each request's context, e.g. to attach the caller's principal.
func (r *Runtime) Handler(contextFunc server.HTTPContextFunc) http.Handler {
	var opts []server.StreamableHTTPOption
	if contextFunc != nil {
		opts = append(opts, server.WithHTTPContextFunc(contextFunc))
	}
	return server.NewStreamableHTTPServer(r.server, opts...)
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
