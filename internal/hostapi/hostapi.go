// Package hostapi registers the host's own contributions: a tool and a
// prompt describing the loaded extensions, and a read-only REST view of the
// contribution registry.
package hostapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/agentx-labs/exthost/internal/api"
	"github.com/agentx-labs/exthost/internal/contrib"
	"github.com/agentx-labs/exthost/internal/extension"
	"github.com/agentx-labs/exthost/internal/registration"
	"github.com/agentx-labs/exthost/internal/registry"
)

// RegistryBasePath is where the registry API is mounted, below
// /api/v1/extensions.
const RegistryBasePath = "/registry"

// Register declares the host contributions. d must be in host mode and
// wired.
func Register(d *contrib.Decorators, m *extension.Manager) error {
	if _, _, err := d.Tool(listExtensionsTool{m: m},
		contrib.ToolID("list_extensions"),
		contrib.ToolTags("host", "extensions"),
		contrib.ToolProtect(false),
	); err != nil {
		return err
	}
	if _, _, err := d.Prompt(overviewPrompt{m: m},
		contrib.PromptID("extension_overview"),
		contrib.PromptTitle("Extension overview"),
		contrib.PromptTags("host"),
	); err != nil {
		return err
	}
	return d.HostAPI(NewRegistryAPI(m), RegistryBasePath)
}

// ExtensionSummary is the JSON view of one extension.
type ExtensionSummary struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Version       string           `json:"version"`
	State         extension.State  `json:"state"`
	Contributions []registry.Entry `json:"contributions"`
}

func summarize(m *extension.Manager) []ExtensionSummary {
	exts := m.ListExtensions()
	out := make([]ExtensionSummary, 0, len(exts))
	for _, e := range exts {
		out = append(out, ExtensionSummary{
			ID:            e.ID,
			Name:          e.Name,
			Version:       e.Version,
			State:         m.Status(e.ID),
			Contributions: m.Registry().ForExtension(e.ID),
		})
	}
	return out
}

type listExtensionsTool struct{ m *extension.Manager }

func (listExtensionsTool) Doc() string {
	return "Lists loaded extensions with their state and registered contributions."
}

func (t listExtensionsTool) HandleTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(summarize(t.m))
	if err != nil {
		return nil, fmt.Errorf("encoding extensions: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

type overviewPrompt struct{ m *extension.Manager }

func (overviewPrompt) Doc() string {
	return "Summarizes the capabilities contributed by loaded extensions."
}

func (p overviewPrompt) HandlePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	var b strings.Builder
	b.WriteString("The following extensions are available:\n")
	for _, s := range summarize(p.m) {
		fmt.Fprintf(&b, "\n- %s (%s, %s)", s.Name, s.ID, s.State)
		for _, c := range s.Contributions {
			fmt.Fprintf(&b, "\n  - %s %s", c.Kind.Label(), c.Name)
			if d := description(c.Metadata); d != "" {
				fmt.Fprintf(&b, ": %s", d)
			}
		}
	}
	return mcp.NewGetPromptResult("Extension overview", []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(b.String())),
	}), nil
}

func description(md registration.Metadata) string {
	switch v := md.(type) {
	case *registration.ToolMetadata:
		return v.Description
	case *registration.PromptMetadata:
		return v.Description
	case *registration.RestAPIMetadata:
		return v.Description
	default:
		return ""
	}
}

// RegistryAPI serves the registry read-only:
//
//	GET /                      every contribution
//	GET /contributions/{kind}  contributions of one kind ("tool", "mcpTools", ...)
//	GET /extensions            extension summaries
//	GET /extensions/{id}       one extension summary
type RegistryAPI struct {
	m   *extension.Manager
	mux *http.ServeMux
}

// NewRegistryAPI returns the registry API for m.
func NewRegistryAPI(m *extension.Manager) *RegistryAPI {
	a := &RegistryAPI{m: m, mux: http.NewServeMux()}
	a.mux.HandleFunc("GET /{$}", a.handleAll)
	a.mux.HandleFunc("GET /contributions/{kind}", a.handleKind)
	a.mux.HandleFunc("GET /extensions", a.handleExtensions)
	a.mux.HandleFunc("GET /extensions/{id}", a.handleExtension)
	return a
}

func (a *RegistryAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) { a.mux.ServeHTTP(w, r) }

func (a *RegistryAPI) handleAll(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]any{"contributions": a.m.Registry().All()})
}

func (a *RegistryAPI) handleKind(w http.ResponseWriter, r *http.Request) {
	kind, err := registration.ParseKind(r.PathValue("kind"))
	if err != nil {
		api.WriteError(w, r, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"contributions": a.m.ListContributions(kind)})
}

func (a *RegistryAPI) handleExtensions(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]any{"extensions": summarize(a.m)})
}

func (a *RegistryAPI) handleExtension(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	for _, s := range summarize(a.m) {
		if s.ID == id {
			api.WriteJSON(w, http.StatusOK, s)
			return
		}
	}
	api.WriteNotFound(w, r, fmt.Sprintf("Extension %q is not loaded", id))
}
