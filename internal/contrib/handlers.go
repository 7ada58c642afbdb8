package contrib

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
)

// ToolHandler is the payload of a tool contribution.
type ToolHandler interface {
	HandleTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// ToolFunc adapts a plain function to ToolHandler.
type ToolFunc func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

func (f ToolFunc) HandleTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return f(ctx, req)
}

// PromptHandler is the payload of a prompt contribution.
type PromptHandler interface {
	HandlePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error)
}

// PromptFunc adapts a plain function to PromptHandler.
type PromptFunc func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error)

func (f PromptFunc) HandlePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return f(ctx, req)
}

// API is the payload of a REST API contribution. The router mounts it under
// its base path with the prefix stripped.
type API interface {
	http.Handler
}

// Documented is implemented by payloads that carry documentation. The first
// line of Doc is used when no description is given.
type Documented interface {
	Doc() string
}
