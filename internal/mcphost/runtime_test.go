package mcphost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentx-labs/exthost/internal/contrib"
)

func newRuntime() *Runtime {
	return New("exthost-test", "0.0.0", slog.New(slog.DiscardHandler))
}

// call sends a JSON-RPC request and returns the decoded response.
func call(t *testing.T, r *Runtime, method string, params any) map[string]any {
	t.Helper()
	p, err := json.Marshal(params)
	require.NoError(t, err)
	msg := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":%q,"params":%s}`, method, p)

	resp := r.Server().HandleMessage(context.Background(), []byte(msg))
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func echoTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("hello from " + req.Params.Name), nil
}

func TestRegisterTool_CallableAndListed(t *testing.T) {
	r := newRuntime()
	require.NoError(t, r.RegisterTool(contrib.ToolFunc(echoTool), "acme.echo", "", []string{"demo"}, false))

	out := call(t, r, "tools/list", map[string]any{})
	data, _ := json.Marshal(out["result"])
	assert.Contains(t, string(data), `"name":"acme.echo"`)
	assert.Contains(t, string(data), `"description":"Tool: acme.echo"`)

	out = call(t, r, "tools/call", map[string]any{"name": "acme.echo", "arguments": map[string]any{}})
	data, _ = json.Marshal(out["result"])
	assert.Contains(t, string(data), "hello from acme.echo")

	assert.Equal(t, []string{"acme.echo"}, r.Tools())
}

func TestRegisterTool_Duplicate(t *testing.T) {
	r := newRuntime()
	require.NoError(t, r.RegisterTool(contrib.ToolFunc(echoTool), "acme.echo", "Echo", nil, true))
	err := r.RegisterTool(contrib.ToolFunc(echoTool), "acme.echo", "Echo", nil, true)
	assert.True(t, errors.Is(err, ErrAlreadyRegistered))
}

func TestUnregisterTool(t *testing.T) {
	r := newRuntime()
	require.NoError(t, r.RegisterTool(contrib.ToolFunc(echoTool), "acme.echo", "Echo", nil, false))
	require.NoError(t, r.UnregisterTool("acme.echo"))
	require.NoError(t, r.UnregisterTool("acme.echo"))
	assert.Empty(t, r.Tools())

	// The name can be reused.
	require.NoError(t, r.RegisterTool(contrib.ToolFunc(echoTool), "acme.echo", "Echo", nil, false))
}

func TestRegisterPrompt(t *testing.T) {
	r := newRuntime()
	h := contrib.PromptFunc(func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return mcp.NewGetPromptResult("overview", []mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent("summarize "+req.Params.Name)),
		}), nil
	})
	require.NoError(t, r.RegisterPrompt(h, "acme.summarize", "Summarize", "", nil, false))

	out := call(t, r, "prompts/list", map[string]any{})
	data, _ := json.Marshal(out["result"])
	assert.Contains(t, string(data), `"description":"Prompt: Summarize"`)

	out = call(t, r, "prompts/get", map[string]any{"name": "acme.summarize"})
	data, _ = json.Marshal(out["result"])
	assert.Contains(t, string(data), "summarize acme.summarize")

	err := r.RegisterPrompt(h, "acme.summarize", "", "", nil, false)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	require.NoError(t, r.UnregisterPrompt("acme.summarize"))
	assert.Empty(t, r.Prompts())
}

func TestHandler(t *testing.T) {
	r := newRuntime()
	assert.NotNil(t, r.Handler(nil))
	assert.NotNil(t, r.Handler(func(ctx context.Context, _ *http.Request) context.Context { return ctx }))
}
