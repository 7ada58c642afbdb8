// Package acme is a sample extension. Importing it publishes its entry
// point; the host registers its contributions once manifest.json in this
// directory is discovered.
package acme

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/agentx-labs/exthost/internal/api"
	"github.com/agentx-labs/exthost/internal/contrib"
	"github.com/agentx-labs/exthost/internal/extension"
)

// EntryPoint is the path manifest.json lists under backend.entryPoints.
const EntryPoint = "github.com/agentx-labs/exthost/extensions/acme"

func init() {
	extension.Provide(EntryPoint, Register)
}

var reports = map[string]Report{
	"q1": {ID: "q1", Title: "Q1 revenue", Total: 1200},
	"q2": {ID: "q2", Title: "Q2 revenue", Total: 1850},
}

// Report is a canned quarterly report.
type Report struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Total int    `json:"total"`
}

// Register declares the extension's contributions.
func Register(d *contrib.Decorators) error {
	if _, _, err := d.Tool(contrib.ToolFunc(query),
		contrib.ToolID("query"),
		contrib.ToolDescription("Look up a report by id"),
		contrib.ToolTags("reports", "read"),
		contrib.ToolProtect(false),
	); err != nil {
		return err
	}
	if _, _, err := d.Tool(reportTool{},
		contrib.ToolID("report"),
		contrib.ToolTags("reports"),
	); err != nil {
		return err
	}
	if _, _, err := d.Prompt(contrib.PromptFunc(summarize),
		contrib.PromptID("summarize"),
		contrib.PromptTitle("Summarize a report"),
		contrib.PromptProtect(false),
	); err != nil {
		return err
	}
	_, _, err := d.RestAPI(ReportsAPI{},
		contrib.APIID("reports"),
		contrib.APIDescription("Read-only access to Acme reports"),
		contrib.APIPermissionName("reports.read"),
	)
	return err
}

func query(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	r, ok := reports[id]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown report %q", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %d", r.Title, r.Total)), nil
}

type reportTool struct{}

func (reportTool) Doc() string {
	return "Build a summary of every quarterly report."
}

func (reportTool) HandleTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	for _, id := range []string{"q1", "q2"} {
		r := reports[id]
		fmt.Fprintf(&b, "%s\t%d\n", r.Title, r.Total)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func summarize(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	id := req.Params.Arguments["id"]
	return mcp.NewGetPromptResult("Summarize a report", []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent("Summarize Acme report "+id+" in three sentences.")),
	}), nil
}

// ReportsAPI serves the reports over REST.
type ReportsAPI struct{}

func (ReportsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		out := make([]Report, 0, len(reports))
		for _, id := range []string{"q1", "q2"} {
			out = append(out, reports[id])
		}
		api.WriteJSON(w, http.StatusOK, out)
	})
	mux.HandleFunc("GET /{id}", func(w http.ResponseWriter, r *http.Request) {
		rep, ok := reports[r.PathValue("id")]
		if !ok {
			api.WriteNotFound(w, r, "report "+r.PathValue("id")+" not found")
			return
		}
		api.WriteJSON(w, http.StatusOK, rep)
	})
	mux.ServeHTTP(w, r)
}
