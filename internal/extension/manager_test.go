package extension

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentx-labs/exthost/internal/contrib"
	"github.com/agentx-labs/exthost/internal/manifest"
	"github.com/agentx-labs/exthost/internal/registration"
	"github.com/agentx-labs/exthost/internal/router"
)

func queryTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("rows"), nil
}

func summarizePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return mcp.NewGetPromptResult("summary", nil), nil
}

type reportsAPI struct{}

func (reportsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {}

type fakeRegistrars struct {
	tools    map[string]bool
	prompts  map[string]bool
	routes   map[string]bool
	failTool string
	// panicRoute makes RegisterRoute panic for that base.
	panicRoute string
}

func newFakeRegistrars() *fakeRegistrars {
	return &fakeRegistrars{tools: map[string]bool{}, prompts: map[string]bool{}, routes: map[string]bool{}}
}

func (f *fakeRegistrars) RegisterTool(h contrib.ToolHandler, name, description string, tags []string, protect bool) error {
	if name == f.failTool {
		return fmt.Errorf("tool %s rejected", name)
	}
	f.tools[name] = true
	return nil
}

func (f *fakeRegistrars) UnregisterTool(name string) error {
	delete(f.tools, name)
	return nil
}

func (f *fakeRegistrars) RegisterPrompt(h contrib.PromptHandler, name, title, description string, tags []string, protect bool) error {
	f.prompts[name] = true
	return nil
}

func (f *fakeRegistrars) UnregisterPrompt(name string) error {
	delete(f.prompts, name)
	return nil
}

func (f *fakeRegistrars) RegisterRoute(api contrib.API, routeBase, permission string) error {
	if routeBase == f.panicRoute {
		panic("mux rejected " + routeBase)
	}
	f.routes[routeBase] = true
	return nil
}

func (f *fakeRegistrars) UnregisterRoute(routeBase string) error {
	delete(f.routes, routeBase)
	return nil
}

func (f *fakeRegistrars) WrapTool(h contrib.ToolHandler) contrib.ToolHandler       { return h }
func (f *fakeRegistrars) WrapPrompt(h contrib.PromptHandler) contrib.PromptHandler { return h }

type harness struct {
	manager *Manager
	regs    *fakeRegistrars
	ctx     *registration.Context
	logs    *bytes.Buffer
}

func newHarness(t *testing.T, entryPoints map[string]EntryPoint) *harness {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	regCtx := registration.New()
	d := contrib.New(regCtx, logger)
	regs := newFakeRegistrars()
	d.Wire(contrib.Registrars{Tools: regs, Prompts: regs, Routes: regs, Gate: regs})

	m := NewManager(Options{
		Decorators: d,
		Importer:   StaticImporter{EntryPoints: entryPoints},
		Logger:     logger,
	})
	return &harness{manager: m, regs: regs, ctx: regCtx, logs: logs}
}

func ext(id string, entryPoints []string, tools, prompts, apis []string) *LoadedExtension {
	refs := func(ids []string) []manifest.ContributionRef {
		var out []manifest.ContributionRef
		for _, id := range ids {
			out = append(out, manifest.ContributionRef{ID: id})
		}
		return out
	}
	return New(&manifest.Manifest{
		ID:      id,
		Name:    id,
		Version: "1.0.0",
		Backend: &manifest.Backend{
			EntryPoints: entryPoints,
			Contributions: manifest.Contributions{
				MCPTools:   refs(tools),
				MCPPrompts: refs(prompts),
				RestAPIs:   refs(apis),
			},
		},
	}, "/tmp/"+id)
}

func acmeEntryPoint(d *contrib.Decorators) error {
	if _, _, err := d.Tool(contrib.ToolFunc(queryTool), contrib.ToolName("query")); err != nil {
		return err
	}
	if _, _, err := d.Prompt(contrib.PromptFunc(summarizePrompt), contrib.PromptName("summarize")); err != nil {
		return err
	}
	_, _, err := d.RestAPI(reportsAPI{}, contrib.APIID("reports"))
	return err
}

func TestLoadOne_RegistersNamespacedContributions(t *testing.T) {
	h := newHarness(t, map[string]EntryPoint{"example.com/acme/tools": acmeEntryPoint})
	e := ext("acme", []string{"example.com/acme/tools"}, []string{"query"}, []string{"summarize"}, []string{"reports"})

	require.NoError(t, h.manager.LoadOne(context.Background(), e))

	assert.True(t, h.regs.tools["acme.query"])
	assert.True(t, h.regs.prompts["acme.summarize"])
	assert.True(t, h.regs.routes["/extensions/acme/reports"])

	entry, ok := h.manager.Contribution(registration.KindTool, "acme.query")
	require.True(t, ok)
	assert.Equal(t, "acme", entry.ExtensionID)
	api, ok := h.manager.Contribution(registration.KindRestAPI, "acme.reports")
	require.True(t, ok)
	assert.Equal(t, "/extensions/acme/reports", api.Route)

	assert.Equal(t, StateRegistered, h.manager.Status("acme"))
	assert.False(t, h.ctx.HasPending("acme"))
	assert.Equal(t, registration.ModeHost, h.ctx.Mode())
	_, inScope := h.ctx.CurrentExtension()
	assert.False(t, inScope)
}

func TestLoadOne_UndeclaredContributionRegistersNothing(t *testing.T) {
	entry := func(d *contrib.Decorators) error {
		if _, _, err := d.Tool(contrib.ToolFunc(queryTool), contrib.ToolName("a")); err != nil {
			return err
		}
		_, _, err := d.Tool(contrib.ToolFunc(queryTool), contrib.ToolName("b"))
		return err
	}
	h := newHarness(t, map[string]EntryPoint{"example.com/x": entry})
	e := ext("x", []string{"example.com/x"}, []string{"a"}, nil, nil)

	err := h.manager.LoadOne(context.Background(), e)

	var verr *ContributionValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "x", verr.ExtensionID)
	assert.Equal(t, "b", verr.ContributionID)
	assert.Equal(t, registration.KindTool, verr.Kind)
	assert.Contains(t, err.Error(), "mcpTools")

	assert.Empty(t, h.regs.tools)
	assert.Empty(t, h.manager.Registry().ForExtension("x"))
	assert.False(t, h.ctx.HasPending("x"))
	assert.Equal(t, StateFailed, h.manager.Status("x"))
	assert.Contains(t, h.logs.String(), "contribution=b")
}

func TestLoadOne_AllowlistIsCaseSensitive(t *testing.T) {
	h := newHarness(t, map[string]EntryPoint{"example.com/acme/tools": acmeEntryPoint})
	e := ext("acme", []string{"example.com/acme/tools"}, []string{"Query"}, []string{"summarize"}, []string{"reports"})

	var verr *ContributionValidationError
	require.ErrorAs(t, h.manager.LoadOne(context.Background(), e), &verr)
	assert.Equal(t, "query", verr.ContributionID)
}

func TestLoadOne_RegistrarFailureRollsBack(t *testing.T) {
	entry := func(d *contrib.Decorators) error {
		if _, _, err := d.Prompt(contrib.PromptFunc(summarizePrompt)); err != nil {
			return err
		}
		_, _, err := d.Tool(contrib.ToolFunc(queryTool), contrib.ToolName("query"))
		return err
	}
	h := newHarness(t, map[string]EntryPoint{"example.com/acme": entry})
	h.regs.failTool = "acme.query"
	e := ext("acme", []string{"example.com/acme"}, []string{"query"}, []string{"summarizePrompt"}, nil)

	err := h.manager.LoadOne(context.Background(), e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
	assert.Empty(t, h.regs.prompts)
	assert.Empty(t, h.manager.Registry().ForExtension("acme"))
}

func TestLoadOne_ImportFailures(t *testing.T) {
	tests := []struct {
		name      string
		entry     EntryPoint
		wantPanic bool
	}{
		{
			name:  "returns error",
			entry: func(d *contrib.Decorators) error { return errors.New("bad config") },
		},
		{
			name:      "panics",
			entry:     func(d *contrib.Decorators) error { panic("boom") },
			wantPanic: true,
		},
		{
			name: "partial then error",
			entry: func(d *contrib.Decorators) error {
				if _, _, err := d.Tool(contrib.ToolFunc(queryTool), contrib.ToolName("query")); err != nil {
					return err
				}
				return errors.New("later failure")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, map[string]EntryPoint{"example.com/broken": tt.entry})
			e := ext("broken", []string{"example.com/broken"}, []string{"query"}, nil, nil)

			err := h.manager.LoadOne(context.Background(), e)
			var ierr *ImportError
			require.ErrorAs(t, err, &ierr)
			assert.Equal(t, "example.com/broken", ierr.EntryPoint)
			assert.Equal(t, tt.wantPanic, ierr.Panic != nil)
			if tt.wantPanic {
				assert.NotEmpty(t, ierr.Stack)
			}

			assert.Empty(t, h.regs.tools)
			assert.False(t, h.ctx.HasPending("broken"))
			assert.Equal(t, registration.ModeHost, h.ctx.Mode())
			assert.Equal(t, StateFailed, h.manager.Status("broken"))
		})
	}
}

func TestLoadOne_MissingEntryPoint(t *testing.T) {
	h := newHarness(t, map[string]EntryPoint{})
	e := ext("ghost", []string{"example.com/ghost"}, nil, nil, nil)

	err := h.manager.LoadOne(context.Background(), e)
	require.ErrorIs(t, err, ErrEntryPointNotFound)
}

func TestLoadOne_Twice(t *testing.T) {
	h := newHarness(t, map[string]EntryPoint{"example.com/acme/tools": acmeEntryPoint})
	e := ext("acme", []string{"example.com/acme/tools"}, []string{"query"}, []string{"summarize"}, []string{"reports"})

	require.NoError(t, h.manager.LoadOne(context.Background(), e))
	require.ErrorIs(t, h.manager.LoadOne(context.Background(), e), ErrAlreadyLoaded)
	assert.Len(t, h.manager.Registry().ForExtension("acme"), 3)
}

func TestLoadAll_IsolatesFailures(t *testing.T) {
	h := newHarness(t, map[string]EntryPoint{
		"example.com/bad":  func(d *contrib.Decorators) error { return errors.New("import exploded") },
		"example.com/good": acmeEntryPoint,
	})
	set := NewSet(
		ext("bad", []string{"example.com/bad"}, nil, nil, nil),
		ext("good", []string{"example.com/good"}, []string{"query"}, []string{"summarize"}, []string{"reports"}),
	)

	report, err := h.manager.LoadAll(context.Background(), set)
	require.NoError(t, err)

	assert.NotEmpty(t, report.PassID)
	assert.Equal(t, []string{"good"}, report.Loaded())
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "bad", failed[0].ExtensionID)
	assert.Equal(t, StateFailed, failed[0].State)
	assert.Contains(t, failed[0].Error, "import exploded")

	assert.Equal(t, 3, report.Results[1].Contributions)
	assert.True(t, h.regs.tools["good.query"])
	assert.Contains(t, h.logs.String(), "extension=bad")

	var ids []string
	for _, e := range h.manager.ListExtensions() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"bad", "good"}, ids)
	assert.Len(t, h.manager.ListContributions(registration.KindTool), 1)
}

func TestLoadAll_UninitializedIsFatal(t *testing.T) {
	regCtx := registration.New()
	d := contrib.New(regCtx, slog.New(slog.DiscardHandler))
	m := NewManager(Options{
		Decorators: d,
		Importer:   StaticImporter{EntryPoints: map[string]EntryPoint{"example.com/acme/tools": acmeEntryPoint}},
		Logger:     slog.New(slog.DiscardHandler),
	})
	set := NewSet(
		ext("acme", []string{"example.com/acme/tools"}, []string{"query"}, []string{"summarize"}, []string{"reports"}),
		ext("later", nil, nil, nil, nil),
	)

	report, err := m.LoadAll(context.Background(), set)
	var uninit *contrib.UninitializedRegistrationError
	require.ErrorAs(t, err, &uninit)
	assert.Len(t, report.Results, 1)
	_, seen := m.Extension("later")
	assert.False(t, seen)
}

func TestLoadAll_StopsWhenCancelled(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := h.manager.LoadAll(ctx, NewSet(ext("acme", nil, nil, nil, nil)))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Results)
}

func TestValidateAndRegister_EmptyBufferIsNoop(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.manager.ValidateAndRegister("acme", &manifest.Manifest{ID: "acme"}))
	assert.Equal(t, 0, h.manager.Registry().Len())
}

func TestValidateAndRegister_NoBackendRejectsEverything(t *testing.T) {
	h := newHarness(t, nil)
	err := h.ctx.WithExtension("bare", func() error {
		_, _, err := h.manager.decorators.Tool(contrib.ToolFunc(queryTool))
		return err
	})
	require.NoError(t, err)

	var verr *ContributionValidationError
	require.ErrorAs(t, h.manager.ValidateAndRegister("bare", &manifest.Manifest{ID: "bare"}), &verr)
	assert.Equal(t, "queryTool", verr.ContributionID)
	assert.False(t, h.ctx.HasPending("bare"))
}

func TestLoadAll_BadRouteBaseStaysWithExtension(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	regCtx := registration.New()
	d := contrib.New(regCtx, logger)
	tools := newFakeRegistrars()
	rt := router.New("", nil, logger)
	d.Wire(contrib.Registrars{Tools: tools, Prompts: tools, Routes: rt, Gate: tools})

	m := NewManager(Options{
		Decorators: d,
		Logger:     logger,
		Importer: StaticImporter{EntryPoints: map[string]EntryPoint{
			"example.com/spaced": func(d *contrib.Decorators) error {
				if _, _, err := d.Tool(contrib.ToolFunc(queryTool), contrib.ToolName("query")); err != nil {
					return err
				}
				_, _, err := d.RestAPI(reportsAPI{}, contrib.APIID("reports"), contrib.APIBasePath("/a b"))
				return err
			},
			"example.com/good": acmeEntryPoint,
		}},
	})
	set := NewSet(
		ext("spaced", []string{"example.com/spaced"}, []string{"query"}, nil, []string{"reports"}),
		ext("good", []string{"example.com/good"}, []string{"query"}, []string{"summarize"}, []string{"reports"}),
	)

	var report Report
	require.NotPanics(t, func() {
		var err error
		report, err = m.LoadAll(context.Background(), set)
		require.NoError(t, err)
	})

	assert.Equal(t, []string{"good"}, report.Loaded())
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "spaced", failed[0].ExtensionID)
	assert.False(t, tools.tools["spaced.query"], "tool registered before the bad route must be withdrawn")
	assert.True(t, tools.tools["good.query"])
	assert.Equal(t, []string{"/api/v1/extensions/good/reports"}, rt.Routes())
	assert.Empty(t, m.Registry().ForExtension("spaced"))
}

func TestLoadOne_RegistrarPanicRollsBack(t *testing.T) {
	h := newHarness(t, map[string]EntryPoint{"example.com/acme/tools": acmeEntryPoint})
	h.regs.panicRoute = "/extensions/acme/reports"
	e := ext("acme", []string{"example.com/acme/tools"}, []string{"query"}, []string{"summarize"}, []string{"reports"})

	var err error
	require.NotPanics(t, func() { err = h.manager.LoadOne(context.Background(), e) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: mux rejected")

	assert.Empty(t, h.regs.tools)
	assert.Empty(t, h.regs.prompts)
	assert.Empty(t, h.regs.routes)
	assert.Equal(t, 0, h.manager.Registry().Len())
	assert.Equal(t, StateFailed, h.manager.Status("acme"))
	assert.False(t, h.ctx.HasPending("acme"))
}

func TestContributionFor(t *testing.T) {
	h := newHarness(t, map[string]EntryPoint{"example.com/acme/tools": acmeEntryPoint})
	e := ext("acme", []string{"example.com/acme/tools"}, []string{"query"}, []string{"summarize"}, []string{"reports"})
	require.NoError(t, h.manager.LoadOne(context.Background(), e))

	byID, ok := h.manager.ContributionFor("acme", registration.KindTool, "query")
	require.True(t, ok)
	byName, ok := h.manager.Contribution(registration.KindTool, "acme.query")
	require.True(t, ok)
	assert.Equal(t, byName, byID)

	_, ok = h.manager.Contribution(registration.KindTool, "query")
	assert.False(t, ok)
	_, ok = h.manager.ContributionFor("other", registration.KindTool, "query")
	assert.False(t, ok)
}
