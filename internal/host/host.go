// Package host assembles the extension host: the MCP runtime, the REST
// router, the auth gate and the extension manager, wired through one
// registration context.
package host

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/agentx-labs/exthost/internal/auth"
	"github.com/agentx-labs/exthost/internal/branding"
	"github.com/agentx-labs/exthost/internal/config"
	"github.com/agentx-labs/exthost/internal/contrib"
	"github.com/agentx-labs/exthost/internal/extension"
	"github.com/agentx-labs/exthost/internal/hostapi"
	"github.com/agentx-labs/exthost/internal/mcphost"
	"github.com/agentx-labs/exthost/internal/registration"
	"github.com/agentx-labs/exthost/internal/router"
	"github.com/agentx-labs/exthost/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

// Option customizes a Host.
type Option func(*Host)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option { return func(h *Host) { h.logger = l } }

// WithImporter overrides the entry point importer.
func WithImporter(i extension.Importer) Option { return func(h *Host) { h.importer = i } }

// Host is a running extension host.
type Host struct {
	cfg      config.Host
	logger   *slog.Logger
	importer extension.Importer

	regCtx     *registration.Context
	decorators *contrib.Decorators
	gate       *auth.Gate
	runtime    *mcphost.Runtime
	router     *router.Router
	manager    *extension.Manager
	handler    http.Handler
}

// New wires the host components. Nothing is loaded until Start.
func New(cfg config.Host, opts ...Option) (*Host, error) {
	h := &Host{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}

	metrics, err := telemetry.NewMetrics(otel.GetMeterProvider().Meter(branding.GoModule()))
	if err != nil {
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	version := cmp.Or(cfg.HostVersion, "dev")
	h.regCtx = registration.New()
	h.gate = auth.NewGate(cfg.JWTSecret, cfg.Issuer, h.logger)
	h.runtime = mcphost.New(branding.ServerName(), version, h.logger)
	h.router = router.New(cmp.Or(cfg.APIPrefix, router.DefaultPrefix), h.gate, h.logger)

	h.decorators = contrib.New(h.regCtx, h.logger)
	h.decorators.Wire(contrib.Registrars{
		Tools:   h.runtime,
		Prompts: h.runtime,
		Routes:  h.router,
		Gate:    h.gate,
	})

	h.manager = extension.NewManager(extension.Options{
		Decorators: h.decorators,
		Importer:   h.importer,
		Metrics:    metrics,
		Logger:     h.logger,
	})

	mux := http.NewServeMux()
	mux.Handle(cmp.Or(cfg.MCPPath, "/mcp"), h.runtime.Handler(h.gate.HTTPContextFunc))
	mux.Handle("/", h.gate.Middleware(h.router))
	h.handler = mux
	return h, nil
}

// Start registers the host's own contributions, then discovers and loads
// extensions from the configured paths. Discovery problems and failing
// extensions are logged and reported; only host errors are returned.
func (h *Host) Start(ctx context.Context) (extension.Report, error) {
	if err := hostapi.Register(h.decorators, h.manager); err != nil {
		return extension.Report{}, fmt.Errorf("registering host API: %w", err)
	}

	set, errs := extension.Discover(h.cfg.HostVersion, h.cfg.ExtensionPaths...)
	for _, err := range errs {
		h.logger.Warn("skipping extension", "error", err)
	}

	enabled := extension.NewSet()
	for _, ext := range set.List() {
		if h.cfg.IsDisabled(ext.ID) {
			h.logger.Info("extension disabled by configuration", "extension", ext.ID)
			continue
		}
		enabled.Add(ext)
	}

	report, err := h.manager.LoadAll(ctx, enabled)
	if err != nil {
		return report, err
	}
	h.logger.Info("extensions loaded",
		"loaded", len(report.Loaded()),
		"failed", len(report.Failed()),
		"tools", len(h.runtime.Tools()),
		"prompts", len(h.runtime.Prompts()),
		"routes", len(h.router.Routes()))
	return report, nil
}

// Handler serves MCP at the configured path and REST under the API prefix.
func (h *Host) Handler() http.Handler { return h.handler }

// Manager returns the extension manager.
func (h *Host) Manager() *extension.Manager { return h.manager }

// Runtime returns the MCP runtime.
func (h *Host) Runtime() *mcphost.Runtime { return h.runtime }

// Router returns the REST router.
func (h *Host) Router() *router.Router { return h.router }

// Gate returns the auth gate.
func (h *Host) Gate() *auth.Gate { return h.gate }

// Serve listens on the configured address until ctx is cancelled.
func (h *Host) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              h.cfg.Addr,
		Handler:           h.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("listening",
			"addr", h.cfg.Addr,
			"mcp", cmp.Or(h.cfg.MCPPath, "/mcp"),
			"api", h.router.Prefix())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		h.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// NewLogger builds the process logger from the log settings.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
