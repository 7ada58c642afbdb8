// Package router mounts REST API contributions under the host's API prefix.
package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/agentx-labs/exthost/internal/api"
	"github.com/agentx-labs/exthost/internal/contrib"
)

// DefaultPrefix is prepended to every route base.
const DefaultPrefix = "/api/v1"

// ErrRouteExists is returned when a route base is already mounted.
var ErrRouteExists = errors.New("router: route already mounted")

// Guard protects a mounted API. permission may be empty.
type Guard interface {
	RequireHTTP(permission string, next http.Handler) http.Handler
}

// Router implements contrib.RouteRegistrar. Each API is served under
// prefix+routeBase with that path stripped, so the API sees paths relative
// to its base.
type Router struct {
	prefix string
	guard  Guard
	logger *slog.Logger

	mux     *http.ServeMux
	mu      sync.RWMutex
	mounts  map[string]http.Handler
	muxSeen map[string]bool
}

var _ contrib.RouteRegistrar = (*Router)(nil)

// New returns a router. A nil guard leaves every route open.
func New(prefix string, guard Guard, logger *slog.Logger) *Router {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		prefix:  "/" + strings.Trim(prefix, "/"),
		guard:   guard,
		logger:  logger,
		mux:     http.NewServeMux(),
		mounts:  make(map[string]http.Handler),
		muxSeen: make(map[string]bool),
	}
}

// Prefix returns the API prefix, e.g. "/api/v1".
func (rt *Router) Prefix() string { return rt.prefix }

// RegisterRoute mounts a at routeBase. A non-empty permission requires the
// caller to hold it.
func (rt *Router) RegisterRoute(a contrib.API, routeBase, permission string) error {
	base, err := cleanBase(routeBase)
	if err != nil {
		return err
	}
	full := rt.prefix + base

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if _, ok := rt.mounts[full]; ok {
		return fmt.Errorf("%s: %w", full, ErrRouteExists)
	}

	var h http.Handler = stripPrefix(full, a)
	if rt.guard != nil && permission != "" {
		h = rt.guard.RequireHTTP(permission, h)
	}
	rt.mounts[full] = h

	// ServeMux patterns cannot be removed, so each base is registered once
	// and dispatches through the mounts table.
	if !rt.muxSeen[full] {
		rt.muxSeen[full] = true
		dispatch := rt.dispatch(full)
		rt.mux.Handle(full, dispatch)
		rt.mux.Handle(full+"/", dispatch)
	}

	rt.logger.Debug("mounted REST API", "route", full, "permission", permission)
	return nil
}

// UnregisterRoute unmounts routeBase. Later requests get 404.
func (rt *Router) UnregisterRoute(routeBase string) error {
	base, err := cleanBase(routeBase)
	if err != nil {
		return err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	delete(rt.mounts, rt.prefix+base)
	return nil
}

// Routes returns the mounted paths, sorted.
func (rt *Router) Routes() []string {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	routes := make([]string, 0, len(rt.mounts))
	for r := range rt.mounts {
		routes = append(routes, r)
	}
	slices.Sort(routes)
	return routes
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

func (rt *Router) dispatch(full string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rt.mu.RLock()
		h, ok := rt.mounts[full]
		rt.mu.RUnlock()
		if !ok {
			api.WriteNotFound(w, r, "No API is mounted at this path")
			return
		}
		h.ServeHTTP(w, r)
	})
}

// stripPrefix is http.StripPrefix that maps the bare base to "/".
func stripPrefix(prefix string, h http.Handler) http.Handler {
	strip := http.StripPrefix(prefix, h)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == prefix {
			r2 := r.Clone(r.Context())
			r2.URL.Path = prefix + "/"
			r2.URL.RawPath = ""
			strip.ServeHTTP(w, r2)
			return
		}
		strip.ServeHTTP(w, r)
	})
}

func cleanBase(routeBase string) (string, error) {
	base := "/" + strings.Trim(routeBase, "/")
	if base == "/" {
		return "", errors.New("router: route base is empty")
	}
	for _, r := range base {
		if r <= ' ' || r == 0x7f || unicode.IsSpace(r) || unicode.IsControl(r) {
			return "", fmt.Errorf("router: route base %q contains whitespace or control characters", routeBase)
		}
	}
	if strings.ContainsAny(base, "{}?#%") {
		return "", fmt.Errorf("router: route base %q must be a plain path", routeBase)
	}
	if path.Clean(base) != base {
		return "", fmt.Errorf("router: route base %q is not a clean path", routeBase)
	}
	return base, nil
}
