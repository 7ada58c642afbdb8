package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentx-labs/exthost/internal/contrib"
	"github.com/agentx-labs/exthost/internal/manifest"
	"github.com/agentx-labs/exthost/internal/registration"
	"github.com/agentx-labs/exthost/internal/registry"
	"github.com/agentx-labs/exthost/internal/telemetry"
)

// Options configures a Manager.
type Options struct {
	// Decorators is required. Its registration context is the one the
	// manager scopes extensions in.
	Decorators *contrib.Decorators
	// Registry defaults to an empty registry.
	Registry *registry.Registry
	// Importer defaults to DefaultImporter().
	Importer Importer
	Metrics  *telemetry.Metrics
	Logger   *slog.Logger
}

// Manager loads extensions and owns their registered contributions.
type Manager struct {
	decorators *contrib.Decorators
	regCtx     *registration.Context
	registry   *registry.Registry
	importer   Importer
	metrics    *telemetry.Metrics
	logger     *slog.Logger

	mu         sync.RWMutex
	extensions map[string]*LoadedExtension
	order      []string
	states     map[string]State
}

// NewManager returns a manager. It panics without decorators.
func NewManager(opts Options) *Manager {
	if opts.Decorators == nil {
		panic("extension: NewManager requires decorators")
	}
	if opts.Registry == nil {
		opts.Registry = registry.New()
	}
	if opts.Importer == nil {
		opts.Importer = DefaultImporter()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Manager{
		decorators: opts.Decorators,
		regCtx:     opts.Decorators.Context(),
		registry:   opts.Registry,
		importer:   opts.Importer,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		extensions: make(map[string]*LoadedExtension),
		states:     make(map[string]State),
	}
}

// Registry returns the contribution registry.
func (m *Manager) Registry() *registry.Registry { return m.registry }

// LoadAll loads every extension in exts in order. A failing extension is
// logged, recorded in the report and skipped. An uninitialized decorator
// is a host bug and stops the pass with an error, as does a cancelled ctx.
func (m *Manager) LoadAll(ctx context.Context, exts *Set) (Report, error) {
	report := Report{PassID: uuid.NewString()}
	logger := m.logger.With("load_pass", report.PassID)

	for _, ext := range exts.List() {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("loading extensions: %w", err)
		}

		start := time.Now()
		err := m.load(ctx, ext, logger)
		res := Result{
			ExtensionID:   ext.ID,
			State:         m.Status(ext.ID),
			Contributions: len(m.registry.ForExtension(ext.ID)),
			Elapsed:       time.Since(start),
			Err:           err,
		}
		if err != nil {
			res.Error = err.Error()
		}
		report.Results = append(report.Results, res)

		var uninit *contrib.UninitializedRegistrationError
		if errors.As(err, &uninit) {
			return report, err
		}
	}

	logger.Info("extensions loaded",
		"loaded", len(report.Loaded()),
		"failed", len(report.Failed()),
		"contributions", m.registry.Len())
	return report, nil
}

// LoadOne installs ext, runs its entry points inside an extension scope and
// registers what they contributed.
func (m *Manager) LoadOne(ctx context.Context, ext *LoadedExtension) error {
	return m.load(ctx, ext, m.logger)
}

func (m *Manager) load(ctx context.Context, ext *LoadedExtension, logger *slog.Logger) error {
	logger = logger.With("extension", ext.ID)
	start := time.Now()

	if err := m.track(ext); err != nil {
		logger.Error("failed to load extension", "error", err)
		return err
	}

	stage, err := m.run(ext, logger)
	if err != nil {
		m.setState(ext.ID, StateFailed)
		m.metrics.ExtensionFailed(ctx, ext.ID, stage)
		m.logFailure(logger, err)
		return err
	}

	m.setState(ext.ID, StateRegistered)
	m.metrics.ExtensionLoaded(ctx, ext.ID, time.Since(start))
	logger.Info("loaded extension",
		"name", ext.Name,
		"version", ext.Version,
		"contributions", len(m.registry.ForExtension(ext.ID)))
	return nil
}

// run returns the stage that failed along with the error.
func (m *Manager) run(ext *LoadedExtension, logger *slog.Logger) (string, error) {
	if err := m.importer.Install(ext); err != nil {
		return "install", &ImportError{ExtensionID: ext.ID, Err: err}
	}

	exit, err := m.regCtx.EnterExtension(ext.ID)
	if err != nil {
		return "import", fmt.Errorf("extension %s: %w", ext.ID, err)
	}
	defer exit()

	for _, ep := range ext.Manifest.EntryPoints() {
		if err := m.importEntryPoint(ext, ep); err != nil {
			m.regCtx.ClearPending(ext.ID)
			return "import", err
		}
		logger.Debug("imported entry point", "entry_point", ep)
	}

	m.setState(ext.ID, StateValidating)
	if err := m.ValidateAndRegister(ext.ID, ext.Manifest); err != nil {
		return "validate", err
	}
	return "", nil
}

func (m *Manager) importEntryPoint(ext *LoadedExtension, path string) (err error) {
	fn, err := m.importer.Import(ext, path)
	if err != nil {
		return &ImportError{ExtensionID: ext.ID, EntryPoint: path, Err: err}
	}

	defer func() {
		if r := recover(); r != nil {
			err = &ImportError{
				ExtensionID: ext.ID,
				EntryPoint:  path,
				Err:         fmt.Errorf("panic: %v", r),
				Panic:       r,
				Stack:       debug.Stack(),
			}
		}
	}()

	if err := fn(m.decorators); err != nil {
		var uninit *contrib.UninitializedRegistrationError
		if errors.As(err, &uninit) {
			return err
		}
		return &ImportError{ExtensionID: ext.ID, EntryPoint: path, Err: err}
	}
	return nil
}

// ValidateAndRegister checks the contributions buffered for extensionID
// against m's allowlists. If all are declared they are registered and
// recorded; otherwise nothing is. The buffer is cleared either way.
func (m *Manager) ValidateAndRegister(extensionID string, man *manifest.Manifest) error {
	pending := m.regCtx.PendingFor(extensionID)
	if len(pending) == 0 {
		return nil
	}
	defer m.regCtx.ClearPending(extensionID)

	allow := manifest.BuildAllowlists(man)
	for _, pc := range pending {
		name := pc.Metadata.ContributionName()
		if !allow.Allows(pc.Kind, name) {
			m.metrics.ValidationFailed(context.Background(), extensionID, pc.Kind.String())
			return &ContributionValidationError{
				ExtensionID:    extensionID,
				ContributionID: name,
				Kind:           pc.Kind,
			}
		}
	}

	activations := make([]contrib.Activation, 0, len(pending))
	entries := make([]registry.Entry, 0, len(pending))
	rollback := func() {
		for i := len(activations) - 1; i >= 0; i-- {
			if err := m.decorators.Deactivate(activations[i]); err != nil {
				m.logger.Warn("failed to withdraw contribution",
					"extension", extensionID, "contribution", activations[i].Name, "error", err)
			}
		}
	}

	for _, pc := range pending {
		a, err := m.activate(extensionID, pc)
		if err != nil {
			rollback()
			return err
		}
		activations = append(activations, a)

		entry := registry.Entry{
			ExtensionID: extensionID,
			Kind:        pc.Kind,
			Name:        extensionID + "." + pc.Metadata.ContributionName(),
			Metadata:    pc.Metadata,
			Payload:     a.Payload,
		}
		if pc.Kind == registration.KindRestAPI {
			entry.Route = a.Name
		}
		entries = append(entries, entry)
	}

	if err := m.registry.Record(entries...); err != nil {
		rollback()
		return err
	}
	for _, e := range entries {
		m.metrics.ContributionRegistered(context.Background(), extensionID, e.Kind.String())
	}
	return nil
}

// activate registers pc, converting a registrar panic into an error so the
// failure stays with the extension.
func (m *Manager) activate(extensionID string, pc registration.PendingContribution) (a contrib.Activation, err error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("registrar panicked",
				"extension", extensionID,
				"contribution", pc.Metadata.ContributionName(),
				"kind", pc.Kind.String(),
				"stack", string(debug.Stack()))
			err = fmt.Errorf("registering %s %s.%s: panic: %v",
				pc.Kind, extensionID, pc.Metadata.ContributionName(), r)
		}
	}()
	return m.decorators.Activate(extensionID, pc)
}

// Extension returns a loaded or attempted extension.
func (m *Manager) Extension(id string) (*LoadedExtension, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ext, ok := m.extensions[id]
	return ext, ok
}

// ListExtensions returns every extension the manager has seen, in load
// order.
func (m *Manager) ListExtensions() []*LoadedExtension {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*LoadedExtension, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.extensions[id])
	}
	return out
}

// Status returns the lifecycle state of id. Unknown ids are reported as
// discovered.
func (m *Manager) Status(id string) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.states[id]
}

// Contribution returns the entry registered as name. Entries are keyed by
// their namespaced name, e.g. "acme.query"; use ContributionFor to look up
// by extension and contribution id.
func (m *Manager) Contribution(kind registration.Kind, name string) (registry.Entry, bool) {
	return m.registry.Get(kind, name)
}

// ContributionFor returns the entry extensionID registered for id.
func (m *Manager) ContributionFor(extensionID string, kind registration.Kind, id string) (registry.Entry, bool) {
	return m.registry.Get(kind, extensionID+"."+id)
}

// ListContributions returns the registered entries of kind.
func (m *Manager) ListContributions(kind registration.Kind) []registry.Entry {
	return m.registry.List(kind)
}

func (m *Manager) track(ext *LoadedExtension) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.extensions[ext.ID]; ok {
		return fmt.Errorf("extension %s: %w", ext.ID, ErrAlreadyLoaded)
	}
	m.extensions[ext.ID] = ext
	m.order = append(m.order, ext.ID)
	m.states[ext.ID] = StateLoading
	return nil
}

func (m *Manager) setState(id string, s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[id] = s
}

func (m *Manager) logFailure(logger *slog.Logger, err error) {
	var (
		validation *ContributionValidationError
		imp        *ImportError
	)
	switch {
	case errors.As(err, &validation):
		logger.Error("extension contribution not declared in manifest",
			"contribution", validation.ContributionID,
			"kind", validation.Kind.String(),
			"error", err)
	case errors.As(err, &imp) && imp.Panic != nil:
		logger.Error("extension entry point panicked",
			"entry_point", imp.EntryPoint,
			"error", err,
			"stack", string(imp.Stack))
	case errors.As(err, &imp):
		logger.Error("failed to import extension entry point",
			"entry_point", imp.EntryPoint,
			"error", err)
	default:
		logger.Error("failed to load extension", "error", err)
	}
}
