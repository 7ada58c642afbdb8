package extension

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/agentx-labs/exthost/internal/contrib"
)

// EntryPoint is an extension's backend code. It declares contributions
// through the decorators it is given.
type EntryPoint func(d *contrib.Decorators) error

var (
	providersMu sync.RWMutex
	providers   = make(map[string]EntryPoint)
)

// Provide publishes an entry point under its module path, the string an
// extension's manifest lists in backend.entryPoints. It is meant to be
// called from init and panics if path is empty, fn is nil or path is taken.
func Provide(path string, fn EntryPoint) {
	providersMu.Lock()
	defer providersMu.Unlock()
	if path == "" {
		panic("extension: Provide with empty entry point path")
	}
	if fn == nil {
		panic("extension: Provide entry point is nil")
	}
	if _, dup := providers[path]; dup {
		panic("extension: Provide called twice for entry point " + path)
	}
	providers[path] = fn
}

// Provided returns the published entry point paths, sorted.
func Provided() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	paths := make([]string, 0, len(providers))
	for p := range providers {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

func lookupProvided(path string) (EntryPoint, bool) {
	providersMu.RLock()
	defer providersMu.RUnlock()
	fn, ok := providers[path]
	return fn, ok
}

// Importer makes an extension's entry points available.
type Importer interface {
	// Install prepares ext before its entry points are imported.
	Install(ext *LoadedExtension) error
	// Import resolves one entry point. It returns an error wrapping
	// ErrEntryPointNotFound when it does not know the path.
	Import(ext *LoadedExtension, path string) (EntryPoint, error)
}

// StaticImporter resolves entry points compiled into the binary. A nil map
// uses the entry points published with Provide.
type StaticImporter struct {
	EntryPoints map[string]EntryPoint
}

func (StaticImporter) Install(*LoadedExtension) error { return nil }

func (s StaticImporter) Import(_ *LoadedExtension, path string) (EntryPoint, error) {
	var (
		fn EntryPoint
		ok bool
	)
	if s.EntryPoints != nil {
		fn, ok = s.EntryPoints[path]
	} else {
		fn, ok = lookupProvided(path)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrEntryPointNotFound)
	}
	return fn, nil
}

// ChainImporter tries each importer in order. Install runs on every
// importer; Import returns the first match.
type ChainImporter []Importer

func (c ChainImporter) Install(ext *LoadedExtension) error {
	for _, imp := range c {
		if err := imp.Install(ext); err != nil {
			return err
		}
	}
	return nil
}

func (c ChainImporter) Import(ext *LoadedExtension, path string) (EntryPoint, error) {
	for _, imp := range c {
		fn, err := imp.Import(ext, path)
		if err == nil {
			return fn, nil
		}
		if !errors.Is(err, ErrEntryPointNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%s: %w", path, ErrEntryPointNotFound)
}
