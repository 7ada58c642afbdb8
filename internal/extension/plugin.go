//go:build (linux || darwin || freebsd) && cgo

package extension

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"plugin"

	"github.com/agentx-labs/exthost/internal/contrib"
)

// PluginSymbol is the function a backend plugin exports for each entry
// point.
const PluginSymbol = "Register"

// PluginImporter loads entry points from Go plugins shipped in an
// extension's backend directory. Entry point "example.com/acme/tools" is
// read from "<extension>/backend/tools.so".
type PluginImporter struct {
	// Dir is the directory inside the extension holding the plugins.
	// Defaults to "backend".
	Dir string
}

func (p PluginImporter) Install(*LoadedExtension) error { return nil }

func (p PluginImporter) Import(ext *LoadedExtension, entryPoint string) (EntryPoint, error) {
	dir := p.Dir
	if dir == "" {
		dir = "backend"
	}
	file := filepath.Join(ext.SourcePath, dir, path.Base(entryPoint)+".so")
	if _, err := os.Stat(file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", entryPoint, ErrEntryPointNotFound)
		}
		return nil, fmt.Errorf("checking plugin %s: %w", file, err)
	}

	plug, err := plugin.Open(file)
	if err != nil {
		return nil, fmt.Errorf("opening plugin %s: %w", file, err)
	}
	sym, err := plug.Lookup(PluginSymbol)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", file, err)
	}

	switch fn := sym.(type) {
	case func(*contrib.Decorators) error:
		return fn, nil
	case *EntryPoint:
		return *fn, nil
	default:
		return nil, fmt.Errorf("plugin %s: %s has type %T, want func(*contrib.Decorators) error", file, PluginSymbol, sym)
	}
}

// DefaultImporter resolves compiled-in entry points first and falls back
// to backend plugins.
func DefaultImporter() Importer {
	return ChainImporter{StaticImporter{}, PluginImporter{}}
}
