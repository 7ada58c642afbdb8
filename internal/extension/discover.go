package extension

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentx-labs/exthost/internal/manifest"
)

// DiscoveryError records a directory that could not become an extension.
// It wraps *manifest.SchemaError, *manifest.VersionError or an I/O error.
type DiscoveryError struct {
	Path string
	Err  error
}

func (e *DiscoveryError) Error() string { return fmt.Sprintf("discovering %s: %v", e.Path, e.Err) }
func (e *DiscoveryError) Unwrap() error { return e.Err }

// Discover walks dirs and returns the extensions found, in order. Each dir
// is either an extension itself (it holds a manifest) or a parent whose
// immediate subdirectories are extensions, visited in name order.
// Extensions found earlier take priority; later duplicates are reported.
// Manifests are loaded with manifest.Load against hostVersion, and a bad
// manifest only excludes its own extension.
func Discover(hostVersion string, dirs ...string) (*Set, []error) {
	set := NewSet()
	var errs []error

	for _, dir := range dirs {
		candidates, err := candidateDirs(dir)
		if err != nil {
			errs = append(errs, &DiscoveryError{Path: dir, Err: err})
			continue
		}
		for _, c := range candidates {
			ext, err := loadDir(c, hostVersion)
			if err != nil {
				errs = append(errs, &DiscoveryError{Path: c, Err: err})
				continue
			}
			if !set.Add(ext) {
				errs = append(errs, &DiscoveryError{
					Path: c,
					Err:  fmt.Errorf("extension id %q already discovered", ext.ID),
				})
			}
		}
	}

	return set, errs
}

// candidateDirs returns dir when it holds a manifest, otherwise its
// subdirectories that do.
func candidateDirs(dir string) ([]string, error) {
	if _, err := manifest.FindFile(dir); err == nil {
		return []string{dir}, nil
	} else if !errors.Is(err, manifest.ErrNotFound) {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading extensions directory: %w", err)
	}

	var result []string
	for _, e := range entries {
		if !e.IsDir() || isHidden(e.Name()) {
			continue
		}
		sub := filepath.Join(dir, e.Name())
		if _, err := manifest.FindFile(sub); err == nil {
			result = append(result, sub)
		}
	}
	return result, nil
}

func loadDir(dir, hostVersion string) (*LoadedExtension, error) {
	path, err := manifest.FindFile(dir)
	if err != nil {
		return nil, err
	}
	m, err := manifest.Load(path, hostVersion)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	return New(m, abs), nil
}

func isHidden(name string) bool {
	return len(name) > 0 && (name[0] == '.' || name[0] == '_')
}
