package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// FileNames are the manifest file names looked up in an extension
// directory, in order of preference.
var FileNames = []string{"manifest.json", "manifest.yaml", "manifest.yml"}

// ErrNotFound is returned by FindFile when a directory has no manifest.
var ErrNotFound = errors.New("manifest not found")

// FindFile returns the path of the manifest in dir.
func FindFile(dir string) (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("checking %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("%s: %w", dir, ErrNotFound)
}

// Parse decodes manifest data. JSON is accepted since it is valid YAML.
func Parse(data []byte, path string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

// ParseFile reads and decodes a manifest without validating it.
func ParseFile(path string) (*Manifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path)
}

// Load reads a manifest, validates it against the schema, decodes it and
// checks its version and its host version constraint against hostVersion.
// An empty hostVersion skips the constraint check.
func Load(path, hostVersion string) (*Manifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	result, err := Validate(data)
	if err != nil {
		return nil, fmt.Errorf("validating manifest %s: %w", path, err)
	}
	if !result.Valid {
		return nil, &SchemaError{Path: path, Issues: result.Issues}
	}

	m, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	if err := m.CheckVersion(); err != nil {
		return nil, err
	}
	if err := m.CheckHostVersion(hostVersion); err != nil {
		return nil, err
	}
	return m, nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
