package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const testdataDir = "testdata"

func testPath(name string) string {
	return filepath.Join(testdataDir, name)
}

func TestParseFile_Acme(t *testing.T) {
	m, err := ParseFile(testPath("valid-acme.json"))
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	if m.ID != "acme" {
		t.Errorf("ID = %q, want %q", m.ID, "acme")
	}
	if m.Version != "1.2.0" {
		t.Errorf("Version = %q, want %q", m.Version, "1.2.0")
	}
	if m.Backend == nil {
		t.Fatal("Backend is nil")
	}
	if got := m.EntryPoints(); len(got) != 1 || got[0] != "github.com/agentx-labs/exthost/extensions/acme/tools" {
		t.Errorf("EntryPoints() = %v", got)
	}

	tools := m.Backend.Contributions.MCPTools
	if len(tools) != 2 {
		t.Fatalf("len(MCPTools) = %d, want 2", len(tools))
	}
	if tools[0].ID != "query" || tools[1].ID != "report" {
		t.Errorf("MCPTools ids = %q, %q; want query, report", tools[0].ID, tools[1].ID)
	}
	if d := m.Backend.Contributions.MCPPrompts[0].Description; d != "Summarize a report" {
		t.Errorf("prompt description = %q", d)
	}
}

func TestParseFile_NoBackend(t *testing.T) {
	m, err := ParseFile(testPath("valid-minimal.yaml"))
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	if m.Backend != nil {
		t.Errorf("Backend = %+v, want nil", m.Backend)
	}
	if m.EntryPoints() != nil {
		t.Errorf("EntryPoints() = %v, want nil", m.EntryPoints())
	}
}

func TestParseFile_NotFound(t *testing.T) {
	if _, err := ParseFile(testPath("nonexistent.json")); err == nil {
		t.Fatal("expected error for nonexistent file, got nil")
	}
}

func TestFindFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := FindFile(dir); !errors.Is(err, ErrNotFound) {
		t.Fatalf("FindFile(empty) error = %v, want ErrNotFound", err)
	}

	yamlPath := filepath.Join(dir, "manifest.yaml")
	if err := os.WriteFile(yamlPath, []byte("id: a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := FindFile(dir)
	if err != nil {
		t.Fatalf("FindFile error: %v", err)
	}
	if got != yamlPath {
		t.Errorf("FindFile() = %q, want %q", got, yamlPath)
	}

	jsonPath := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(jsonPath, []byte(`{"id":"a"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = FindFile(dir)
	if err != nil {
		t.Fatalf("FindFile error: %v", err)
	}
	if got != jsonPath {
		t.Errorf("FindFile() = %q, want %q (json preferred)", got, jsonPath)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		file        string
		hostVersion string
		wantSchema  bool
		wantVersion bool
	}{
		{file: "valid-acme.json", hostVersion: "0.3.0"},
		{file: "valid-minimal.yaml", hostVersion: ""},
		{file: "future-host.yaml", hostVersion: "dev"},
		{file: "invalid-missing-id.json", wantSchema: true},
		{file: "invalid-bad-id.yaml", wantSchema: true},
		{file: "bad-version.yaml", wantVersion: true},
		{file: "future-host.yaml", hostVersion: "1.0.0", wantVersion: true},
	}

	for _, tt := range tests {
		t.Run(tt.file+"@"+tt.hostVersion, func(t *testing.T) {
			_, err := Load(testPath(tt.file), tt.hostVersion)

			var schemaErr *SchemaError
			var versionErr *VersionError
			switch {
			case tt.wantSchema:
				if !errors.As(err, &schemaErr) {
					t.Fatalf("Load() error = %v, want *SchemaError", err)
				}
				if len(schemaErr.Issues) == 0 {
					t.Error("SchemaError has no issues")
				}
			case tt.wantVersion:
				if !errors.As(err, &versionErr) {
					t.Fatalf("Load() error = %v, want *VersionError", err)
				}
				if versionErr.ExtensionID != "acme" {
					t.Errorf("ExtensionID = %q, want acme", versionErr.ExtensionID)
				}
			default:
				if err != nil {
					t.Fatalf("Load() error = %v", err)
				}
			}
		})
	}
}

func TestLoad_InvalidSyntax(t *testing.T) {
	_, err := Load(testPath("invalid-not-json.json"), "")
	if err == nil {
		t.Fatal("expected error for malformed manifest, got nil")
	}
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		t.Errorf("syntax error reported as schema error: %v", err)
	}
}
