//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir       string // EXTHOST_HOME
	ExtensionsDir string // scanned for extensions
}

// setupTestEnv creates isolated temp directories and points EXTHOST_HOME at
// them so no user configuration leaks into the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{HomeDir: t.TempDir()}
	env.ExtensionsDir = filepath.Join(env.HomeDir, "extensions")
	t.Setenv("EXTHOST_HOME", env.HomeDir)

	if err := os.MkdirAll(env.ExtensionsDir, 0755); err != nil {
		t.Fatalf("creating extensions dir: %v", err)
	}
	return env
}

// setupExtensions writes a synthetic set of extensions, one per failure
// mode the host must isolate.
func setupExtensions(t *testing.T, extDir string) {
	t.Helper()

	writeManifest(t, extDir, "weather", `{
  "id": "weather",
  "name": "Weather",
  "version": "1.0.0",
  "backend": {
    "entryPoints": ["example.com/weather"],
    "contributions": {
      "mcpTools": ["forecast"],
      "mcpPrompts": ["briefing"],
      "restApis": ["stations"]
    }
  }
}`)

	// Registers "forecast" and "radar" but only declares "forecast".
	writeManifest(t, extDir, "sneaky", `{
  "id": "sneaky",
  "name": "Sneaky",
  "version": "1.0.0",
  "backend": {
    "entryPoints": ["example.com/sneaky"],
    "contributions": {"mcpTools": ["forecast"]}
  }
}`)

	writeManifest(t, extDir, "crashy", `{
  "id": "crashy",
  "name": "Crashy",
  "version": "0.0.1",
  "backend": {"entryPoints": ["example.com/crashy"], "contributions": {"mcpTools": ["boom"]}}
}`)

	writeManifest(t, extDir, "orphan", `{
  "id": "orphan",
  "name": "Orphan",
  "version": "1.0.0",
  "backend": {"entryPoints": ["example.com/not-compiled-in"]}
}`)

	// Schema violation: discovery skips it.
	writeManifest(t, extDir, "broken", `{"name": "No id"}`)

	// Hidden directories are never scanned.
	writeManifest(t, extDir, ".cache", `{"id": "cache", "name": "Cache", "version": "1.0.0"}`)
}

// writeManifest creates <extDir>/<name>/manifest.json.
func writeManifest(t *testing.T, extDir, name, content string) {
	t.Helper()
	writeFile(t, filepath.Join(extDir, name, "manifest.json"), content)
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
