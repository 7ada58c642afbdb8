// Package branding provides compile-time identity values for the host.
//
// Forks edit branding.yaml in this package; Go's //go:embed bakes it into
// the binary.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	HomeDir     string `yaml:"home_dir"`
	EnvPrefix   string `yaml:"env_prefix"`
	GoModule    string `yaml:"go_module"`
	ServerName  string `yaml:"server_name"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:     "exthost",
			DisplayName: "ExtHost",
			Description: "Extension host for MCP tools, prompts and REST APIs",
			HomeDir:     ".exthost",
			EnvPrefix:   "EXTHOST",
			GoModule:    "github.com/agentx-labs/exthost",
			ServerName:  "exthost",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "exthost").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".exthost").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "EXTHOST").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path.
func GoModule() string { load(); return defaults.GoModule }

// ServerName is the name the MCP server reports to clients.
func ServerName() string { load(); return defaults.ServerName }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("home") → "EXTHOST_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
