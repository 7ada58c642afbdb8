package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/agentx-labs/exthost/internal/branding"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys understood by the host.
const (
	KeyExtensionPaths    = "extensions.paths"
	KeyExtensionDisabled = "extensions.disabled"
	KeyServerAddr        = "server.addr"
	KeyAPIPrefix         = "server.api_prefix"
	KeyMCPPath           = "server.mcp_path"
	KeyJWTSecret         = "auth.jwt_secret"
	KeyIssuer            = "auth.issuer"
	KeyLogLevel          = "log.level"
	KeyLogFormat         = "log.format"
	KeyHostVersion       = "host.version"
)

// Host is the resolved host configuration.
type Host struct {
	ExtensionPaths []string
	Disabled       []string
	Addr           string
	APIPrefix      string
	MCPPath        string
	JWTSecret      string
	Issuer         string
	LogLevel       string
	LogFormat      string
	// HostVersion is checked against manifests' hostVersion constraints.
	// Empty disables the check.
	HostVersion string
}

// IsDisabled reports whether id is listed in extensions.disabled.
func (h Host) IsDisabled(id string) bool {
	for _, d := range h.Disabled {
		if d == id {
			return true
		}
	}
	return false
}

// Dir returns the path to the config directory (~/.exthost/).
func Dir() string {
	if dir := os.Getenv(branding.EnvVar("home")); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.exthost/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyExtensionPaths, []string{filepath.Join(Dir(), "extensions")})
	v.SetDefault(KeyServerAddr, ":8088")
	v.SetDefault(KeyAPIPrefix, "/api/v1")
	v.SetDefault(KeyMCPPath, "/mcp")
	v.SetDefault(KeyIssuer, branding.CLIName())
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Resolve reads the host configuration from the global Viper instance.
func Resolve() Host {
	return resolve(viper.GetViper())
}

func resolve(v *viper.Viper) Host {
	return Host{
		ExtensionPaths: v.GetStringSlice(KeyExtensionPaths),
		Disabled:       v.GetStringSlice(KeyExtensionDisabled),
		Addr:           v.GetString(KeyServerAddr),
		APIPrefix:      v.GetString(KeyAPIPrefix),
		MCPPath:        v.GetString(KeyMCPPath),
		JWTSecret:      v.GetString(KeyJWTSecret),
		Issuer:         v.GetString(KeyIssuer),
		LogLevel:       v.GetString(KeyLogLevel),
		LogFormat:      v.GetString(KeyLogFormat),
		HostVersion:    v.GetString(KeyHostVersion),
	}
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
