package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/exthost/internal/branding"
	"github.com/agentx-labs/exthost/internal/config"
	"github.com/agentx-labs/exthost/internal/host"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	logLevel  string
	logFormat string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` loads extensions that contribute MCP tools, MCP prompts and REST APIs,
validates every contribution against the extension's manifest and serves them
from a single process.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		cfg := config.Resolve()
		level := logLevel
		if level == "" {
			level = cfg.LogLevel
		}
		format := logFormat
		if format == "" {
			format = cfg.LogFormat
		}
		slog.SetDefault(host.NewLogger(level, format, cmd.ErrOrStderr()))
	},
}

// hostConfig resolves the host configuration and fills in the build version
// when none is configured.
func hostConfig() config.Host {
	cfg := config.Resolve()
	if cfg.HostVersion == "" && buildVersion != "dev" {
		cfg.HostVersion = buildVersion
	}
	return cfg
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	err := rootCmd.Execute()
	if err != nil {
		slog.Error(err.Error())
	}
	return err
}
