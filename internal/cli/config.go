package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/exthost/internal/config"
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage host settings",
	Long: `Read and write host configuration stored at ~/.exthost/config.yaml.

Every key can be overridden with an EXTHOST_ environment variable, dots
replaced by underscores (server.addr → EXTHOST_SERVER_ADDR).

Keys:
  extensions.paths     directories scanned for extensions
  extensions.disabled  extension ids to skip
  server.addr          listen address
  server.api_prefix    REST prefix (default /api/v1)
  server.mcp_path      MCP endpoint (default /mcp)
  auth.jwt_secret      HS256 secret for bearer tokens
  auth.issuer          expected token issuer
  log.level            debug, info, warn or error
  log.format           text or json
  host.version         version checked against manifest hostVersion`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.Get(args[0]))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.FilePath())
		return nil
	},
}
