package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/exthost/internal/manifest"
)

func init() {
	manifestCmd.AddCommand(manifestValidateCmd)
	rootCmd.AddCommand(manifestCmd)
}

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Work with extension manifests",
}

var manifestValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate a manifest against the schema",
	Long: `Validate an extension manifest. <path> is a manifest file or an extension
directory containing manifest.json, manifest.yaml or manifest.yml.

Checks the schema, the semver version and the hostVersion constraint
against the configured host.version.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			found, err := manifest.FindFile(path)
			if err != nil {
				return err
			}
			path = found
		}

		m, err := manifest.Load(path, hostConfig().HostVersion)
		if err != nil {
			var schemaErr *manifest.SchemaError
			if errors.As(err, &schemaErr) {
				out := cmd.ErrOrStderr()
				fmt.Fprintf(out, "%s is invalid:\n", filepath.Base(path))
				for _, issue := range schemaErr.Issues {
					fmt.Fprintf(out, "  %s: %s\n", issue.Path, issue.Message)
				}
			}
			return err
		}

		allow := manifest.BuildAllowlists(m)
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s is valid (%d tools, %d prompts, %d REST APIs)\n",
			m.ID, m.Version, len(allow.Tools), len(allow.Prompts), len(allow.RestAPIs))
		return nil
	},
}
