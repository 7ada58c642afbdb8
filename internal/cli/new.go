package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/exthost/internal/scaffold"
)

var (
	newDir        string
	newImportBase string
)

func init() {
	extensionNewCmd.Flags().StringVar(&newDir, "dir", "extensions", "Directory to create the extension in")
	extensionNewCmd.Flags().StringVar(&newImportBase, "import-base", "", "Go import path of --dir (default: the host module's extensions package)")
	extensionCmd.AddCommand(extensionNewCmd)
}

var extensionNewCmd = &cobra.Command{
	Use:   "new <id>",
	Short: "Scaffold a new extension",
	Long: `Create <dir>/<id>/ with a manifest and a Go entry point contributing one
MCP tool, one MCP prompt and one REST API.

Blank-import the generated package from the host's main package so its entry
point is compiled in.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := scaffold.NewData(args[0], newImportBase)
		if err != nil {
			return err
		}
		result, err := scaffold.Generate(data, filepath.Join(newDir, data.ID))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created %s\n", result.OutputDir)
		for _, f := range result.Files {
			fmt.Fprintf(out, "  %s\n", f)
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
		}
		fmt.Fprintf(out, "\nAdd this import to main.go:\n\n\t_ %q\n", data.EntryPoint)
		return nil
	},
}
