package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/exthost/internal/extension"
	"github.com/agentx-labs/exthost/internal/manifest"
	"github.com/agentx-labs/exthost/internal/registration"
)

var inspectJSON bool

func init() {
	extensionInspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Print contribution metadata as JSON")

	extensionCmd.AddCommand(extensionListCmd)
	extensionCmd.AddCommand(extensionInspectCmd)
	rootCmd.AddCommand(extensionCmd)
}

var extensionCmd = &cobra.Command{
	Use:     "extension",
	Aliases: []string{"ext"},
	Short:   "Inspect installed extensions",
}

var extensionListCmd = &cobra.Command{
	Use:   "list [dir...]",
	Short: "List discoverable extensions",
	Long: `List the extensions found in the given directories, or in
extensions.paths when none are given. Directories that fail discovery are
reported on stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := hostConfig()
		dirs := args
		if len(dirs) == 0 {
			dirs = cfg.ExtensionPaths
		}

		set, errs := extension.Discover(cfg.HostVersion, dirs...)
		for _, err := range errs {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
		if set.Len() == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No extensions found.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tVERSION\tSTATUS\tPATH")
		for _, ext := range set.List() {
			status := "enabled"
			if cfg.IsDisabled(ext.ID) {
				status = "disabled"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", ext.ID, ext.Name, ext.Version, status, ext.SourcePath)
		}
		return w.Flush()
	},
}

var extensionInspectCmd = &cobra.Command{
	Use:   "inspect <dir>",
	Short: "Show the contributions an extension declares in code",
	Long: `Run an extension's entry points in build mode and list the contributions
they declare, without registering anything. Each row shows whether the
manifest allows the contribution; undeclared ones would be rejected at load.

The extension's entry points must be compiled into this binary or available
as plugins.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := hostConfig()
		set, errs := extension.Discover(cfg.HostVersion, args[0])
		if len(errs) > 0 {
			return errors.Join(errs...)
		}
		exts := set.List()
		if len(exts) != 1 {
			return fmt.Errorf("%s: expected one extension, found %d", args[0], len(exts))
		}
		ext := exts[0]

		metas, err := extension.Inspect(ext, nil, slog.Default())
		if err != nil {
			return fmt.Errorf("inspecting %s: %w", ext.ID, err)
		}
		if inspectJSON {
			return writeMetadataJSON(cmd.OutOrStdout(), metas)
		}
		return writeMetadataTable(cmd.OutOrStdout(), ext, metas)
	},
}

func writeMetadataTable(out io.Writer, ext *extension.LoadedExtension, metas []registration.Metadata) error {
	if len(metas) == 0 {
		fmt.Fprintf(out, "Extension %s declares no contributions.\n", ext.ID)
		return nil
	}
	allow := manifest.BuildAllowlists(ext.Manifest)
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "KIND\tNAME\tREGISTERED AS\tDECLARED")
	for _, md := range metas {
		declared := "yes"
		if !allow.Allows(md.Kind(), md.ContributionName()) {
			declared = "no"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", md.Kind(), md.ContributionName(), registeredAs(ext.ID, md), declared)
	}
	return w.Flush()
}

// registeredAs is the name or route a contribution gets once loaded.
func registeredAs(extID string, md registration.Metadata) string {
	if api, ok := md.(*registration.RestAPIMetadata); ok {
		return "/extensions/" + extID + api.BasePath
	}
	return extID + "." + md.ContributionName()
}

type metadataJSON struct {
	Kind     registration.Kind     `json:"kind"`
	Metadata registration.Metadata `json:"metadata"`
}

func writeMetadataJSON(out io.Writer, metas []registration.Metadata) error {
	items := make([]metadataJSON, 0, len(metas))
	for _, md := range metas {
		items = append(items, metadataJSON{Kind: md.Kind(), Metadata: md})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}
