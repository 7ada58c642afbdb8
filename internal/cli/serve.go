package cli

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/exthost/internal/host"
)

var (
	serveAddr       string
	serveExtensions []string
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().StringSliceVar(&serveExtensions, "extensions", nil, "Extension directories (overrides extensions.paths)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load extensions and serve MCP and REST",
	Long: `Discover extensions, register their declared contributions and serve them.

MCP tools and prompts are served over streamable HTTP at server.mcp_path.
REST APIs are mounted under server.api_prefix at /extensions/<id>/<base>.
An extension that fails to load is logged and skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := hostConfig()
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		if len(serveExtensions) > 0 {
			cfg.ExtensionPaths = serveExtensions
		}
		if cfg.JWTSecret == "" {
			slog.Warn("auth.jwt_secret is not set; protected contributions will reject every caller")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		h, err := host.New(cfg, host.WithLogger(slog.Default()))
		if err != nil {
			return err
		}
		report, err := h.Start(ctx)
		if err != nil {
			return fmt.Errorf("starting host: %w", err)
		}
		for _, res := range report.Failed() {
			fmt.Fprintf(cmd.ErrOrStderr(), "extension %s failed: %s\n", res.ExtensionID, res.Error)
		}
		return h.Serve(ctx)
	},
}
