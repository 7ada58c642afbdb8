package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/exthost/internal/auth"
)

var (
	tokenRoles []string
	tokenTTL   time.Duration
)

func init() {
	tokenIssueCmd.Flags().StringSliceVar(&tokenRoles, "role", nil, "Role to grant (repeatable); \"admin\" grants every permission")
	tokenIssueCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	tokenCmd.AddCommand(tokenIssueCmd)
	rootCmd.AddCommand(tokenCmd)
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage bearer tokens for protected contributions",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue <subject>",
	Short: "Issue a signed bearer token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := hostConfig()
		if cfg.JWTSecret == "" {
			return errors.New("auth.jwt_secret is not set")
		}
		token, err := auth.NewGate(cfg.JWTSecret, cfg.Issuer, slog.Default()).Issue(args[0], tokenRoles, tokenTTL)
		if err != nil {
			return fmt.Errorf("issuing token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
