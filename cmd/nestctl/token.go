package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var tokenTTL time.Duration

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}

var tokenCmd = &cobra.Command{
	Use:   "token <caller-id>",
	Short: "Issue a bearer token for a caller",
	Long: `Issue an HS256 bearer token signed with auth.jwt_secret. The caller id is
stored as the "sub" claim and identifies the caller on authenticated routes.

Examples:
  nestctl token user-123
  nestctl token ops --ttl 1h`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func runToken(cmd *cobra.Command, args []string) error {
	application, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer application.Close()

	token, err := application.Tokens.Issue(args[0], tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
