package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mcdev12/reckoning/go/internal/authgate"
	"github.com/mcdev12/reckoning/go/internal/models"
)

type options struct {
	ttl    time.Duration
	issuer string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "issue_token <identity>",
		Short: "Print a bearer token for a player identity",
		Long: `Print a bearer token for a player identity, signed with JWT_SECRET.

The token is accepted by the progress API and by the sync daemon (RECKON_TOKEN).

Example:
  issue_token player-42 --ttl 72h`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return issue(cmd, opts, models.Identity(args[0]))
		},
	}

	cmd.Flags().DurationVar(&opts.ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.Flags().StringVar(&opts.issuer, "issuer", "", "token issuer (defaults to JWT_ISSUER or reckoning)")

	return cmd
}

func issue(cmd *cobra.Command, opts *options, identity models.Identity) error {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}

	issuer := opts.issuer
	if issuer == "" {
		issuer = os.Getenv("JWT_ISSUER")
	}
	if issuer == "" {
		issuer = "reckoning"
	}

	token, err := authgate.NewVerifier([]byte(secret), issuer, nil).Issue(identity, opts.ttl)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func main() {
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
