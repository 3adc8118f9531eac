package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

var envFiles []string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat-auth",
		Short: "Authentication service for the chat app",
		Long: `chat-auth signs users in with a password or a Google account,
issues session tokens and answers session lookups.

Configuration is read from the environment, after loading .env.local
and .env when present. AUTH_SECRET, GOOGLE_CLIENT_ID and
GOOGLE_CLIENT_SECRET are required.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Env files to load before parsing the environment")

	cmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		registerCmd(),
	)

	return cmd
}
