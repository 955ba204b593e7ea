package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dashctl",
		Short: "Drive the repair-desk dashboard session from a terminal",
		Long: `dashctl runs the dashboard's session and interaction stores outside the
browser. The session snapshot is kept in the configured storage backend,
so a login survives between invocations.

Configuration comes from the environment (API_BASE_URL, STORAGE_BACKEND,
REDIS_ADDR, MONGO_URI, ...).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		loginCmd(),
		logoutCmd(),
		statusCmd(),
		whoamiCmd(),
	)
	return root
}
