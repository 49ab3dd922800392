package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	token     string
)

var rootCmd = &cobra.Command{
	Use:   "registryctl",
	Short: "CLI for the traffic-violation registry server",
	Long: `registryctl talks to a running registry server over its HTTP API.

Most commands need a bearer token: run "registryctl login" first and export
the printed token as REGISTRY_TOKEN, or pass it with --token.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Registry server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token (default: from REGISTRY_TOKEN env)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(vehiclesCmd)
	rootCmd.AddCommand(violationsCmd)
	rootCmd.AddCommand(refutationsCmd)
	rootCmd.AddCommand(transactionsCmd)
	rootCmd.AddCommand(detectedCmd)
	rootCmd.AddCommand(healthCmd)
}

// resolvedToken returns the effective bearer token.
// Priority: --token flag > REGISTRY_TOKEN env var.
func resolvedToken() string {
	if token != "" {
		return token
	}
	return os.Getenv("REGISTRY_TOKEN")
}
