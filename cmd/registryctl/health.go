package main

import (
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health",
	RunE: func(_ *cobra.Command, _ []string) error {
		var status map[string]string
		if err := newClient().get("/healthz", nil, &status); err != nil {
			return err
		}
		return printJSON(status)
	},
}
