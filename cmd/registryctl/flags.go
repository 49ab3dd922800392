package main

import (
	"net/url"

	"github.com/spf13/cobra"
)

// filterFlags registers the shared list-window flags.
func filterFlags(cmd *cobra.Command) {
	cmd.Flags().String("min-id", "", "Lowest ID to include")
	cmd.Flags().String("max-id", "", "Highest ID to include")
	cmd.Flags().String("min-created-at", "", "Earliest creation time (RFC 3339)")
	cmd.Flags().String("max-created-at", "", "Latest creation time (RFC 3339)")
}

// queryFromFlags maps flags that were explicitly set to query parameters.
func queryFromFlags(cmd *cobra.Command, names map[string]string) url.Values {
	q := url.Values{}
	for flagName, param := range names {
		if cmd.Flags().Changed(flagName) {
			v, _ := cmd.Flags().GetString(flagName)
			q.Set(param, v)
		}
	}
	return q
}

// windowParams is the flag→parameter mapping shared by every list command.
var windowParams = map[string]string{
	"min-id":         "min_id",
	"max-id":         "max_id",
	"min-created-at": "min_created_at",
	"max-created-at": "max_created_at",
}

// merged combines two flag→parameter maps.
func merged(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
