package main

import (
	"net/url"

	"github.com/spf13/cobra"
)

var violationsCmd = &cobra.Command{
	Use:   "violations",
	Short: "Manage violations",
}

var violationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List violations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		q := queryFromFlags(cmd, merged(windowParams, map[string]string{
			"violation-id":      "violation_id",
			"creator-id":        "creator_id",
			"category":          "violation_category",
			"fine":              "violation_fine_vnd",
			"video-url":         "violation_video_url",
			"refutations-count": "violation_refutations_count",
			"plate":             "vehicle_plate",
			"user-id":           "user_id",
		}))
		var violations []map[string]any
		if err := newClient().get("/violations", q, &violations); err != nil {
			return err
		}
		return printJSON(violations)
	},
}

var violationsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Log a violation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		q := queryFromFlags(cmd, map[string]string{
			"category":  "violation_category",
			"plate":     "vehicle_plate",
			"fine":      "violation_fine_vnd",
			"video-url": "violation_video_url",
		})
		var id int64
		if err := newClient().post("/violations", q, nil, &id); err != nil {
			return err
		}
		return printJSON(id)
	},
}

var violationsLookupCmd = &cobra.Command{
	Use:   "lookup <plate>",
	Short: "Look up violations by plate (no token needed)",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		var violations []map[string]any
		if err := newClient().get("/violations/"+url.PathEscape(args[0]), nil, &violations); err != nil {
			return err
		}
		return printJSON(violations)
	},
}

var violationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a violation (administrator)",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return newClient().delete("/violations/" + args[0])
	},
}

func init() {
	violationsListCmd.Flags().String("violation-id", "", "Filter by violation ID")
	violationsListCmd.Flags().String("creator-id", "", "Filter by logging user ID")
	violationsListCmd.Flags().String("category", "", "Filter by category (0=speeding, 1=red light, 2=pavement)")
	violationsListCmd.Flags().String("fine", "", "Filter by fine amount (VND)")
	violationsListCmd.Flags().String("video-url", "", "Filter by video URL (LIKE pattern)")
	violationsListCmd.Flags().String("refutations-count", "", "Filter by refutation count")
	violationsListCmd.Flags().String("plate", "", "Filter by vehicle plate (LIKE pattern)")
	violationsListCmd.Flags().String("user-id", "", "Filter by vehicle owner ID")
	filterFlags(violationsListCmd)

	violationsCreateCmd.Flags().String("category", "", "Category (0=speeding, 1=red light, 2=pavement)")
	violationsCreateCmd.Flags().String("plate", "", "Vehicle plate")
	violationsCreateCmd.Flags().String("fine", "", "Fine amount (VND)")
	violationsCreateCmd.Flags().String("video-url", "", "Evidence video URL")
	_ = violationsCreateCmd.MarkFlagRequired("category")
	_ = violationsCreateCmd.MarkFlagRequired("plate")
	_ = violationsCreateCmd.MarkFlagRequired("fine")
	_ = violationsCreateCmd.MarkFlagRequired("video-url")

	violationsCmd.AddCommand(violationsListCmd)
	violationsCmd.AddCommand(violationsCreateCmd)
	violationsCmd.AddCommand(violationsLookupCmd)
	violationsCmd.AddCommand(violationsDeleteCmd)
}
