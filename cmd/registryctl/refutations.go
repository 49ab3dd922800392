package main

import (
	"github.com/spf13/cobra"
)

var refutationsCmd = &cobra.Command{
	Use:   "refutations",
	Short: "Manage refutations",
}

var refutationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List refutations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		q := queryFromFlags(cmd, merged(windowParams, map[string]string{
			"refutation-id": "refutation_id",
			"message":       "refutation_message",
			"response":      "refutation_response",
			"author-id":     "author_id",
			"violation-id":  "violation_id",
			"plate":         "vehicle_plate",
			"user-id":       "user_id",
		}))
		var refutations []map[string]any
		if err := newClient().get("/refutations", q, &refutations); err != nil {
			return err
		}
		return printJSON(refutations)
	},
}

var refutationsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Contest a violation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		violationID, _ := cmd.Flags().GetInt64("violation-id")
		message, _ := cmd.Flags().GetString("message")

		var id int64
		if err := newClient().post("/refutations", nil, map[string]any{
			"violation_id": violationID,
			"message":      message,
		}, &id); err != nil {
			return err
		}
		return printJSON(id)
	},
}

var refutationsRespondCmd = &cobra.Command{
	Use:   "respond",
	Short: "Record the administrative response to a refutation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		refutationID, _ := cmd.Flags().GetInt64("refutation-id")
		response, _ := cmd.Flags().GetString("response")

		return newClient().post("/refutations/response", nil, map[string]any{
			"refutation_id": refutationID,
			"response":      response,
		}, nil)
	},
}

var refutationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a refutation (administrator)",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return newClient().delete("/refutations/" + args[0])
	},
}

func init() {
	refutationsListCmd.Flags().String("refutation-id", "", "Filter by refutation ID")
	refutationsListCmd.Flags().String("message", "", "Filter by message (LIKE pattern)")
	refutationsListCmd.Flags().String("response", "", "Filter by response (LIKE pattern)")
	refutationsListCmd.Flags().String("author-id", "", "Filter by author ID")
	refutationsListCmd.Flags().String("violation-id", "", "Filter by violation ID")
	refutationsListCmd.Flags().String("plate", "", "Filter by vehicle plate (LIKE pattern)")
	refutationsListCmd.Flags().String("user-id", "", "Filter by vehicle owner ID")
	filterFlags(refutationsListCmd)

	refutationsCreateCmd.Flags().Int64("violation-id", 0, "Violation to contest")
	refutationsCreateCmd.Flags().String("message", "", "Refutation message")
	_ = refutationsCreateCmd.MarkFlagRequired("violation-id")
	_ = refutationsCreateCmd.MarkFlagRequired("message")

	refutationsRespondCmd.Flags().Int64("refutation-id", 0, "Refutation to answer")
	refutationsRespondCmd.Flags().String("response", "", "Response text")
	_ = refutationsRespondCmd.MarkFlagRequired("refutation-id")
	_ = refutationsRespondCmd.MarkFlagRequired("response")

	refutationsCmd.AddCommand(refutationsListCmd)
	refutationsCmd.AddCommand(refutationsCreateCmd)
	refutationsCmd.AddCommand(refutationsRespondCmd)
	refutationsCmd.AddCommand(refutationsDeleteCmd)
}
