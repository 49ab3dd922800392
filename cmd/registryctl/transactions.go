package main

import (
	"net/url"

	"github.com/spf13/cobra"
)

var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "Manage settlement transactions",
}

var transactionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		q := queryFromFlags(cmd, merged(windowParams, map[string]string{
			"transaction-id": "transaction_id",
			"violation-id":   "violation_id",
			"plate":          "vehicle_plate",
			"user-id":        "user_id",
			"payer-id":       "payer_id",
		}))
		var transactions []map[string]any
		if err := newClient().get("/transactions", q, &transactions); err != nil {
			return err
		}
		return printJSON(transactions)
	},
}

var transactionsPayCmd = &cobra.Command{
	Use:   "pay <violation-id>",
	Short: "Settle a violation's fine as the authenticated user",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		q := url.Values{}
		q.Set("violation_id", args[0])

		var id int64
		if err := newClient().post("/transactions", q, nil, &id); err != nil {
			return err
		}
		return printJSON(id)
	},
}

func init() {
	transactionsListCmd.Flags().String("transaction-id", "", "Filter by transaction ID")
	transactionsListCmd.Flags().String("violation-id", "", "Filter by violation ID")
	transactionsListCmd.Flags().String("plate", "", "Filter by vehicle plate (LIKE pattern)")
	transactionsListCmd.Flags().String("user-id", "", "Filter by vehicle owner ID")
	transactionsListCmd.Flags().String("payer-id", "", "Filter by payer ID")
	filterFlags(transactionsListCmd)

	transactionsCmd.AddCommand(transactionsListCmd)
	transactionsCmd.AddCommand(transactionsPayCmd)
}
