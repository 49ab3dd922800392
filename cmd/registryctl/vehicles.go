package main

import (
	"github.com/spf13/cobra"
)

var vehiclesCmd = &cobra.Command{
	Use:   "vehicles",
	Short: "Manage vehicles",
}

var vehiclesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vehicles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		q := queryFromFlags(cmd, map[string]string{
			"plate":            "vehicle_plate",
			"violations-count": "vehicle_violations_count",
			"user-id":          "user_id",
			"min-plate":        "min_plate",
			"max-plate":        "max_plate",
		})
		var vehicles []map[string]any
		if err := newClient().get("/vehicles", q, &vehicles); err != nil {
			return err
		}
		return printJSON(vehicles)
	},
}

var vehiclesRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a vehicle plate",
	RunE: func(cmd *cobra.Command, _ []string) error {
		q := queryFromFlags(cmd, map[string]string{
			"plate":   "vehicle_plate",
			"user-id": "user_id",
		})
		var plate string
		if err := newClient().post("/vehicles", q, nil, &plate); err != nil {
			return err
		}
		return printJSON(plate)
	},
}

func init() {
	vehiclesListCmd.Flags().String("plate", "", "Filter by plate (LIKE pattern)")
	vehiclesListCmd.Flags().String("violations-count", "", "Filter by violation count")
	vehiclesListCmd.Flags().String("user-id", "", "Filter by owner ID")
	vehiclesListCmd.Flags().String("min-plate", "", "Lowest plate to include")
	vehiclesListCmd.Flags().String("max-plate", "", "Highest plate to include")

	vehiclesRegisterCmd.Flags().String("plate", "", "Vehicle plate")
	vehiclesRegisterCmd.Flags().String("user-id", "", "Owner ID (default: the authenticated user)")
	_ = vehiclesRegisterCmd.MarkFlagRequired("plate")

	vehiclesCmd.AddCommand(vehiclesListCmd)
	vehiclesCmd.AddCommand(vehiclesRegisterCmd)
}
