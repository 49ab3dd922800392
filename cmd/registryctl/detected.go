package main

import (
	"github.com/spf13/cobra"
)

var detectedCmd = &cobra.Command{
	Use:   "detected",
	Short: "Manage camera-detected candidate violations",
}

var detectedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List detected candidates",
	RunE: func(cmd *cobra.Command, _ []string) error {
		q := queryFromFlags(cmd, merged(windowParams, map[string]string{
			"detected-id": "detected_id",
			"category":    "detected_category",
			"video-url":   "detected_video_url",
			"plate":       "vehicle_plate",
			"user-id":     "user_id",
		}))
		var detected []map[string]any
		if err := newClient().get("/detected", q, &detected); err != nil {
			return err
		}
		return printJSON(detected)
	},
}

var detectedCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Record a detected candidate",
	RunE: func(cmd *cobra.Command, _ []string) error {
		q := queryFromFlags(cmd, map[string]string{
			"category":  "detected_category",
			"plate":     "vehicle_plate",
			"video-url": "detected_video_url",
		})
		var id int64
		if err := newClient().post("/detected", q, nil, &id); err != nil {
			return err
		}
		return printJSON(id)
	},
}

var detectedDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a triaged or dismissed candidate",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return newClient().delete("/detected/" + args[0])
	},
}

func init() {
	detectedListCmd.Flags().String("detected-id", "", "Filter by candidate ID")
	detectedListCmd.Flags().String("category", "", "Filter by category (0=speeding, 1=red light, 2=pavement)")
	detectedListCmd.Flags().String("video-url", "", "Filter by video URL (LIKE pattern)")
	detectedListCmd.Flags().String("plate", "", "Filter by vehicle plate (LIKE pattern)")
	detectedListCmd.Flags().String("user-id", "", "Filter by vehicle owner ID")
	filterFlags(detectedListCmd)

	detectedCreateCmd.Flags().String("category", "", "Category (0=speeding, 1=red light, 2=pavement)")
	detectedCreateCmd.Flags().String("plate", "", "Vehicle plate")
	detectedCreateCmd.Flags().String("video-url", "", "Evidence video URL")
	_ = detectedCreateCmd.MarkFlagRequired("category")
	_ = detectedCreateCmd.MarkFlagRequired("plate")

	detectedCmd.AddCommand(detectedListCmd)
	detectedCmd.AddCommand(detectedCreateCmd)
	detectedCmd.AddCommand(detectedDeleteCmd)
}
