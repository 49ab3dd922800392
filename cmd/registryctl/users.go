package main

import (
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, _ []string) error {
		q := queryFromFlags(cmd, merged(windowParams, map[string]string{
			"user-id":  "user_id",
			"fullname": "user_fullname",
			"phone":    "user_phone",
		}))
		var users []map[string]any
		if err := newClient().get("/users", q, &users); err != nil {
			return err
		}
		return printJSON(users)
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fullname, _ := cmd.Flags().GetString("fullname")
		phone, _ := cmd.Flags().GetString("phone")
		password, _ := cmd.Flags().GetString("password")

		var id int64
		if err := newClient().post("/users", nil, map[string]string{
			"fullname": fullname,
			"phone":    phone,
			"password": password,
		}, &id); err != nil {
			return err
		}
		return printJSON(id)
	},
}

var usersMeCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the authenticated user",
	RunE: func(_ *cobra.Command, _ []string) error {
		var me map[string]any
		if err := newClient().get("/users/@me", nil, &me); err != nil {
			return err
		}
		return printJSON(me)
	},
}

func init() {
	usersListCmd.Flags().String("user-id", "", "Filter by user ID")
	usersListCmd.Flags().String("fullname", "", "Filter by full name (LIKE pattern)")
	usersListCmd.Flags().String("phone", "", "Filter by phone number")
	filterFlags(usersListCmd)

	usersCreateCmd.Flags().String("fullname", "", "Full name")
	usersCreateCmd.Flags().String("phone", "", "Phone number")
	usersCreateCmd.Flags().String("password", "", "Password")
	_ = usersCreateCmd.MarkFlagRequired("fullname")
	_ = usersCreateCmd.MarkFlagRequired("phone")
	_ = usersCreateCmd.MarkFlagRequired("password")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersMeCmd)
}
