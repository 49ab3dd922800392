package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Exchange phone+password for a bearer token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		phone, _ := cmd.Flags().GetString("phone")
		password, _ := cmd.Flags().GetString("password")

		var resp struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
		}
		if err := newClient().post("/users/login", nil, map[string]string{
			"phone":    phone,
			"password": password,
		}, &resp); err != nil {
			return err
		}

		fmt.Println(resp.AccessToken)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("phone", "", "Phone number")
	loginCmd.Flags().String("password", "", "Password")
	_ = loginCmd.MarkFlagRequired("phone")
	_ = loginCmd.MarkFlagRequired("password")
}
