package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	userEmail    string
	userName     string
	userUsername string
)

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "Email address (unique)")
	userCreateCmd.Flags().StringVar(&userName, "name", "", "Display name")
	userCreateCmd.Flags().StringVar(&userUsername, "username", "", "Username (unique)")
	for _, f := range []string{"email", "name", "username"} {
		userCreateCmd.MarkFlagRequired(f)
	}

	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(userCmd)
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user, or refresh the one with the same email",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.Library.CreateUser(cmd.Context(), userEmail, userName, userUsername)
		if err != nil {
			return err
		}
		if humanOutput {
			fmt.Fprintf(cmd.OutOrStdout(), "user %d: %s <%s>\n", user.ID, user.Username, user.Email)
			return nil
		}
		return outputJSON(cmd.OutOrStdout(), user)
	},
}
