package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the library tables if they are missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Store.Migrate(cmd.Context()); err != nil {
			return err
		}
		if humanOutput {
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		}
		return outputJSON(cmd.OutOrStdout(), map[string]string{"status": "migrated"})
	},
}
