package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <user-id>...",
	Short: "Show users with their papers and updates",
	Long: `Show each user's papers and reading updates. Unknown ids are skipped.

Example:
  gp show 1 2 7 --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	ids := make([]int64, len(args))
	for i, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", arg)
		}
		ids[i] = id
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := a.Query.FetchDataForUsers(cmd.Context(), ids)
	if err != nil {
		return err
	}
	if !humanOutput {
		return outputJSON(cmd.OutOrStdout(), data)
	}

	w := cmd.OutOrStdout()
	for _, d := range data {
		fmt.Fprintf(w, "%d %s <%s>\n", d.User.ID, d.User.Username, d.User.Email)
		status := make(map[int64]string, len(d.Updates))
		for _, u := range d.Updates {
			status[u.PaperID] = fmt.Sprintf("%s %.0f%%", u.ReadingStatus, u.ReadingProgress*100)
		}
		for _, p := range d.Papers {
			fmt.Fprintf(w, "  [%d] %s (%s)\n", p.ID, p.Title, status[p.ID])
		}
	}
	return nil
}
