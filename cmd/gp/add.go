package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/goodpapers/backend/internal/domain"
	"github.com/goodpapers/backend/internal/usecase"
)

var (
	addSource   string
	addStatus   string
	addProgress float64
)

func init() {
	addCmd.Flags().StringVar(&addSource, "source", domain.SourceArxiv, "Paper source")
	addCmd.Flags().StringVar(&addStatus, "status", string(domain.StatusAddedToLibrary), "Reading status")
	addCmd.Flags().Float64Var(&addProgress, "progress", 0, "Reading progress between 0 and 1")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <user-id> <url>",
	Short: "Add a paper to a user's library",
	Long: `Fetch a paper and add it to a user's library.

Example:
  gp add 7 https://arxiv.org/abs/1706.03762 --status "want to read"`,
	Args: cobra.ExactArgs(2),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q", args[0])
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Library.AddPaper(cmd.Context(), usecase.AddPaperInput{
		UserID:          userID,
		URL:             args[1],
		Source:          addSource,
		ReadingStatus:   domain.ReadingStatus(addStatus),
		ReadingProgress: addProgress,
	})
	if err != nil {
		return err
	}
	if humanOutput {
		fmt.Fprintf(cmd.OutOrStdout(), "paper %d %q: %s\n", res.Paper.ID, res.Paper.Title, res.Update.ReadingStatus)
		return nil
	}
	return outputJSON(cmd.OutOrStdout(), res)
}
