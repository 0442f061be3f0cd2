package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goodpapers/backend/pkg/arxiv"
)

var fetchBatch bool

func init() {
	fetchCmd.Flags().BoolVar(&fetchBatch, "batch", false, "Fetch all ids in one request and skip the ones that fail")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <id|url>...",
	Short: "Fetch arXiv metadata without storing it",
	Long: `Fetch and print arXiv metadata.

Examples:
  gp fetch 1706.03762
  gp fetch https://arxiv.org/pdf/1706.03762v7.pdf
  gp fetch --batch 1706.03762 1810.04805`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	var results []arxiv.Metadata
	if fetchBatch {
		ids := make([]string, len(args))
		for i, arg := range args {
			ids[i] = arxiv.IDFromURL(arg)
		}
		results = a.Arxiv.FetchByIDs(cmd.Context(), ids)
	} else {
		for _, arg := range args {
			meta, err := a.Arxiv.FetchByURL(cmd.Context(), arg)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", arg, err)
			}
			results = append(results, *meta)
		}
	}

	if humanOutput {
		for _, m := range results {
			printMetadata(cmd.OutOrStdout(), m)
		}
		return nil
	}
	return outputJSON(cmd.OutOrStdout(), results)
}

func printMetadata(w io.Writer, m arxiv.Metadata) {
	fmt.Fprintf(w, "%s  %s\n", m.ArxivID, m.Title)
	fmt.Fprintf(w, "  %s\n", strings.Join(m.Authors, ", "))
	fmt.Fprintf(w, "  published %s, updated %s", m.PublishedDate, m.UpdatedDate)
	if len(m.Categories) > 0 {
		fmt.Fprintf(w, ", %s", strings.Join(m.Categories, " "))
	}
	fmt.Fprintln(w)
}
