package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goodpapers/backend/internal/domain"
	"github.com/goodpapers/backend/internal/usecase"
	"github.com/goodpapers/backend/pkg/arxiv"
)

func init() {
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load users and their papers from a YAML file",
	Long: `Create users and add papers to their libraries from a YAML file.

Example file:
  users:
    - email: ada@example.com
      name: Ada
      username: ada
      papers:
        - url: https://arxiv.org/abs/1706.03762
          status: want to read
      arxiv_ids: [1810.04805, 2005.14165]

Papers listed by url are fetched one at a time; arxiv_ids are fetched in a
single batch request. Seeding is idempotent.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

type seedFile struct {
	Users []seedUser `yaml:"users"`
}

type seedUser struct {
	Email    string      `yaml:"email"`
	Name     string      `yaml:"name"`
	Username string      `yaml:"username"`
	Papers   []seedPaper `yaml:"papers"`
	ArxivIDs []string    `yaml:"arxiv_ids"`
	Status   string      `yaml:"status"` // for arxiv_ids
}

type seedPaper struct {
	URL      string  `yaml:"url"`
	Source   string  `yaml:"source"`
	Status   string  `yaml:"status"`
	Progress float64 `yaml:"progress"`
}

type seedSummary struct {
	Users  int `json:"users"`
	Papers int `json:"papers"`
}

func loadSeed(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i, u := range f.Users {
		if u.Email == "" {
			return nil, fmt.Errorf("parse %s: user %d has no email", path, i+1)
		}
	}
	return &f, nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	f, err := loadSeed(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Store.Migrate(cmd.Context()); err != nil {
		return err
	}
	summary, err := applySeed(cmd.Context(), a.Library, f, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if humanOutput {
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d papers\n", summary.Users, summary.Papers)
		return nil
	}
	return outputJSON(cmd.OutOrStdout(), summary)
}

// applySeed writes every user and paper in f. Store errors stop the run; a
// paper that cannot be fetched is reported on progress and skipped.
func applySeed(ctx context.Context, lib *usecase.LibraryUsecase, f *seedFile, progress io.Writer) (*seedSummary, error) {
	summary := &seedSummary{}
	for _, su := range f.Users {
		user, err := lib.CreateUser(ctx, su.Email, su.Name, su.Username)
		if err != nil {
			return summary, fmt.Errorf("user %s: %w", su.Email, err)
		}
		summary.Users++

		for _, sp := range su.Papers {
			source := sp.Source
			if source == "" {
				source = domain.SourceArxiv
			}
			_, err := lib.AddPaper(ctx, usecase.AddPaperInput{
				UserID:          user.ID,
				URL:             sp.URL,
				Source:          source,
				ReadingStatus:   domain.ReadingStatus(sp.Status),
				ReadingProgress: sp.Progress,
			})
			if err != nil {
				if domain.IsValidation(err) || arxiv.IsAbsent(err) {
					fmt.Fprintf(progress, "skipping %s for %s: %v\n", sp.URL, su.Email, err)
					continue
				}
				return summary, err
			}
			summary.Papers++
		}

		if len(su.ArxivIDs) > 0 {
			results, err := lib.AddPapersByIDs(ctx, user.ID, su.ArxivIDs, domain.ReadingStatus(su.Status))
			summary.Papers += len(results)
			if err != nil {
				return summary, err
			}
			if skipped := len(su.ArxivIDs) - len(results); skipped > 0 {
				fmt.Fprintf(progress, "%d of %d arxiv ids for %s could not be fetched\n", skipped, len(su.ArxivIDs), su.Email)
			}
		}
	}
	return summary, nil
}
