// Package main provides the gp CLI for managing the paper library from a
// terminal.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/goodpapers/backend/internal/app"
	"github.com/goodpapers/backend/internal/config"
	"github.com/goodpapers/backend/internal/logger"
)

var (
	humanOutput bool
	databaseURL string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		// SilenceErrors is set, so cobra has not printed it.
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gp",
	Short: "Manage a goodpapers library",
	Long: `gp adds arXiv papers to user libraries and inspects what is stored.

The database comes from --db or DATABASE_URL (postgres://... or
sqlite://<path>). Output is JSON unless --human is given.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "db", "", "Database URL (overrides DATABASE_URL)")
}

// openApp loads configuration and opens the store. The caller closes it.
func openApp(ctx context.Context) (*app.App, error) {
	cfg := config.Load()
	if databaseURL != "" {
		cfg.Database.URL = databaseURL
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return app.New(ctx, cfg, log)
}

// outputJSON writes a value as formatted JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
