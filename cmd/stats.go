package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oogunniyi/portfolio/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print visitor and contact statistics as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openConfiguredDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats(cmd.Context())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete visitor records older than 12 months",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openConfiguredDB()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.Prune(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d visitor records\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(pruneCmd)
}

func openConfiguredDB() (*store.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("database_path is not configured")
	}
	if _, err := os.Stat(cfg.DatabasePath); err != nil {
		return nil, fmt.Errorf("database %s: %w", cfg.DatabasePath, err)
	}
	return store.Open(cfg.DatabasePath)
}
