package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List downloaded torrents, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			return fmt.Errorf("--limit must be positive")
		}

		store, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open state db: %w", err)
		}
		defer store.Close()

		downloads, err := store.ListDownloads(limit)
		if err != nil {
			return fmt.Errorf("failed to list downloads: %w", err)
		}
		if len(downloads) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No downloads yet.")
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-16s %-10s %5s  %s\n", "WHEN", "CLIENT", "COUNT", "TITLE")
		for _, d := range downloads {
			fmt.Fprintf(out, "%-16s %-10s %5d  %s\n",
				d.LastAt.Local().Format(time.DateOnly+" 15:04"), d.Client, d.Count, d.Title)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of entries to show")
	rootCmd.AddCommand(historyCmd)
}
