package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Beastwick18/nyaa/internal/client"
)

var downloadCmd = &cobra.Command{
	Use:   "download <link>",
	Short: "Send a torrent link to a download client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		clientName, _ := cmd.Flags().GetString("client")
		name, cc, err := cfg.Client(clientName)
		if err != nil {
			return err
		}
		dl, err := client.New(name, cc)
		if err != nil {
			return err
		}

		link := args[0]
		if err := dl.Download(cmd.Context(), link); err != nil {
			return fmt.Errorf("failed to download: %w", err)
		}

		title, _ := cmd.Flags().GetString("title")
		if title == "" {
			title = link
		}
		if store, err := openStore(); err == nil {
			if err := store.RecordDownload(title, link, dl.Name()); err != nil {
				slog.Warn("recording download", "error", err)
			}
			store.Close()
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Sent to %s\n", dl.Name())
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringP("client", "c", "", "Client name (default: default_client)")
	downloadCmd.Flags().StringP("title", "t", "", "Title to record in history")
	rootCmd.AddCommand(downloadCmd)
}
