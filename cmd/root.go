package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Beastwick18/nyaa/internal/client"
	"github.com/Beastwick18/nyaa/internal/config"
	"github.com/Beastwick18/nyaa/internal/logging"
	"github.com/Beastwick18/nyaa/internal/results"
	"github.com/Beastwick18/nyaa/internal/tui"
)

var configPath string

func SetVersionInfo(version, commit string) {
	rootCmd.Version = fmt.Sprintf("%s (%s)", version, commit)
}

var rootCmd = &cobra.Command{
	Use:          "nyaa",
	Short:        "Browse torrent listings and send them to a download client",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		cfg, err := config.LoadFile(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		levelName := cfg.LogLevel
		levelFromFlag := cmd.Flags().Changed("log-level")
		if levelFromFlag {
			levelName, _ = cmd.Flags().GetString("log-level")
		}
		if err := setupLogging(levelName); err != nil {
			return err
		}
		defer logging.Close()
		slog.Info("starting", "config", path, "log", logging.Path())

		bindings, err := cfg.KeyBindings()
		if err != nil {
			return err
		}
		if err := tui.CheckActions(bindings); err != nil {
			return err
		}

		var items []results.Item
		if resultsPath, _ := cmd.Flags().GetString("results"); resultsPath != "" {
			items, err = results.LoadFile(resultsPath)
			if err != nil {
				return fmt.Errorf("failed to load results: %w", err)
			}
		}

		dl, err := client.Default(cfg)
		if err != nil && !errors.Is(err, config.ErrNoClient) {
			return err
		}
		clients, err := client.FromConfig(cfg)
		if err != nil {
			return err
		}

		opts := tui.Options{
			Items:        items,
			Bindings:     bindings,
			ComboTimeout: cfg.ComboTimeout,
			Client:       dl,
			Clients:      clients,
			SortKey:      cfg.SortKey(),
			Reverse:      cfg.ReverseSort,
		}
		if store, err := openStore(); err != nil {
			slog.Warn("download history unavailable", "error", err)
		} else {
			defer store.Close()
			opts.History = store
		}

		p := tea.NewProgram(tui.NewModel(opts), tea.WithAltScreen())

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go func() {
			err := config.Watch(ctx, path, func() { p.Send(reloadBindings(path, !levelFromFlag)) })
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("config watcher stopped", "error", err)
			}
		}()

		if _, err := p.Run(); err != nil {
			if lp := logging.Path(); lp != "" {
				return fmt.Errorf("TUI error: %w (see %s)", err, lp)
			}
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	},
}

// reloadBindings rebuilds the binding table from the config at path. With
// applyLevel set, the config's log_level takes effect too.
func reloadBindings(path string, applyLevel bool) tui.BindingsMsg {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return tui.BindingsMsg{Err: err}
	}
	if applyLevel {
		lvl, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return tui.BindingsMsg{Err: err}
		}
		logging.SetLevel(lvl)
	}
	kb, err := cfg.KeyBindings()
	if err == nil {
		err = tui.CheckActions(kb)
	}
	if err != nil {
		return tui.BindingsMsg{Err: err}
	}
	return tui.BindingsMsg{Bindings: kb, ComboTimeout: cfg.ComboTimeout}
}

func setupLogging(levelName string) error {
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}
	dir, err := config.StateDir()
	if err != nil {
		return err
	}
	if err := logging.Initialize(dir, level); err != nil {
		// Run without a log file.
		logging.Discard()
		fmt.Fprintf(os.Stderr, "nyaa: logging disabled: %v\n", err)
	}
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/nyaa/config.yaml)")
	rootCmd.Flags().StringP("results", "r", "", "YAML listing of torrents to browse")
	rootCmd.Flags().String("log-level", "info", "Log level: debug, info, warn or error")
}
