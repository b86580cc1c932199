package cmd

import (
	"strings"

	"github.com/Beastwick18/nyaa/internal/config"
	"github.com/Beastwick18/nyaa/internal/keymap"
	"github.com/Beastwick18/nyaa/internal/state"
)

// parseModePair splits "input:ui" into its modes. Without a colon the
// argument names the UI mode and the input mode is normal.
func parseModePair(s string) (keymap.InputMode, keymap.UIMode, error) {
	inName, uiName := "normal", s
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		inName, uiName = s[:idx], s[idx+1:]
	}
	in, err := keymap.ParseInputMode(inName)
	if err != nil {
		return 0, 0, err
	}
	ui, err := keymap.ParseUIMode(uiName)
	if err != nil {
		return 0, 0, err
	}
	return in, ui, nil
}

// resolveConfigPath returns --config or the default config path.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.Path()
}

func loadConfig() (*config.Config, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	return config.LoadFile(path)
}

func openStore() (*state.Store, error) {
	dir, err := config.StateDir()
	if err != nil {
		return nil, err
	}
	return state.Open(dir)
}
