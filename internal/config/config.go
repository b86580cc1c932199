package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Beastwick18/nyaa/internal/keymap"
	"github.com/Beastwick18/nyaa/internal/results"
)

// DefaultComboTimeout is how long a pending combo waits for its next key.
const DefaultComboTimeout = time.Second

// ErrNoClient is returned when a download client is not configured.
var ErrNoClient = errors.New("no such download client")

//go:embed default_keybinds.yaml
var defaultKeybinds []byte

// ClientConfig describes one download client. With Host set the command runs
// over ssh; otherwise it runs locally.
type ClientConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Host    string   `yaml:"host"`
	User    string   `yaml:"user"`
	SSHKey  string   `yaml:"ssh_key"`
}

type Config struct {
	LogLevel               string                  `yaml:"log_level"`
	ComboTimeout           time.Duration           `yaml:"combo_timeout"`
	DefaultSort            string                  `yaml:"default_sort"`
	ReverseSort            bool                    `yaml:"reverse_sort"`
	DefaultClient          string                  `yaml:"default_client"`
	Clients                map[string]ClientConfig `yaml:"clients"`
	ReplaceDefaultKeybinds bool                    `yaml:"replace_default_keybinds"`
	Keybinds               keymap.Config           `yaml:"keybinds"`

	// Set by Parse so the table is built once per load.
	bindings *keymap.KeyBindings
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults("")
	return cfg
}

// Dir returns ~/.config/nyaa.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "nyaa"), nil
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// StateDir returns $XDG_STATE_HOME/nyaa, falling back to ~/.local/state/nyaa.
func StateDir() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "nyaa"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "nyaa"), nil
}

// Load reads the config from ~/.config/nyaa/config.yaml.
// Returns the default config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. A missing file yields the defaults.
// Key bindings are validated so a bad config fails here rather than in the UI.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a config document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	home, _ := os.UserHomeDir()
	cfg.applyDefaults(home)
	if cfg.ComboTimeout < 0 {
		return nil, fmt.Errorf("combo_timeout must not be negative, got %s", cfg.ComboTimeout)
	}
	if _, err := results.ParseSortKey(cfg.DefaultSort); err != nil {
		return nil, fmt.Errorf("default_sort: %w", err)
	}
	kb, err := cfg.buildKeyBindings()
	if err != nil {
		return nil, err
	}
	cfg.bindings = kb
	return &cfg, nil
}

func (c *Config) applyDefaults(home string) {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ComboTimeout == 0 {
		c.ComboTimeout = DefaultComboTimeout
	}
	if c.DefaultSort == "" {
		c.DefaultSort = results.SortDate.String()
	}
	for name, cl := range c.Clients {
		// Expand ~ in ssh_key
		if home != "" && strings.HasPrefix(cl.SSHKey, "~") {
			cl.SSHKey = filepath.Join(home, cl.SSHKey[1:])
		}
		c.Clients[name] = cl
	}
}

// SortKey returns the column results are first ordered by.
func (c *Config) SortKey() results.SortKey {
	key, err := results.ParseSortKey(c.DefaultSort)
	if err != nil {
		return results.SortDate
	}
	return key
}

// ClientNames returns the configured client names in sorted order.
func (c *Config) ClientNames() []string {
	names := make([]string, 0, len(c.Clients))
	for name := range c.Clients {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Client returns the named client. An empty name selects default_client,
// or the only client when exactly one is configured.
func (c *Config) Client(name string) (string, ClientConfig, error) {
	if name == "" {
		name = c.DefaultClient
	}
	if name == "" && len(c.Clients) == 1 {
		name = c.ClientNames()[0]
	}
	cl, ok := c.Clients[name]
	if !ok {
		if name == "" {
			return "", ClientConfig{}, ErrNoClient
		}
		return "", ClientConfig{}, fmt.Errorf("%q: %w", name, ErrNoClient)
	}
	return name, cl, nil
}

// DefaultKeybinds returns the built-in binding configuration.
func DefaultKeybinds() (keymap.Config, error) {
	var kc keymap.Config
	if err := yaml.Unmarshal(defaultKeybinds, &kc); err != nil {
		return nil, fmt.Errorf("built-in keybinds: %w", err)
	}
	return kc, nil
}

// KeyBindings builds the merged binding table: the built-in bindings with the
// user's keybinds laid over them per input mode and bucket, or the user's
// alone when replace_default_keybinds is set. A config returned by Parse
// hands back the table it already built.
func (c *Config) KeyBindings() (*keymap.KeyBindings, error) {
	if c.bindings != nil {
		return c.bindings, nil
	}
	return c.buildKeyBindings()
}

func (c *Config) buildKeyBindings() (*keymap.KeyBindings, error) {
	user, err := keymap.ParseRaw(c.Keybinds)
	if err != nil {
		return nil, fmt.Errorf("keybinds: %w", err)
	}
	if c.ReplaceDefaultKeybinds {
		return keymap.MergeDefaults(user), nil
	}

	kc, err := DefaultKeybinds()
	if err != nil {
		return nil, err
	}
	raw, err := keymap.ParseRaw(kc)
	if err != nil {
		return nil, fmt.Errorf("built-in keybinds: %w", err)
	}
	raw.Overlay(user)
	return keymap.MergeDefaults(raw), nil
}
