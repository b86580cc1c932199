package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Beastwick18/nyaa/internal/keymap"
	"github.com/Beastwick18/nyaa/internal/keys"
	"github.com/Beastwick18/nyaa/internal/logging"
)

func TestParseModePair(t *testing.T) {
	tests := []struct {
		in     string
		wantIn keymap.InputMode
		wantUI keymap.UIMode
	}{
		{"main", keymap.Normal, keymap.Main},
		{"insert:search", keymap.Insert, keymap.Search},
		{"normal:batch", keymap.Normal, keymap.Batch},
	}
	for _, tt := range tests {
		in, ui, err := parseModePair(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.wantIn, in)
		assert.Equal(t, tt.wantUI, ui)
	}

	for _, bad := range []string{"visual:main", "normal:nowhere", ""} {
		_, _, err := parseModePair(bad)
		assert.ErrorIs(t, err, keymap.ErrUnknownMode, bad)
	}
}

func TestRenderKeymap(t *testing.T) {
	km := keymap.New()
	km.Set(keys.MustParseSequence("gg"), keymap.Single("top"))
	km.Set(keys.MustParseSequence("<C-d>"), keymap.Repeated(10, "down"))

	out := renderKeymap(km)

	assert.Contains(t, out, "KEYS")
	assert.Contains(t, out, "gg")
	assert.Contains(t, out, "<C-d>")
	assert.Contains(t, out, "go to top")
	assert.Contains(t, out, "10× move down")
}

func TestKeymapYAMLRoundTrips(t *testing.T) {
	km := keymap.New()
	km.Set(keys.MustParseSequence("gg"), keymap.Single("top"))
	km.Set(keys.MustParseSequence("<C-d>"), keymap.Repeated(10, "down"))
	km.Set(keys.MustParseSequence("<C-l>"), keymap.Many("clear_search", "top"))

	out, err := keymapYAML(km)
	require.NoError(t, err)
	assert.Contains(t, out, "gg: top")

	var back keymap.Bindings
	require.NoError(t, yaml.Unmarshal([]byte(out), &back))
	require.Len(t, back, 3)
	for _, b := range back {
		want, ok := km.Get(keys.MustParseSequence(b.Keys))
		require.True(t, ok, b.Keys)
		assert.True(t, want.Equal(b.Spec), b.Keys)
	}
}

func TestReloadBindings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, os.WriteFile(path, []byte("combo_timeout: 2s\nkeybinds:\n  normal:\n    _:\n      n: down\n"), 0o644))
	msg := reloadBindings(path, false)
	require.NoError(t, msg.Err)
	_, ok := msg.Bindings.Keymap(keymap.Main, keymap.Normal).Get(keys.MustParseSequence("n"))
	assert.True(t, ok)
	assert.Equal(t, "2s", msg.ComboTimeout.String())

	require.NoError(t, os.WriteFile(path, []byte("keybinds:\n  normal:\n    _:\n      n: teleport\n"), 0o644))
	msg = reloadBindings(path, false)
	assert.ErrorContains(t, msg.Err, "teleport")
	assert.Nil(t, msg.Bindings)

	require.NoError(t, os.WriteFile(path, []byte("keybinds:\n  normal:\n    _:\n      \"<C-\": down\n"), 0o644))
	msg = reloadBindings(path, false)
	assert.ErrorIs(t, msg.Err, keys.ErrInvalidKey)
}

func TestReloadBindingsAppliesLogLevel(t *testing.T) {
	t.Cleanup(func() { logging.SetLevel(slog.LevelInfo) })
	logger := logging.New(io.Discard)
	path := filepath.Join(t.TempDir(), "config.yaml")

	tests := []struct {
		name       string
		doc        string
		applyLevel bool
		wantDebug  bool
		wantErr    string
	}{
		{"applied", "log_level: debug\n", true, true, ""},
		{"flag wins", "log_level: error\n", false, true, ""},
		{"raised", "log_level: warn\n", true, false, ""},
		{"bad level", "log_level: loud\n", true, false, "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(path, []byte(tt.doc), 0o644))
			msg := reloadBindings(path, tt.applyLevel)
			if tt.wantErr != "" {
				assert.ErrorContains(t, msg.Err, tt.wantErr)
				return
			}
			require.NoError(t, msg.Err)
			assert.Equal(t, tt.wantDebug, logger.Enabled(context.Background(), slog.LevelDebug))
		})
	}
}
