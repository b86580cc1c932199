package client

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Beastwick18/nyaa/internal/config"
)

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "'plain'"},
		{"with space", "'with space'"},
		{"it's", `'it'"'"'s'`},
		{"", "''"},
		{"magnet:?xt=urn:btih:abc&dn=x", "'magnet:?xt=urn:btih:abc&dn=x'"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, shellQuote(tt.in))
	}
}

func TestSSHArgs(t *testing.T) {
	s := &SSHClient{Host: "box", User: "me", SSHKey: "/k"}
	args := s.sshArgs()

	assert.Equal(t, "me@box", args[len(args)-1])
	assert.Contains(t, args, "ControlMaster=auto")
	assert.Contains(t, args, "-i")

	s = &SSHClient{Host: "box"}
	args = s.sshArgs()
	assert.Equal(t, "box", args[len(args)-1])
	assert.NotContains(t, args, "-i")
}

func TestRemoteCommand(t *testing.T) {
	s := &SSHClient{Command: "qbt", Args: []string{"torrent", "add"}}
	assert.Equal(t, `'qbt' 'torrent' 'add' 'https://x/1.torrent?a=1&b=2'`,
		s.remoteCommand("https://x/1.torrent?a=1&b=2"))
}

func TestNew(t *testing.T) {
	c, err := New("local", config.ClientConfig{Command: "aria2c"})
	require.NoError(t, err)
	assert.IsType(t, &CommandClient{}, c)
	assert.Equal(t, "local", c.Name())

	c, err = New("remote", config.ClientConfig{Command: "qbt", Host: "box"})
	require.NoError(t, err)
	assert.IsType(t, &SSHClient{}, c)

	_, err = New("broken", config.ClientConfig{})
	assert.Error(t, err)
}

func TestFromConfigAndDefault(t *testing.T) {
	cfg := &config.Config{
		DefaultClient: "b",
		Clients: map[string]config.ClientConfig{
			"b": {Command: "b"},
			"a": {Command: "a", Host: "h"},
		},
	}
	clients, err := FromConfig(cfg)
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "a", clients[0].Name())
	assert.Equal(t, "b", clients[1].Name())

	c, err := Default(cfg)
	require.NoError(t, err)
	assert.Equal(t, "b", c.Name())

	_, err = Default(&config.Config{})
	assert.ErrorIs(t, err, config.ErrNoClient)
}

func TestCommandClientDownload(t *testing.T) {
	out := filepath.Join(t.TempDir(), "link")
	// The trailing "sh" fills $0 so the link lands in $1.
	c := &CommandClient{
		Nickname: "sh",
		Command:  "sh",
		Args:     []string{"-c", `printf %s "$1" > "` + out + `"`, "sh"},
	}

	require.NoError(t, c.Download(context.Background(), "magnet:?xt=1"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "magnet:?xt=1", string(data))
}

func TestCommandClientFailure(t *testing.T) {
	c := &CommandClient{
		Nickname: "bad",
		Command:  "sh",
		Args:     []string{"-c", "echo nope >&2; exit 3", "sh"},
	}
	err := c.Download(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.Contains(t, err.Error(), "nope")

	c = &CommandClient{Nickname: "missing", Command: "nyaa-no-such-binary"}
	err = c.Download(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
