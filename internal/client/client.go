// Package client hands torrent links to download clients, either a local
// command or one run on a remote host over ssh.
package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/Beastwick18/nyaa/internal/config"
)

// Client abstracts a download client so it can run locally or over SSH.
type Client interface {
	Name() string
	Download(ctx context.Context, link string) error
}

// New builds the client described by cc.
func New(name string, cc config.ClientConfig) (Client, error) {
	if cc.Command == "" {
		return nil, fmt.Errorf("client %q: command is required", name)
	}
	if cc.Host != "" {
		return &SSHClient{
			Nickname: name,
			Host:     cc.Host,
			User:     cc.User,
			SSHKey:   cc.SSHKey,
			Command:  cc.Command,
			Args:     cc.Args,
		}, nil
	}
	return &CommandClient{Nickname: name, Command: cc.Command, Args: cc.Args}, nil
}

// FromConfig builds every configured client, sorted by name.
func FromConfig(cfg *config.Config) ([]Client, error) {
	var clients []Client
	for _, name := range cfg.ClientNames() {
		c, err := New(name, cfg.Clients[name])
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, nil
}

// Default builds the client named by default_client.
func Default(cfg *config.Config) (Client, error) {
	name, cc, err := cfg.Client("")
	if err != nil {
		return nil, err
	}
	return New(name, cc)
}

func commandError(name string, err error, out []byte) error {
	msg := strings.TrimSpace(string(out))
	if msg == "" {
		return fmt.Errorf("%s: %w", name, err)
	}
	return fmt.Errorf("%s: %w: %s", name, err, msg)
}
