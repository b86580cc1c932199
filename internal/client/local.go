package client

import (
	"context"
	"fmt"
	"os/exec"
)

// CommandClient runs a local command with the link as its last argument.
type CommandClient struct {
	Nickname string
	Command  string
	Args     []string
}

func (c *CommandClient) Name() string { return c.Nickname }

func (c *CommandClient) Download(ctx context.Context, link string) error {
	bin, err := exec.LookPath(c.Command)
	if err != nil {
		return fmt.Errorf("%s not found: %w", c.Command, err)
	}
	args := append(append([]string(nil), c.Args...), link)
	out, err := exec.CommandContext(ctx, bin, args...).CombinedOutput()
	if err != nil {
		return commandError(c.Nickname, err, out)
	}
	return nil
}
