package client

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// SSHClient runs the download command on a remote host over SSH.
type SSHClient struct {
	Nickname string
	Host     string
	User     string
	SSHKey   string
	Command  string
	Args     []string
}

func (s *SSHClient) Name() string { return s.Nickname }

func (s *SSHClient) sshArgs() []string {
	args := []string{
		"-o", "ControlMaster=auto",
		"-o", "ControlPath=/tmp/nyaa-ssh-%r@%h:%p",
		"-o", "ControlPersist=60",
		"-o", "StrictHostKeyChecking=accept-new",
		"-o", "BatchMode=yes",
	}
	if s.SSHKey != "" {
		args = append(args, "-i", s.SSHKey)
	}
	if s.User != "" {
		args = append(args, fmt.Sprintf("%s@%s", s.User, s.Host))
	} else {
		args = append(args, s.Host)
	}
	return args
}

// remoteCommand quotes every word since ssh hands the line to a remote shell.
func (s *SSHClient) remoteCommand(link string) string {
	words := make([]string, 0, len(s.Args)+2)
	words = append(words, shellQuote(s.Command))
	for _, a := range s.Args {
		words = append(words, shellQuote(a))
	}
	words = append(words, shellQuote(link))
	return strings.Join(words, " ")
}

func (s *SSHClient) Download(ctx context.Context, link string) error {
	args := append(s.sshArgs(), s.remoteCommand(link))
	out, err := exec.CommandContext(ctx, "ssh", args...).CombinedOutput()
	if err != nil {
		return commandError(s.Nickname, err, out)
	}
	return nil
}

// shellQuote wraps a string in single quotes, escaping any single quotes inside.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\"'\"'") + "'"
}
