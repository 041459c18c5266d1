// Package copilot shells out to a local LLM CLI (GitHub Copilot CLI by
// default) to complete prompts.
package copilot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatscore/internal/score"
)

// Client invokes an external CLI binary as `<command> -p <prompt>`.
type Client struct {
	command string
	log     *zerolog.Logger
}

// New builds a Client for the given command name or path.
func New(command string, logger *zerolog.Logger) *Client {
	return &Client{command: command, log: logger}
}

// Available probes the binary with a version query. Absence is reported, not
// fatal: scoring degrades to the fallback value either way.
func (c *Client) Available(ctx context.Context) bool {
	if _, err := exec.LookPath(c.command); err != nil {
		return false
	}
	return exec.CommandContext(ctx, c.command, "--version").Run() == nil
}

// Complete runs the CLI with the prompt as an argument and returns trimmed
// stdout. The caller's context bounds the wait.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, c.command, "-p", prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %q not found in PATH", score.ErrUnavailable, c.command)
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s timed out: %w", c.command, ctx.Err())
		}
		c.log.Debug().Str("stderr", stderr.String()).Msg("llm cli failed")
		return "", fmt.Errorf("%s: %w", c.command, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}
