package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Command runs an executable and captures its standard output.
// The options string is split into arguments without shell expansion and the
// child is started detached from the bar's process group with no console
// window.
type Command struct {
	// Dir is the working directory for the child. Empty means inherit.
	Dir string
	// Env, if non-nil, replaces the child's environment.
	Env []string
}

// Produce runs command with options and returns everything it wrote to
// standard output. A non-zero exit still yields its output when it printed
// something. Launch failures, cancellation and silent non-zero exits are
// returned as provider errors carrying the underlying message and any stderr
// output.
func (c *Command) Produce(ctx context.Context, command, options string) (string, error) {
	if strings.TrimSpace(command) == "" {
		return "", fail("command", command, fmt.Errorf("no command configured"))
	}

	args, err := SplitArgs(options)
	if err != nil {
		return "", fail("command", command, err)
	}

	cmd := exec.CommandContext(ctx, command, args...)
	configureDetached(cmd)
	if c != nil {
		cmd.Dir = c.Dir
		cmd.Env = c.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil && strings.TrimSpace(stdout.String()) != "" {
			return stdout.String(), nil
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return "", fail("command", command, err)
	}

	return stdout.String(), nil
}
