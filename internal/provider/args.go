package provider

import (
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
)

// SplitArgs splits an options string into argv using POSIX quoting rules.
// No expansion of variables, globs or command substitutions takes place.
func SplitArgs(options string) ([]string, error) {
	if strings.TrimSpace(options) == "" {
		return nil, nil
	}
	args, err := shellquote.Split(options)
	if err != nil {
		return nil, fmt.Errorf("invalid arguments %q: %w", options, err)
	}
	return args, nil
}

// joinCommand quotes command and args into a single command line suitable
// for a remote shell.
func joinCommand(command string, args []string) string {
	return shellquote.Join(append([]string{command}, args...)...)
}
