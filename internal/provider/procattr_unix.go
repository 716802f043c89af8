//go:build !windows

package provider

import (
	"os/exec"
	"syscall"
)

// configureDetached puts the child in its own process group so terminal
// signals aimed at the bar do not reach it.
func configureDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
