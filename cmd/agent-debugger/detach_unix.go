//go:build !windows

package main

import (
	"os/exec"
	"syscall"
)

// detachProcess starts cmd in its own session so it outlives the CLI
// invocation that spawned it.
func detachProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
