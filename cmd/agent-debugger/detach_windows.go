//go:build windows

package main

import "os/exec"

// detachProcess is a no-op on Windows; the spawned daemon process inherits
// no console ties that would require an explicit detach.
func detachProcess(cmd *exec.Cmd) {}
