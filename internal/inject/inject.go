// Package inject drives a native debugger (lldb on macOS, gdb on Linux) in
// batch mode to graft a DAP server into an already-running process, so that
// a target started outside this tool's control can still be attached to by
// PID. It is a self-contained subsystem: the shared DAP core and the
// Go/Node adapter strategies never call into it, only debugpy's.
package inject

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/agent-tools/agent-debugger/internal/config"
	"github.com/agent-tools/agent-debugger/internal/errors"
)

// PostInjectGrace is how long to wait after the injector exits before the
// DAP client dials the freshly grafted listener: the injected server spawns
// its own adapter subprocess whose listening socket is the one the client
// targets, and that subprocess needs a moment to come up.
const PostInjectGrace = 3 * time.Second

// Injector grafts a debugpy listener into a running Python process by PID.
type Injector struct {
	lldbBatchPath string
	gdbPath       string
}

// New builds an Injector from adapter configuration.
func New(lldbCfg config.LLDBConfig, gdbCfg config.GDBConfig) *Injector {
	lldbPath := lldbCfg.BatchPath
	if lldbPath == "" {
		lldbPath = "lldb"
	}
	gdbPath := gdbCfg.Path
	if gdbPath == "" {
		gdbPath = "gdb"
	}
	return &Injector{lldbBatchPath: lldbPath, gdbPath: gdbPath}
}

// InjectDebugpy allocates a free loopback port, builds the debugpy.listen
// program text, and drives the platform's native debugger in batch mode to
// run it inside the target process. It returns the address the caller
// should then dial as a debugpy DAP server.
func (inj *Injector) InjectDebugpy(ctx context.Context, pid int, pythonRuntime string) (host string, port int, err error) {
	port, err = findFreePort()
	if err != nil {
		return "", 0, errors.InjectionFailed(pid, "could not allocate a loopback port", err)
	}

	script := debugpyListenScript(port)

	var driverErr error
	switch runtime.GOOS {
	case "darwin":
		driverErr = runLLDBInjection(ctx, inj.lldbBatchPath, pid, script)
	case "linux":
		driverErr = runGDBInjection(ctx, inj.gdbPath, pid, script)
	default:
		driverErr = fmt.Errorf("unsupported platform %q for PID injection", runtime.GOOS)
	}
	if driverErr != nil {
		return "", 0, errors.InjectionFailed(pid, "native debugger batch-mode injection failed", driverErr)
	}

	time.Sleep(PostInjectGrace)
	return "127.0.0.1", port, nil
}
