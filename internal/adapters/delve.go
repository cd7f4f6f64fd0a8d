package adapters

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/agent-tools/agent-debugger/internal/config"
	"github.com/agent-tools/agent-debugger/internal/dap"
	"github.com/agent-tools/agent-debugger/pkg/types"
	godap "github.com/google/go-dap"
)

// DelveStrategy implements Strategy for Go via Delve's `dlv dap` subcommand.
type DelveStrategy struct {
	dlvPath    string
	buildFlags string
}

// NewDelveStrategy builds a Delve strategy from its configuration.
func NewDelveStrategy(cfg config.DelveConfig) *DelveStrategy {
	dlvPath := cfg.Path
	if dlvPath == "" {
		dlvPath = "dlv"
	}
	return &DelveStrategy{dlvPath: dlvPath, buildFlags: cfg.BuildFlags}
}

func (d *DelveStrategy) Language() types.Language { return types.LanguageGo }

func (d *DelveStrategy) CheckInstalled(runtime string) error {
	path := d.dlvPath
	if runtime != "" {
		path = runtime
	}
	if _, err := exec.LookPath(path); err != nil {
		if _, statErr := os.Stat(path); statErr != nil {
			return fmt.Errorf("dlv not found at %q: install with `go install github.com/go-delve/delve/cmd/dlv@latest`", path)
		}
	}
	return nil
}

// Spawn starts `dlv dap` listening on a fresh loopback port and connects
// a DAP client to it.
func (d *DelveStrategy) Spawn(ctx context.Context, opts LaunchOpts) (*dap.Client, *exec.Cmd, error) {
	port, err := findAvailablePort()
	if err != nil {
		return nil, nil, fmt.Errorf("find available port: %w", err)
	}
	address := fmt.Sprintf("127.0.0.1:%d", port)

	dlvPath := d.dlvPath
	if opts.Runtime != "" {
		dlvPath = opts.Runtime
	}

	dlvArgs := []string{"dap", "--listen", address}
	if d.buildFlags != "" {
		dlvArgs = append(dlvArgs, "--build-flags", d.buildFlags)
	}

	cmd := exec.CommandContext(ctx, dlvPath, dlvArgs...)
	cmd.Env = os.Environ()
	cmd.Stdin = nil
	cmd.Stderr = os.Stderr
	setProcAttr(cmd)
	if opts.Cwd != "" {
		cmd.Dir = opts.Cwd
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("start dlv: %w", err)
	}
	time.Sleep(500 * time.Millisecond)

	client, err := connectTCP(address, 20, nil)
	if err != nil {
		_ = cmd.Process.Kill()
		return nil, nil, err
	}
	return client, cmd, nil
}

func (d *DelveStrategy) LaunchArgs(opts LaunchOpts) map[string]interface{} {
	args := map[string]interface{}{
		"mode":    "debug",
		"program": opts.Program,
	}
	if len(opts.Args) > 0 {
		args["args"] = opts.Args
	}
	if opts.Cwd != "" {
		args["cwd"] = opts.Cwd
	}
	if len(opts.Env) > 0 {
		args["env"] = opts.Env
	}
	args["stopOnEntry"] = opts.StopOnEntry
	if d.buildFlags != "" {
		args["buildFlags"] = d.buildFlags
	}
	return args
}

func (d *DelveStrategy) AttachArgs(opts AttachOpts) map[string]interface{} {
	return map[string]interface{}{
		"mode":      "local",
		"processId": opts.PID,
	}
}

// IsInternalFrame excludes Go runtime frames.
func (d *DelveStrategy) IsInternalFrame(frame godap.StackFrame) bool {
	if strings.HasPrefix(frame.Name, "runtime.") {
		return true
	}
	if frame.Source != nil && strings.Contains(frame.Source.Path, "/GOROOT/") {
		return true
	}
	return false
}

func (d *DelveStrategy) IsInternalVariable(v godap.Variable) bool {
	return false
}
