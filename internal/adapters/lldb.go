package adapters

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/agent-tools/agent-debugger/internal/config"
	"github.com/agent-tools/agent-debugger/internal/dap"
	"github.com/agent-tools/agent-debugger/pkg/types"
	godap "github.com/google/go-dap"
)

// LLDBStrategy implements Strategy for C/C++/Rust via lldb-dap, communicating
// over the child process's stdin/stdout rather than a TCP socket.
type LLDBStrategy struct {
	lldbDapPath string
}

// NewLLDBStrategy builds an LLDB strategy from configuration.
func NewLLDBStrategy(cfg config.LLDBConfig) *LLDBStrategy {
	path := cfg.Path
	if path == "" {
		path = "lldb-dap"
	}
	return &LLDBStrategy{lldbDapPath: path}
}

func (l *LLDBStrategy) Language() types.Language { return types.LanguageCpp }

func (l *LLDBStrategy) CheckInstalled(runtime string) error {
	path := l.lldbDapPath
	if runtime != "" {
		path = runtime
	}
	if _, err := exec.LookPath(path); err != nil {
		if _, statErr := os.Stat(path); statErr != nil {
			return fmt.Errorf("lldb-dap not found at %q: install Xcode command line tools or LLVM, or set LLDB_DAP_PATH", path)
		}
	}
	return nil
}

// Spawn starts lldb-dap with its stdin/stdout wired directly into the DAP
// transport; there is no listening port to dial.
func (l *LLDBStrategy) Spawn(ctx context.Context, opts LaunchOpts) (*dap.Client, *exec.Cmd, error) {
	path := l.lldbDapPath
	if opts.Runtime != "" {
		path = opts.Runtime
	}

	//nolint:gosec // G204: this is a debug adapter that intentionally spawns subprocesses
	cmd := exec.CommandContext(ctx, path, "--repl-mode=auto")
	cmd.Env = os.Environ()
	setProcAttr(cmd)
	if opts.Cwd != "" {
		cmd.Dir = opts.Cwd
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		return nil, nil, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		return nil, nil, fmt.Errorf("start lldb-dap: %w", err)
	}

	transport := dap.NewStdioTransport(stdin, stdout)
	return dap.NewClient(transport, nil), cmd, nil
}

func (l *LLDBStrategy) LaunchArgs(opts LaunchOpts) map[string]interface{} {
	args := map[string]interface{}{"program": opts.Program}
	if len(opts.Args) > 0 {
		args["args"] = opts.Args
	}
	if opts.Cwd != "" {
		args["cwd"] = opts.Cwd
	}
	if len(opts.Env) > 0 {
		envList := make([]string, 0, len(opts.Env))
		for k, v := range opts.Env {
			envList = append(envList, fmt.Sprintf("%s=%s", k, v))
		}
		args["env"] = envList
	}
	args["stopOnEntry"] = opts.StopOnEntry
	for _, key := range []string{"initCommands", "preRunCommands", "stopCommands", "sourceMap"} {
		if v, ok := opts.Extra[key]; ok {
			args[key] = v
		}
	}
	return args
}

func (l *LLDBStrategy) AttachArgs(opts AttachOpts) map[string]interface{} {
	args := map[string]interface{}{}
	if opts.PID != 0 {
		args["pid"] = opts.PID
	}
	if v, ok := opts.Extra["program"]; ok {
		args["program"] = v
	}
	if v, ok := opts.Extra["attachCommands"]; ok {
		args["attachCommands"] = v
	}
	if v, ok := opts.Extra["waitFor"]; ok {
		args["waitFor"] = v
	}
	return args
}

// systemsStdlibPrefixes mark a frame as C/C++/Rust standard-library or
// dynamic-loader internals rather than user code.
var systemsStdlibPrefixes = []string{"/usr/lib/", "/usr/include/c++/", "/rustc/", "std::", "core::"}

func (l *LLDBStrategy) IsInternalFrame(frame godap.StackFrame) bool {
	for _, prefix := range systemsStdlibPrefixes {
		if (frame.Source != nil && strings.HasPrefix(frame.Source.Path, prefix)) || strings.HasPrefix(frame.Name, prefix) {
			return true
		}
	}
	return false
}

func (l *LLDBStrategy) IsInternalVariable(v godap.Variable) bool {
	return false
}
