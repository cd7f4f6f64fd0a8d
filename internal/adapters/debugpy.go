package adapters

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/agent-tools/agent-debugger/internal/config"
	"github.com/agent-tools/agent-debugger/internal/dap"
	"github.com/agent-tools/agent-debugger/internal/inject"
	"github.com/agent-tools/agent-debugger/pkg/types"
	godap "github.com/google/go-dap"
)

// DebugpyStrategy implements Strategy for Python via debugpy. It is the
// only shipped strategy that also implements Injector: debugpy supports
// being grafted into an already-running process by PID.
type DebugpyStrategy struct {
	pythonPath string
	injector   *inject.Injector
}

// NewDebugpyStrategy builds a debugpy strategy. lldbCfg/gdbCfg configure
// the native-debugger batch-mode drivers used only by Inject.
func NewDebugpyStrategy(cfg config.DebugpyConfig, lldbCfg config.LLDBConfig, gdbCfg config.GDBConfig) *DebugpyStrategy {
	pythonPath := cfg.PythonPath
	if pythonPath == "" {
		pythonPath = "python3"
	}
	return &DebugpyStrategy{
		pythonPath: pythonPath,
		injector:   inject.New(lldbCfg, gdbCfg),
	}
}

func (d *DebugpyStrategy) Language() types.Language { return types.LanguagePython }

func (d *DebugpyStrategy) resolvePython(runtime string) string {
	if runtime != "" {
		return runtime
	}
	return d.pythonPath
}

func (d *DebugpyStrategy) CheckInstalled(runtime string) error {
	python := d.resolvePython(runtime)
	cmd := exec.Command(python, "-c", "import debugpy")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("debugpy is not importable from %q: install with `pip install debugpy`: %w", python, err)
	}
	return nil
}

// detectVenvRoot returns the venv root if pythonPath lives in one, so its
// bin directory can be prepended to PATH for subprocess calls.
func detectVenvRoot(pythonPath string) string {
	binDir := filepath.Dir(pythonPath)
	venvRoot := filepath.Dir(binDir)
	if _, err := os.Stat(filepath.Join(venvRoot, "pyvenv.cfg")); err == nil {
		return venvRoot
	}
	return ""
}

// Spawn starts debugpy.adapter listening on a fresh loopback port.
func (d *DebugpyStrategy) Spawn(ctx context.Context, opts LaunchOpts) (*dap.Client, *exec.Cmd, error) {
	port, err := findAvailablePort()
	if err != nil {
		return nil, nil, fmt.Errorf("find available port: %w", err)
	}
	address := fmt.Sprintf("127.0.0.1:%d", port)

	python := d.resolvePython(opts.Runtime)

	cmd := exec.CommandContext(ctx, python, "-m", "debugpy.adapter", "--host", "127.0.0.1", "--port", fmt.Sprintf("%d", port))
	cmd.Env = os.Environ()
	cmd.Stdin = nil
	setProcAttr(cmd)

	if venvRoot := detectVenvRoot(python); venvRoot != "" {
		cmd.Env = append(cmd.Env, "VIRTUAL_ENV="+venvRoot)
		binDir := filepath.Dir(python)
		for i, env := range cmd.Env {
			if strings.HasPrefix(env, "PATH=") {
				cmd.Env[i] = "PATH=" + binDir + string(os.PathListSeparator) + env[5:]
				break
			}
		}
	}
	for k, v := range opts.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	if opts.Cwd != "" {
		cmd.Dir = opts.Cwd
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("start debugpy: %w", err)
	}
	time.Sleep(1 * time.Second)

	client, err := connectTCP(address, 20, nil)
	if err != nil {
		_ = cmd.Process.Kill()
		return nil, nil, err
	}
	return client, cmd, nil
}

// Inject grafts a debugpy listener into a running process by PID and
// returns the address it listens on; the caller connects to it. It
// implements the Injector interface.
func (d *DebugpyStrategy) Inject(ctx context.Context, pid int, runtime string) (string, int, error) {
	return d.injector.InjectDebugpy(ctx, pid, d.resolvePython(runtime))
}

func (d *DebugpyStrategy) LaunchArgs(opts LaunchOpts) map[string]interface{} {
	args := map[string]interface{}{
		"type":    "python",
		"request": "launch",
		"program": opts.Program,
		"console": "internalConsole",
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
	if module, ok := opts.Extra["module"].(string); ok && module != "" {
		delete(args, "program")
		args["module"] = module
	}
	return args
}

// AttachArgs builds the attach body for a debugpy server already
// listening at opts.Host:opts.Port. For PID attach, the session layer
// calls Inject first and rewrites opts.Host/Port to the injected address.
func (d *DebugpyStrategy) AttachArgs(opts AttachOpts) map[string]interface{} {
	host := opts.Host
	if host == "" {
		host = "127.0.0.1"
	}
	return map[string]interface{}{
		"type":    "python",
		"request": "attach",
		"host":    host,
		"port":    opts.Port,
	}
}

// pydevdInternalPaths are substrings that mark a frame as debugpy/pydevd
// plumbing rather than user code.
var pydevdInternalPaths = []string{"pydevd", "debugpy/_vendored", "debugpy\\_vendored", "_pydev_"}

func (d *DebugpyStrategy) IsInternalFrame(frame godap.StackFrame) bool {
	if frame.Source == nil {
		return false
	}
	for _, marker := range pydevdInternalPaths {
		if strings.Contains(frame.Source.Path, marker) {
			return true
		}
	}
	return false
}

// IsInternalVariable hides Python dunder attributes from `vars` output.
func (d *DebugpyStrategy) IsInternalVariable(v godap.Variable) bool {
	return strings.HasPrefix(v.Name, "__") && strings.HasSuffix(v.Name, "__")
}
