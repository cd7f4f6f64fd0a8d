// Package adapters provides the per-language debug adapter strategies.
//
// A Strategy knows how to locate or spawn its adapter process, build the
// DAP request bodies for launch and attach, run the handshake to a paused
// or running state, and filter internal frames/variables out of display
// output. Four strategies ship: Delve (Go), debugpy (Python), js-debug
// (JavaScript/TypeScript), and LLDB (C/C++/Rust). The shared handshake
// sequence itself lives in handshake.go, as a free function parameterized
// by a Strategy. The four implementations differ only in the arguments
// they build and the binaries they spawn.
package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os/exec"
	"time"

	"github.com/agent-tools/agent-debugger/internal/config"
	"github.com/agent-tools/agent-debugger/internal/dap"
	"github.com/agent-tools/agent-debugger/pkg/types"
	godap "github.com/google/go-dap"
)

// LaunchOpts carries everything a strategy needs to spawn and launch a
// debuggee. It is built from a types.LaunchRequest by the session layer.
type LaunchOpts struct {
	Program     string
	Args        []string
	Cwd         string
	Env         map[string]string
	StopOnEntry bool
	Runtime     string // adapter-specific interpreter/binary override, e.g. --python
	Extra       map[string]interface{}
}

// AttachOpts carries everything a strategy needs to attach to a running
// debuggee, either by host/port or by PID (in which case Inject runs first).
type AttachOpts struct {
	Host    string
	Port    int
	PID     int
	Runtime string
	Extra   map[string]interface{}
}

// Strategy is the per-language debug adapter capability set.
type Strategy interface {
	// Language returns the language this strategy supports.
	Language() types.Language

	// CheckInstalled verifies the adapter tooling is present, optionally at
	// an explicit runtime path override.
	CheckInstalled(runtime string) error

	// Spawn launches the adapter process and returns a connected DAP client.
	// For TCP-based adapters this dials loopback with retry; for stdio
	// adapters it wires the child's pipes directly into the transport.
	Spawn(ctx context.Context, opts LaunchOpts) (*dap.Client, *exec.Cmd, error)

	// LaunchArgs builds the `launch` request body.
	LaunchArgs(opts LaunchOpts) map[string]interface{}

	// AttachArgs builds the `attach` request body.
	AttachArgs(opts AttachOpts) map[string]interface{}

	// IsInternalFrame reports whether a stack frame belongs to adapter or
	// runtime internals rather than user code.
	IsInternalFrame(frame godap.StackFrame) bool

	// IsInternalVariable reports whether a variable should be hidden from
	// the `vars` verb's output (e.g. dunder attributes).
	IsInternalVariable(v godap.Variable) bool
}

// Injector is implemented by strategies that can graft their adapter into
// an already-running process by PID. Only debugpy implements it today.
type Injector interface {
	Inject(ctx context.Context, pid int, runtime string) (host string, port int, err error)
}

// AttachSpawner is implemented by strategies whose host/port attach path
// needs to start or locate an adapter of its own. No shipped strategy
// implements it; without it, a host/port attach dials the given address
// directly, and a PID attach by a strategy without Injector reuses Spawn.
type AttachSpawner interface {
	SpawnAttach(ctx context.Context, opts AttachOpts) (*dap.Client, *exec.Cmd, error)
}

// Registry holds all registered strategies, keyed by language.
type Registry struct {
	strategies map[types.Language]Strategy
	gdbConfig  config.GDBConfig
}

// NewRegistry builds a registry with the four shipped strategies wired to
// their configured binaries.
func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{
		strategies: make(map[types.Language]Strategy),
		gdbConfig:  cfg.Adapters.GDB,
	}

	r.strategies[types.LanguageGo] = NewDelveStrategy(cfg.Adapters.Go)
	r.strategies[types.LanguagePython] = NewDebugpyStrategy(cfg.Adapters.Python, cfg.Adapters.LLDB, cfg.Adapters.GDB)

	node := NewNodeStrategy(cfg.Adapters.Node)
	r.strategies[types.LanguageJavaScript] = node
	r.strategies[types.LanguageTypeScript] = node

	lldb := NewLLDBStrategy(cfg.Adapters.LLDB)
	r.strategies[types.LanguageC] = lldb
	r.strategies[types.LanguageCpp] = lldb
	r.strategies[types.LanguageRust] = lldb

	return r
}

// Get returns the strategy for a language.
func (r *Registry) Get(lang types.Language) (Strategy, error) {
	s, ok := r.strategies[lang]
	if !ok {
		return nil, fmt.Errorf("no debug adapter strategy registered for language: %s", lang)
	}
	return s, nil
}

// connectTCP dials a loopback address with retry, giving the adapter time
// to start listening after spawn.
func connectTCP(address string, maxRetries int, log *slog.Logger) (*dap.Client, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		transport, err := dap.NewTCPTransport(address)
		if err == nil {
			return dap.NewClient(transport, log), nil
		}
		lastErr = err
		time.Sleep(200 * time.Millisecond)
	}
	return nil, fmt.Errorf("failed to connect to debug adapter at %s: %w", address, lastErr)
}

// findAvailablePort finds an available loopback TCP port.
func findAvailablePort() (int, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer listener.Close()

	addr := listener.Addr().(*net.TCPAddr)
	return addr.Port, nil
}

func stringArgs(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
