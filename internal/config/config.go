// Package config loads daemon configuration from a JSON file layered over
// built-in defaults.
//
// Configuration controls:
//   - Language-specific adapter settings: paths and flags for each debugger
//   - Session storage location and request/handshake timeouts
//
// There is no readonly/full capability mode here: a daemon serves exactly
// one session at a time and every verb is available to whoever can reach
// its socket, so access control is a filesystem permission on the socket
// path, not a flag in this struct.
package config

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// AdapterConfigs holds configuration for each language adapter
type AdapterConfigs struct {
	Go     DelveConfig   `json:"go"`
	Python DebugpyConfig `json:"python"`
	Node   NodeConfig    `json:"node"`
	LLDB   LLDBConfig    `json:"lldb"`
	GDB    GDBConfig     `json:"gdb"`
}

// DelveConfig holds Delve-specific configuration
type DelveConfig struct {
	Path       string `json:"path"`
	BuildFlags string `json:"buildFlags"`
}

// DebugpyConfig holds debugpy-specific configuration
type DebugpyConfig struct {
	PythonPath string `json:"pythonPath"`
}

// NodeConfig holds Node.js-specific configuration
type NodeConfig struct {
	NodePath               string            `json:"nodePath"`
	JsDebugPath            string            `json:"jsDebugPath"` // path to vscode-js-debug's dapDebugServer.js
	InspectBrk             bool              `json:"inspectBrk"`
	SourceMapPathOverrides map[string]string `json:"sourceMapPathOverrides,omitempty"`
}

// LLDBConfig holds LLDB-specific configuration. Path points at lldb-dap, the
// adapter strategy for C/C++/Rust; BatchPath points at plain lldb, the
// binary the debugpy injector drives in batch mode on macOS.
type LLDBConfig struct {
	Path      string `json:"path"`
	BatchPath string `json:"batchPath"`
}

// GDBConfig holds GDB-specific configuration. Path is used only by the
// debugpy injector, as the batch-mode driver on Linux.
type GDBConfig struct {
	Path string `json:"path"`
}

// Timeouts bounds how long the client waits on each phase of a DAP exchange.
type Timeouts struct {
	InitializedWait      time.Duration `json:"initializedWait"`
	DeferredResponseWait time.Duration `json:"deferredResponseWait"`
	StoppedWait          time.Duration `json:"stoppedWait"`
	RequestWait          time.Duration `json:"requestWait"`
}

// Config holds the daemon configuration
type Config struct {
	SessionDir string         `json:"sessionDir"`
	Adapters   AdapterConfigs `json:"adapters"`
	Timeouts   Timeouts       `json:"timeouts"`
}

// findLLDBDap returns $LLDB_DAP_PATH or $CODELLDB_PATH when set, and
// otherwise searches for lldb-dap in common locations across platforms
func findLLDBDap() string {
	for _, env := range []string{"LLDB_DAP_PATH", "CODELLDB_PATH"} {
		if path := os.Getenv(env); path != "" {
			return path
		}
	}
	if path, err := exec.LookPath("lldb-dap"); err == nil {
		return path
	}

	locations := []string{
		"/Library/Developer/CommandLineTools/usr/bin/lldb-dap",
		"/Applications/Xcode.app/Contents/Developer/usr/bin/lldb-dap",
		"/opt/homebrew/bin/lldb-dap",
		"/usr/local/bin/lldb-dap",

		"/usr/bin/lldb-dap",
		"/usr/bin/lldb-dap-18",
		"/usr/bin/lldb-dap-17",
		"/usr/bin/lldb-dap-16",
		"/usr/lib/llvm-18/bin/lldb-dap",
		"/usr/lib/llvm-17/bin/lldb-dap",
		"/usr/lib/llvm-16/bin/lldb-dap",
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	if path, err := exec.LookPath("lldb-vscode"); err == nil {
		return path
	}

	return "lldb-dap"
}

// jsDebugPathFromEnv resolves $JS_DEBUG_PATH, a js-debug install root, to
// the src/dapDebugServer.js entry point inside it.
func jsDebugPathFromEnv() string {
	root := os.Getenv("JS_DEBUG_PATH")
	if root == "" {
		return ""
	}
	return filepath.Join(root, "src", "dapDebugServer.js")
}

// defaultSessionDir is $HOME/.agent-debugger, holding the daemon socket,
// PID file, and log file.
func defaultSessionDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".agent-debugger")
	}
	return filepath.Join(os.TempDir(), "agent-debugger")
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		SessionDir: defaultSessionDir(),
		Adapters: AdapterConfigs{
			Go: DelveConfig{
				Path: "dlv",
			},
			Python: DebugpyConfig{
				PythonPath: "python3",
			},
			Node: NodeConfig{
				NodePath:    "node",
				JsDebugPath: jsDebugPathFromEnv(),
			},
			LLDB: LLDBConfig{
				Path:      findLLDBDap(),
				BatchPath: "lldb",
			},
			GDB: GDBConfig{
				Path: "gdb",
			},
		},
		Timeouts: Timeouts{
			InitializedWait:      5 * time.Second,
			DeferredResponseWait: 30 * time.Second,
			StoppedWait:          60 * time.Second,
			RequestWait:          10 * time.Second,
		},
	}
}

// LoadConfig loads configuration from a JSON file, overlaying it on the
// defaults. A missing path is not an error; it yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
