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

// NodeStrategy implements Strategy for JavaScript/TypeScript via
// vscode-js-debug's standalone DAP server, for both Node.js and browser
// targets (selected by opts.Extra["target"]).
type NodeStrategy struct {
	nodePath               string
	jsDebugPath            string
	inspectBrk             bool
	sourceMapPathOverrides map[string]string
}

// NewNodeStrategy builds a Node/js-debug strategy from configuration.
func NewNodeStrategy(cfg config.NodeConfig) *NodeStrategy {
	nodePath := cfg.NodePath
	if nodePath == "" {
		nodePath = "node"
	}
	return &NodeStrategy{
		nodePath:               nodePath,
		jsDebugPath:            cfg.JsDebugPath,
		inspectBrk:             cfg.InspectBrk,
		sourceMapPathOverrides: cfg.SourceMapPathOverrides,
	}
}

func (n *NodeStrategy) Language() types.Language { return types.LanguageJavaScript }

func (n *NodeStrategy) CheckInstalled(runtime string) error {
	if n.jsDebugPath == "" {
		return fmt.Errorf("jsDebugPath not configured: install vscode-js-debug and set jsDebugPath " +
			"to its src/dapDebugServer.js (or $JS_DEBUG_PATH to its install root)")
	}
	if _, err := os.Stat(n.jsDebugPath); err != nil {
		return fmt.Errorf("js-debug not found at %q: %w", n.jsDebugPath, err)
	}
	node := n.nodePath
	if runtime != "" {
		node = runtime
	}
	if _, err := exec.LookPath(node); err != nil {
		return fmt.Errorf("node not found at %q: %w", node, err)
	}
	return nil
}

// Spawn starts vscode-js-debug's standalone DAP server.
func (n *NodeStrategy) Spawn(ctx context.Context, opts LaunchOpts) (*dap.Client, *exec.Cmd, error) {
	if n.jsDebugPath == "" {
		return nil, nil, fmt.Errorf("jsDebugPath not configured: vscode-js-debug is required for JavaScript/TypeScript debugging")
	}

	port, err := findAvailablePort()
	if err != nil {
		return nil, nil, fmt.Errorf("find available port: %w", err)
	}
	address := fmt.Sprintf("127.0.0.1:%d", port)

	node := n.nodePath
	if opts.Runtime != "" {
		node = opts.Runtime
	}

	cmd := exec.CommandContext(ctx, node, n.jsDebugPath, fmt.Sprintf("%d", port), "127.0.0.1")
	cmd.Env = os.Environ()
	cmd.Stdin = nil
	setProcAttr(cmd)
	if opts.Cwd != "" {
		cmd.Dir = opts.Cwd
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("start vscode-js-debug: %w", err)
	}
	time.Sleep(500 * time.Millisecond)

	client, err := connectTCP(address, 20, nil)
	if err != nil {
		_ = cmd.Process.Kill()
		return nil, nil, err
	}
	return client, cmd, nil
}

func (n *NodeStrategy) target(extra map[string]interface{}) string {
	if t, ok := extra["target"].(string); ok {
		return t
	}
	return "node"
}

func (n *NodeStrategy) LaunchArgs(opts LaunchOpts) map[string]interface{} {
	switch n.target(opts.Extra) {
	case "chrome":
		return n.buildBrowserArgs("pwa-chrome", "launch", opts.Program, opts.Extra)
	case "edge":
		return n.buildBrowserArgs("pwa-msedge", "launch", opts.Program, opts.Extra)
	default:
		return n.buildNodeLaunchArgs(opts)
	}
}

func (n *NodeStrategy) buildNodeLaunchArgs(opts LaunchOpts) map[string]interface{} {
	args := map[string]interface{}{
		"type":    "pwa-node",
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
	args["sourceMaps"] = true
	if outFiles, ok := opts.Extra["outFiles"].([]string); ok {
		args["outFiles"] = outFiles
	}
	return args
}

// buildBrowserArgs builds launch/attach arguments for browser debugging
// (Chrome/Edge), used to debug React/Vue/Svelte and other frontend code
// running under a bundler dev server.
func (n *NodeStrategy) buildBrowserArgs(debugType, request, urlOrEmpty string, extra map[string]interface{}) map[string]interface{} {
	args := map[string]interface{}{
		"type":    debugType,
		"request": request,
	}
	if request == "launch" {
		args["url"] = urlOrEmpty
	}

	webRoot, _ := extra["webRoot"].(string)
	if webRoot == "" {
		webRoot, _ = extra["cwd"].(string)
	}
	if webRoot != "" {
		args["webRoot"] = webRoot
		args["resolveSourceMapLocations"] = []string{webRoot + "/**", "!**/node_modules/**"}
		args["sourceMapPathOverrides"] = n.sourceMapOverrides(webRoot)
	}
	args["sourceMaps"] = true
	if request == "launch" {
		args["userDataDir"] = true
	}
	return args
}

// sourceMapOverrides returns configured overrides with ${webRoot}
// substituted, or defaults covering Vite, Webpack/CRA, and Meteor.
func (n *NodeStrategy) sourceMapOverrides(webRoot string) map[string]string {
	if len(n.sourceMapPathOverrides) > 0 {
		out := make(map[string]string, len(n.sourceMapPathOverrides))
		for pattern, replacement := range n.sourceMapPathOverrides {
			out[pattern] = strings.ReplaceAll(replacement, "${webRoot}", webRoot)
		}
		return out
	}
	return map[string]string{
		"/*":               webRoot + "/*",
		"webpack:///src/*": webRoot + "/src/*",
		"webpack:///./*":   webRoot + "/*",
		"webpack:///*":     "*",
		"webpack:///./~/*": webRoot + "/node_modules/*",
		"meteor://💻app/*": webRoot + "/*",
	}
}

func (n *NodeStrategy) AttachArgs(opts AttachOpts) map[string]interface{} {
	switch n.target(opts.Extra) {
	case "chrome":
		return n.buildBrowserArgs("pwa-chrome", "attach", "", opts.Extra)
	case "edge":
		return n.buildBrowserArgs("pwa-msedge", "attach", "", opts.Extra)
	default:
		host := opts.Host
		if host == "" {
			host = "127.0.0.1"
		}
		port := opts.Port
		if port == 0 {
			port = 9229
		}
		args := map[string]interface{}{
			"type":    "pwa-node",
			"request": "attach",
			"address": host,
			"port":    port,
		}
		if opts.PID != 0 {
			args["processId"] = opts.PID
		}
		return args
	}
}

// IsInternalFrame excludes node_modules and Node's internal modules.
func (n *NodeStrategy) IsInternalFrame(frame godap.StackFrame) bool {
	if frame.Source == nil {
		return false
	}
	path := frame.Source.Path
	return strings.Contains(path, "node_modules") || strings.HasPrefix(path, "node:internal") || strings.HasPrefix(frame.Name, "node:")
}

func (n *NodeStrategy) IsInternalVariable(v godap.Variable) bool {
	return false
}
