package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Adapters.Go.Path != "dlv" {
		t.Errorf("expected Go adapter path 'dlv', got %s", cfg.Adapters.Go.Path)
	}
	if cfg.Adapters.Python.PythonPath != "python3" {
		t.Errorf("expected Python path 'python3', got %s", cfg.Adapters.Python.PythonPath)
	}
	if cfg.Adapters.Node.NodePath != "node" {
		t.Errorf("expected Node path 'node', got %s", cfg.Adapters.Node.NodePath)
	}
	if cfg.Timeouts.InitializedWait != 5*time.Second {
		t.Errorf("expected InitializedWait 5s, got %v", cfg.Timeouts.InitializedWait)
	}
	if cfg.SessionDir == "" {
		t.Error("expected a non-empty default session dir")
	}
	if cfg.Adapters.LLDB.BatchPath != "lldb" {
		t.Errorf("expected LLDB batch path 'lldb', got %s", cfg.Adapters.LLDB.BatchPath)
	}
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defaults := DefaultConfig()
	if cfg.Adapters.Go.Path != defaults.Adapters.Go.Path {
		t.Errorf("expected default Go path, got %s", cfg.Adapters.Go.Path)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	configJSON := `{
		"sessionDir": "/tmp/agent-debugger-test",
		"adapters": {
			"go": {
				"path": "/custom/dlv",
				"buildFlags": "-race"
			},
			"python": {
				"pythonPath": "/usr/bin/python3.10"
			}
		}
	}`

	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.SessionDir != "/tmp/agent-debugger-test" {
		t.Errorf("expected overridden sessionDir, got %s", cfg.SessionDir)
	}
	if cfg.Adapters.Go.Path != "/custom/dlv" {
		t.Errorf("expected Go adapter path '/custom/dlv', got %s", cfg.Adapters.Go.Path)
	}
	if cfg.Adapters.Go.BuildFlags != "-race" {
		t.Errorf("expected Go buildFlags '-race', got %s", cfg.Adapters.Go.BuildFlags)
	}
	if cfg.Adapters.Python.PythonPath != "/usr/bin/python3.10" {
		t.Errorf("expected overridden python path, got %s", cfg.Adapters.Python.PythonPath)
	}
}

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/config.json")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Adapters.Go.Path != "dlv" {
		t.Errorf("expected defaults when file is missing, got %s", cfg.Adapters.Go.Path)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{invalid}`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoadConfig_PartialOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	configJSON := `{"adapters": {"node": {"nodePath": "/opt/node/bin/node"}}}`

	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Adapters.Node.NodePath != "/opt/node/bin/node" {
		t.Errorf("expected overridden node path, got %s", cfg.Adapters.Node.NodePath)
	}
	if cfg.Adapters.Go.Path != "dlv" {
		t.Errorf("expected Go path to retain default, got %s", cfg.Adapters.Go.Path)
	}
}
