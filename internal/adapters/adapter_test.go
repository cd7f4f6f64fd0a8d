package adapters

import (
	"testing"

	"github.com/agent-tools/agent-debugger/internal/config"
	"github.com/agent-tools/agent-debugger/pkg/types"
	godap "github.com/google/go-dap"
)

func TestRegistry_Get(t *testing.T) {
	cfg := config.DefaultConfig()
	r := NewRegistry(cfg)

	// Node and LLDB are shared across more than one registered language
	// (JS/TS, and C/C++/Rust respectively), so Strategy.Language() reports
	// only the strategy's primary language, not every key it's registered
	// under.
	for _, lang := range []types.Language{
		types.LanguageGo, types.LanguagePython, types.LanguageJavaScript,
		types.LanguageTypeScript, types.LanguageC, types.LanguageCpp, types.LanguageRust,
	} {
		if _, err := r.Get(lang); err != nil {
			t.Errorf("Get(%s): unexpected error: %v", lang, err)
		}
	}

	if s, _ := r.Get(types.LanguageGo); s.Language() != types.LanguageGo {
		t.Errorf("Get(go): strategy reports language %s", s.Language())
	}

	if _, err := r.Get(types.Language("cobol")); err == nil {
		t.Error("Get(cobol): expected error for unregistered language")
	}
}

func TestDelveStrategy_IsInternalFrame(t *testing.T) {
	d := NewDelveStrategy(config.DelveConfig{})

	cases := []struct {
		name  string
		frame godap.StackFrame
		want  bool
	}{
		{"runtime frame", godap.StackFrame{Name: "runtime.gopanic"}, true},
		{"goroot source", godap.StackFrame{Name: "fmt.Println", Source: &godap.Source{Path: "/usr/local/go/src/GOROOT/fmt/print.go"}}, true},
		{"user frame", godap.StackFrame{Name: "main.main", Source: &godap.Source{Path: "/home/user/proj/main.go"}}, false},
	}
	for _, c := range cases {
		if got := d.IsInternalFrame(c.frame); got != c.want {
			t.Errorf("%s: IsInternalFrame() = %v, want %v", c.name, got, c.want)
		}
	}

	if d.IsInternalVariable(godap.Variable{Name: "x"}) {
		t.Error("Delve never hides variables")
	}
}

func TestDebugpyStrategy_IsInternalFrame(t *testing.T) {
	d := NewDebugpyStrategy(config.DebugpyConfig{}, config.LLDBConfig{}, config.GDBConfig{})

	cases := []struct {
		name  string
		frame godap.StackFrame
		want  bool
	}{
		{"no source", godap.StackFrame{Name: "<built-in>"}, false},
		{"pydevd internal", godap.StackFrame{Source: &godap.Source{Path: "/usr/lib/python3/pydevd.py"}}, true},
		{"vendored debugpy", godap.StackFrame{Source: &godap.Source{Path: "/opt/debugpy/_vendored/pydevd.py"}}, true},
		{"user code", godap.StackFrame{Source: &godap.Source{Path: "/home/user/app.py"}}, false},
	}
	for _, c := range cases {
		if got := d.IsInternalFrame(c.frame); got != c.want {
			t.Errorf("%s: IsInternalFrame() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestDebugpyStrategy_IsInternalVariable(t *testing.T) {
	d := NewDebugpyStrategy(config.DebugpyConfig{}, config.LLDBConfig{}, config.GDBConfig{})

	cases := []struct {
		name string
		v    godap.Variable
		want bool
	}{
		{"dunder", godap.Variable{Name: "__class__"}, true},
		{"plain", godap.Variable{Name: "count"}, false},
		{"single leading underscore", godap.Variable{Name: "_private"}, false},
	}
	for _, c := range cases {
		if got := d.IsInternalVariable(c.v); got != c.want {
			t.Errorf("%s: IsInternalVariable() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestNodeStrategy_IsInternalFrame(t *testing.T) {
	n := NewNodeStrategy(config.NodeConfig{})

	cases := []struct {
		name  string
		frame godap.StackFrame
		want  bool
	}{
		{"no source", godap.StackFrame{Name: "anonymous"}, false},
		{"node_modules", godap.StackFrame{Source: &godap.Source{Path: "/app/node_modules/express/index.js"}}, true},
		{"node internal path", godap.StackFrame{Source: &godap.Source{Path: "node:internal/modules/cjs/loader"}}, true},
		{"node internal name", godap.StackFrame{Name: "node:events", Source: &godap.Source{Path: ""}}, true},
		{"user code", godap.StackFrame{Source: &godap.Source{Path: "/app/src/index.js"}}, false},
	}
	for _, c := range cases {
		if got := n.IsInternalFrame(c.frame); got != c.want {
			t.Errorf("%s: IsInternalFrame() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestLLDBStrategy_IsInternalFrame(t *testing.T) {
	l := NewLLDBStrategy(config.LLDBConfig{})

	cases := []struct {
		name  string
		frame godap.StackFrame
		want  bool
	}{
		{"system lib path", godap.StackFrame{Source: &godap.Source{Path: "/usr/lib/libc.so.6"}}, true},
		{"rustc path", godap.StackFrame{Source: &godap.Source{Path: "/rustc/abc123/library/std/src/rt.rs"}}, true},
		{"std namespace name", godap.StackFrame{Name: "std::vector<int>::push_back"}, true},
		{"user frame", godap.StackFrame{Name: "main", Source: &godap.Source{Path: "/home/user/proj/main.cpp"}}, false},
	}
	for _, c := range cases {
		if got := l.IsInternalFrame(c.frame); got != c.want {
			t.Errorf("%s: IsInternalFrame() = %v, want %v", c.name, got, c.want)
		}
	}
}
