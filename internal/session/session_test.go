package session

import (
	"testing"

	"github.com/agent-tools/agent-debugger/internal/adapters"
	"github.com/agent-tools/agent-debugger/internal/config"
	"github.com/agent-tools/agent-debugger/pkg/types"
)

func newTestSession() *Session {
	cfg := config.DefaultConfig()
	return New(adapters.NewRegistry(cfg), cfg, nil)
}

func TestSession_StatusIdle(t *testing.T) {
	s := newTestSession()
	status := s.Status()
	if status.State != types.StateIdle {
		t.Errorf("expected idle, got %s", status.State)
	}
}

func TestSession_Start_UnknownLanguage(t *testing.T) {
	s := newTestSession()
	_, err := s.Start(types.LaunchRequest{Language: types.Language("ruby"), Program: "main.rb"})
	if err == nil {
		t.Fatal("expected error for unknown language")
	}
	if s.Status().State != types.StateIdle {
		t.Errorf("expected session to remain idle after a rejected start, got %s", s.Status().State)
	}
}

func TestSession_Start_UnresolvableExtension(t *testing.T) {
	s := newTestSession()
	_, err := s.Start(types.LaunchRequest{Program: "main.xyz"})
	if err == nil {
		t.Fatal("expected error when language cannot be inferred from extension")
	}
}

func TestSession_VerbsRequireActiveSession(t *testing.T) {
	s := newTestSession()

	if _, err := s.Vars(); err == nil {
		t.Error("expected vars to fail while idle")
	}
	if _, err := s.Stack(); err == nil {
		t.Error("expected stack to fail while idle")
	}
	if _, err := s.Eval("1+1"); err == nil {
		t.Error("expected eval to fail while idle")
	}
	if _, err := s.Step("over"); err == nil {
		t.Error("expected step to fail while idle")
	}
	if _, err := s.Continue(); err == nil {
		t.Error("expected continue to fail while idle")
	}
	if _, err := s.Break(types.BreakpointSpec{Path: "main.go", Line: 10}); err == nil {
		t.Error("expected break to fail while idle")
	}
	if _, err := s.Source("", 0, 0); err == nil {
		t.Error("expected source with no file to fail while idle")
	}
}

func TestSession_CloseIdleIsNoop(t *testing.T) {
	s := newTestSession()
	if err := s.Close(); err != nil {
		t.Errorf("expected closing an idle session to be a no-op, got %v", err)
	}
}

func TestSession_Start_AlreadyActive(t *testing.T) {
	s := newTestSession()
	s.mu.Lock()
	s.state = types.StateRunning
	s.mu.Unlock()

	_, err := s.Start(types.LaunchRequest{Program: "main.go"})
	if err == nil {
		t.Fatal("expected error when starting over an active session")
	}
}

func TestResolveLanguage_FromExtension(t *testing.T) {
	lang, err := resolveLanguage("", "main.py")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lang != types.LanguagePython {
		t.Errorf("expected python, got %s", lang)
	}
}

func TestResolveLanguage_Override(t *testing.T) {
	lang, err := resolveLanguage("go", "main.py")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lang != types.LanguageGo {
		t.Errorf("expected override to win, got %s", lang)
	}
}
