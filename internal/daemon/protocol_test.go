package daemon

import "testing"

func TestValidate_StartRequiresScript(t *testing.T) {
	if err := validate(Command{Action: "start"}); err == nil {
		t.Fatal("expected error for start with no script")
	}
	if err := validate(Command{Action: "start", Script: "main.go"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_AttachRequiresPortOrPID(t *testing.T) {
	if err := validate(Command{Action: "attach"}); err == nil {
		t.Fatal("expected error for attach with neither port nor pid")
	}
	if err := validate(Command{Action: "attach", Port: 5678}); err != nil {
		t.Fatalf("unexpected error for port-only attach: %v", err)
	}
	if err := validate(Command{Action: "attach", PID: 1234}); err != nil {
		t.Fatalf("unexpected error for pid-only attach: %v", err)
	}
}

func TestValidate_EvalRequiresExpression(t *testing.T) {
	if err := validate(Command{Action: "eval"}); err == nil {
		t.Fatal("expected error for eval with no expression")
	}
	if err := validate(Command{Action: "eval", Expression: "1 + 1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_BreakRequiresFileAndPositiveLine(t *testing.T) {
	cases := []Command{
		{Action: "break"},
		{Action: "break", File: "main.go"},
		{Action: "break", File: "main.go", Line: 0},
		{Action: "break", File: "main.go", Line: -1},
	}
	for _, c := range cases {
		if err := validate(c); err == nil {
			t.Errorf("expected error for %+v", c)
		}
	}
	if err := validate(Command{Action: "break", File: "main.go", Line: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_NoArgVerbsAlwaysPass(t *testing.T) {
	for _, action := range []string{"vars", "stack", "step", "continue", "source", "status", "close"} {
		if err := validate(Command{Action: action}); err != nil {
			t.Errorf("unexpected error for %s: %v", action, err)
		}
	}
}

func TestValidate_UnknownAction(t *testing.T) {
	if err := validate(Command{Action: "reboot"}); err == nil {
		t.Fatal("expected error for unknown action")
	}
}
