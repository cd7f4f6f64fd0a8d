package main

import (
	"path/filepath"
	"testing"
)

func TestParseFileLine_Valid(t *testing.T) {
	file, line, err := parseFileLine([]string{"main.go:42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := filepath.Abs("main.go")
	if file != want {
		t.Errorf("expected file %s, got %s", want, file)
	}
	if line != 42 {
		t.Errorf("expected line 42, got %d", line)
	}
}

func TestParseFileLine_Malformed(t *testing.T) {
	cases := []string{"main.go", "main.go:notanumber", "main.go:0", "main.go:-1"}
	for _, c := range cases {
		if _, _, err := parseFileLine([]string{c}); err == nil {
			t.Errorf("expected error for %q", c)
		}
	}
}

func TestParseFileLine_Omitted(t *testing.T) {
	file, line, err := parseFileLine(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file != "" || line != 0 {
		t.Errorf("expected zero-valued file/line, got %q/%d", file, line)
	}
}
