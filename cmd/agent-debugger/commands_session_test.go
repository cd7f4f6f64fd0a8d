package main

import "testing"

func TestLanguageFromExtension(t *testing.T) {
	cases := map[string]string{
		"main.go":    "go",
		"script.py":  "python",
		"app.js":     "javascript",
		"app.ts":     "typescript",
		"lib.rs":     "rust",
		"prog.c":     "c",
		"prog.cpp":   "cpp",
		"README.txt": "",
	}
	for path, want := range cases {
		if got := languageFromExtension(path); got != want {
			t.Errorf("languageFromExtension(%q) = %q, want %q", path, got, want)
		}
	}
}
