// Package breakpoint parses the `file:line[:condition]` breakpoint grammar
// used by the CLI's repeatable --break flag on `start` and `attach`.
package breakpoint

import (
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agent-tools/agent-debugger/pkg/types"
)

// Parse parses one `file:line[:condition]` token. condition may itself
// contain colons; everything after the second colon joins back together.
// Malformed tokens are reported via ok=false rather than an error. The
// parser is deliberately lenient and callers log skipped tokens themselves.
func Parse(raw string) (spec types.BreakpointSpec, ok bool) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) < 2 {
		return types.BreakpointSpec{}, false
	}

	path := parts[0]
	if path == "" {
		return types.BreakpointSpec{}, false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return types.BreakpointSpec{}, false
	}

	line, err := strconv.Atoi(parts[1])
	if err != nil || line < 1 {
		return types.BreakpointSpec{}, false
	}

	spec = types.BreakpointSpec{Path: abs, Line: line}
	if len(parts) == 3 {
		spec.Condition = parts[2]
	}
	return spec, true
}

// ParseAll parses every token and skips malformed ones, logging each skip
// at Warn level when log is non-nil; with a nil log the skip is silent.
func ParseAll(raw []string, log *slog.Logger) []types.BreakpointSpec {
	specs := make([]types.BreakpointSpec, 0, len(raw))
	for _, token := range raw {
		spec, ok := Parse(token)
		if !ok {
			if log != nil {
				log.Warn("skipping malformed breakpoint token", "token", token)
			}
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}

// GroupByFile buckets specs by absolute path, since DAP requires sending the
// full per-file set in one request. The result is a map, so file order is
// not preserved; within a file, specs keep their input order.
func GroupByFile(specs []types.BreakpointSpec) map[string][]types.BreakpointSpec {
	out := make(map[string][]types.BreakpointSpec)
	for _, s := range specs {
		out[s.Path] = append(out[s.Path], s)
	}
	return out
}
