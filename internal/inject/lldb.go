package inject

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
)

// runLLDBInjection drives lldb in batch mode to attach to pid, acquire the
// GIL, run script through the interpreter, release the GIL, and detach.
// lldb batch commands are passed as repeated -o flags, executed in order,
// with -b ending the session once they've all run.
func runLLDBInjection(ctx context.Context, lldbPath string, pid int, script string) error {
	quoted := quoteForNativeDebugger(script)

	cmd := exec.CommandContext(ctx, lldbPath,
		"-p", fmt.Sprintf("%d", pid),
		"-b",
		"-o", "expr (int)PyGILState_Ensure()",
		"-o", fmt.Sprintf("expr (int)PyRun_SimpleString(\"%s\")", quoted),
		"-o", "expr (int)PyGILState_Release(0)",
		"-o", "detach",
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("lldb batch injection failed: %w (output: %s)", err, out.String())
	}
	return checkRunSimpleStringResult(out.String())
}

// lldbExprResult matches lldb's `expr` output, e.g. "(int) $0 = 0".
var lldbExprResult = regexp.MustCompile(`\(int\) \$\d+ = (-?\d+)`)

func checkRunSimpleStringResult(output string) error {
	matches := lldbExprResult.FindAllStringSubmatch(output, -1)
	// Three expr calls run: Ensure, RunSimpleString, Release, in order.
	// RunSimpleString's return value is the middle match; a non-zero value
	// means the injected script raised an exception.
	if len(matches) < 2 {
		return nil // output shape unexpected; treat as best-effort success
	}
	if matches[1][1] != "0" {
		return fmt.Errorf("PyRun_SimpleString returned %s (non-zero indicates the injected script raised)", matches[1][1])
	}
	return nil
}
