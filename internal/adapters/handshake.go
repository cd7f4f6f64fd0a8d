package adapters

import (
	"fmt"

	"github.com/agent-tools/agent-debugger/internal/config"
	"github.com/agent-tools/agent-debugger/internal/dap"
	"github.com/agent-tools/agent-debugger/pkg/types"
	godap "github.com/google/go-dap"
)

// FlowResult is the outcome of running initFlow or attachFlow: either the
// debuggee is paused at a location, running free, or already terminated.
type FlowResult struct {
	State       types.State
	ThreadID    int
	Reason      string
	Breakpoints []types.Breakpoint
	ExitCode    *int
}

// bpFile groups one file's breakpoint specs for a single setBreakpoints call.
type bpFile struct {
	path string
	bps  []types.BreakpointSpec
}

func groupByFile(specs []types.BreakpointSpec) []bpFile {
	order := []string{}
	byFile := map[string][]types.BreakpointSpec{}
	for _, s := range specs {
		if _, ok := byFile[s.Path]; !ok {
			order = append(order, s.Path)
		}
		byFile[s.Path] = append(byFile[s.Path], s)
	}
	out := make([]bpFile, 0, len(order))
	for _, path := range order {
		out = append(out, bpFile{path: path, bps: byFile[path]})
	}
	return out
}

func sendBreakpoints(client *dap.Client, specs []types.BreakpointSpec, timeouts config.Timeouts) ([]types.Breakpoint, error) {
	var result []types.Breakpoint
	for _, f := range groupByFile(specs) {
		sourceBps := make([]godap.SourceBreakpoint, len(f.bps))
		for i, b := range f.bps {
			sourceBps[i] = godap.SourceBreakpoint{Line: b.Line, Condition: b.Condition}
		}
		verified, err := client.SetBreakpoints(godap.Source{Path: f.path}, sourceBps, timeouts.RequestWait)
		if err != nil {
			return nil, fmt.Errorf("setBreakpoints for %s: %w", f.path, err)
		}
		for _, v := range verified {
			result = append(result, types.Breakpoint{
				ID:       v.Id,
				Verified: v.Verified,
				Message:  v.Message,
				Line:     v.Line,
			})
		}
	}
	return result, nil
}

// RunInitFlow performs the canonical launch handshake shared by every
// launch-capable strategy: initialize, launch (deferred), wait for
// initialized, register breakpoints, disable exception breaks,
// configurationDone, resolve the deferred launch response, then wait for
// either stopped or terminated.
func RunInitFlow(client *dap.Client, strategy Strategy, opts LaunchOpts, breakpoints []types.BreakpointSpec, timeouts config.Timeouts) (FlowResult, error) {
	if _, err := client.Initialize("agent-debugger", "agent-debugger", timeouts.RequestWait); err != nil {
		return FlowResult{}, fmt.Errorf("initialize: %w", err)
	}

	launchSeq, err := client.LaunchAsync(strategy.LaunchArgs(opts))
	if err != nil {
		return FlowResult{}, fmt.Errorf("launch: %w", err)
	}

	if err := client.WaitInitialized(timeouts.InitializedWait); err != nil {
		return FlowResult{}, fmt.Errorf("waiting for initialized event: %w", err)
	}

	verifiedBps, err := sendBreakpoints(client, breakpoints, timeouts)
	if err != nil {
		return FlowResult{}, err
	}

	if err := client.SetExceptionBreakpoints(nil, timeouts.RequestWait); err != nil {
		return FlowResult{}, fmt.Errorf("setExceptionBreakpoints: %w", err)
	}

	if err := client.ConfigurationDone(timeouts.RequestWait); err != nil {
		return FlowResult{}, fmt.Errorf("configurationDone: %w", err)
	}

	if err := client.WaitLaunchResponse(launchSeq, timeouts.DeferredResponseWait); err != nil {
		return FlowResult{}, fmt.Errorf("launch response: %w", err)
	}

	return waitForInitialStop(client, verifiedBps, timeouts)
}

// RunAttachFlow mirrors RunInitFlow with `attach` in place of `launch`.
// Completion leaves the session running rather than paused, since the
// debuggee was already executing before the DAP connection was made.
func RunAttachFlow(client *dap.Client, strategy Strategy, opts AttachOpts, breakpoints []types.BreakpointSpec, timeouts config.Timeouts) (FlowResult, error) {
	if _, err := client.Initialize("agent-debugger", "agent-debugger", timeouts.RequestWait); err != nil {
		return FlowResult{}, fmt.Errorf("initialize: %w", err)
	}

	attachSeq, err := client.AttachAsync(strategy.AttachArgs(opts))
	if err != nil {
		return FlowResult{}, fmt.Errorf("attach: %w", err)
	}

	if err := client.WaitInitialized(timeouts.InitializedWait); err != nil {
		return FlowResult{}, fmt.Errorf("waiting for initialized event: %w", err)
	}

	verifiedBps, err := sendBreakpoints(client, breakpoints, timeouts)
	if err != nil {
		return FlowResult{}, err
	}

	if err := client.SetExceptionBreakpoints(nil, timeouts.RequestWait); err != nil {
		return FlowResult{}, fmt.Errorf("setExceptionBreakpoints: %w", err)
	}

	if err := client.ConfigurationDone(timeouts.RequestWait); err != nil {
		return FlowResult{}, fmt.Errorf("configurationDone: %w", err)
	}

	if err := client.WaitAttachResponse(attachSeq, timeouts.DeferredResponseWait); err != nil {
		return FlowResult{}, fmt.Errorf("attach response: %w", err)
	}

	return FlowResult{State: types.StateRunning, Breakpoints: verifiedBps}, nil
}

// waitForInitialStop implements initFlow step 8: a stopped event means
// paused, an already-queued terminated means the program ran to
// completion without hitting a breakpoint, and absence of either means
// the debuggee is running free (e.g. no breakpoints were set).
func waitForInitialStop(client *dap.Client, verifiedBps []types.Breakpoint, timeouts config.Timeouts) (FlowResult, error) {
	stopped, err := client.WaitStopped(timeouts.StoppedWait)
	if err != nil {
		return FlowResult{}, fmt.Errorf("waiting for stopped event: %w", err)
	}
	if stopped != nil {
		threadID := stopped.ThreadId
		if threadID == 0 {
			threadID = 1
		}
		return FlowResult{
			State:       types.StatePaused,
			ThreadID:    threadID,
			Reason:      stopped.Reason,
			Breakpoints: verifiedBps,
		}, nil
	}

	if terminated, exitCode := client.DrainTerminal(); terminated {
		return FlowResult{State: types.StateTerminated, ExitCode: exitCode, Breakpoints: verifiedBps}, nil
	}

	return FlowResult{State: types.StateRunning, Breakpoints: verifiedBps}, nil
}
