// Package session implements the process-wide single-session state machine:
// the daemon's one owning aggregate for the DAP client, the adapter
// strategy, the spawned adapter child process, and the uniform verb
// surface (start, attach, vars, stack, eval, step, continue, break,
// source, status, close) described by the command protocol.
//
// The process-wide global session is an acknowledged simplification. A
// multi-session extension would key this aggregate by session id and add
// a routing table in the daemon in front of it; nothing here precludes
// that shape, it is simply not built.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/agent-tools/agent-debugger/internal/adapters"
	"github.com/agent-tools/agent-debugger/internal/config"
	"github.com/agent-tools/agent-debugger/internal/dap"
	"github.com/agent-tools/agent-debugger/internal/errors"
	"github.com/agent-tools/agent-debugger/pkg/types"
	godap "github.com/google/go-dap"
	"github.com/google/uuid"
)

// closeGrace bounds how long `close` waits for the adapter child to exit
// after SIGTERM before escalating to SIGKILL.
const closeGrace = 3 * time.Second

// Session is the process-singleton aggregate described in the data model:
// the DAP client is non-nil iff state != idle; threadID/frameID are set
// only while paused; attachedMode is true only when entered via Attach.
type Session struct {
	mu sync.Mutex

	id       string
	state    types.State
	language types.Language
	program  string

	client   *dap.Client
	strategy adapters.Strategy
	cmd      *exec.Cmd

	threadID *int
	frameID  *int

	breakpoints  []types.BreakpointSpec
	attachedMode bool

	outputLog []string

	registry *adapters.Registry
	cfg      *config.Config
	log      *slog.Logger
}

// outputLogLimit bounds the drained-output ring buffer so a chatty debuggee
// cannot grow the daemon's memory unbounded; only the most recent lines
// survive for a --verbose status request.
const outputLogLimit = 200

func (s *Session) recordOutput(events []godap.OutputEventBody) {
	for _, e := range events {
		s.outputLog = append(s.outputLog, strings.TrimRight(e.Output, "\n"))
	}
	if len(s.outputLog) > outputLogLimit {
		s.outputLog = s.outputLog[len(s.outputLog)-outputLogLimit:]
	}
}

// DrainOutputLog returns and clears the adapter output accumulated since
// the last call, for the `status --verbose` enrichment. It is not part of
// any other verb's reply.
func (s *Session) DrainOutputLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.outputLog
	s.outputLog = nil
	return out
}

// New creates an idle session bound to a registry and configuration.
func New(registry *adapters.Registry, cfg *config.Config, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		state:    types.StateIdle,
		registry: registry,
		cfg:      cfg,
		log:      log,
	}
}

func (s *Session) transition(to types.State) {
	from := s.state
	s.state = to
	s.log.Info("session state transition", "session", s.id, "from", from, "to", to)
}

// Status returns a snapshot of the session for the `status` verb.
func (s *Session) Status() types.StatusInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() types.StatusInfo {
	info := types.StatusInfo{State: s.state, Language: s.language, Program: s.program}
	if s.cmd != nil && s.cmd.Process != nil {
		info.PID = s.cmd.Process.Pid
	}
	if s.state == types.StatePaused && s.threadID != nil {
		info.Stopped = &types.StoppedInfo{ThreadID: *s.threadID}
		if loc, err := s.currentLocation(); err == nil {
			info.Stopped.Description = fmt.Sprintf("%s at %s:%d", loc.name, loc.file, loc.line)
		}
	}
	return info
}

// resolveLanguage picks a strategy by explicit override or file extension.
func resolveLanguage(override string, program string) (types.Language, error) {
	if override != "" {
		return types.Language(override), nil
	}
	for ext, lang := range types.ExtensionLanguage {
		if strings.HasSuffix(program, ext) {
			return lang, nil
		}
	}
	return "", errors.UnsupportedExtension(program)
}

// Start launches a new debuggee. Precondition: state == idle.
func (s *Session) Start(req types.LaunchRequest) (types.StatusInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != types.StateIdle {
		return types.StatusInfo{}, errors.AlreadyActive()
	}

	language := req.Language
	var err error
	if language == "" {
		language, err = resolveLanguage("", req.Program)
		if err != nil {
			return types.StatusInfo{}, err
		}
	}

	strategy, err := s.registry.Get(language)
	if err != nil {
		return types.StatusInfo{}, errors.UnknownLanguage(string(language), []string{"go", "python", "javascript", "typescript", "c", "cpp", "rust"})
	}

	s.transition(types.StateStarting)
	s.id = uuid.NewString()

	if err := strategy.CheckInstalled(req.Runtime); err != nil {
		s.resetLocked()
		return types.StatusInfo{}, errors.MissingAdapterBinary(string(language), req.Runtime, err)
	}

	opts := adapters.LaunchOpts{
		Program:     req.Program,
		Args:        req.Args,
		Cwd:         req.Cwd,
		Env:         req.Env,
		StopOnEntry: req.StopOnEntry,
		Runtime:     req.Runtime,
	}

	client, cmd, err := strategy.Spawn(context.Background(), opts)
	if err != nil {
		s.resetLocked()
		return types.StatusInfo{}, errors.Wrap(errors.KindRuntime, fmt.Sprintf("failed to spawn adapter: %v", err), "check the adapter binary path in config", err)
	}

	result, err := adapters.RunInitFlow(client, strategy, opts, req.Breakpoints, s.cfg.Timeouts)
	if err != nil {
		_ = client.Close()
		_ = dap.KillProcessGroup(pidOf(cmd), cmd)
		s.resetLocked()
		return types.StatusInfo{}, errors.DeferredResponseFailed("launch", err)
	}

	s.language = language
	s.program = req.Program
	s.client = client
	s.strategy = strategy
	s.cmd = cmd
	s.breakpoints = req.Breakpoints
	s.attachedMode = false
	s.applyFlowResult(result)

	return s.statusLocked(), nil
}

// Attach connects to an already-running debuggee, either by host/port or
// by PID (via the strategy's Injector). Precondition: state == idle.
func (s *Session) Attach(req types.AttachRequest) (types.StatusInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != types.StateIdle {
		return types.StatusInfo{}, errors.AlreadyActive()
	}

	strategy, err := s.registry.Get(req.Language)
	if err != nil {
		return types.StatusInfo{}, errors.UnknownLanguage(string(req.Language), []string{"go", "python", "javascript", "typescript", "c", "cpp", "rust"})
	}

	s.transition(types.StateStarting)
	s.id = uuid.NewString()

	opts := adapters.AttachOpts{Host: req.Host, Port: req.Port, PID: req.PID, Runtime: req.Runtime}

	var client *dap.Client
	var cmd *exec.Cmd

	switch {
	case req.PID != 0 && req.Host == "" && req.Port == 0:
		// Attach by PID with no listening address given. debugpy grafts a
		// listener into the target via native-debugger injection; Delve and
		// LLDB instead spawn their own adapter process and attach it locally
		// (AttachArgs carries the PID for those strategies).
		if injector, ok := strategy.(adapters.Injector); ok {
			host, port, injectErr := injector.Inject(context.Background(), req.PID, "")
			if injectErr != nil {
				s.resetLocked()
				return types.StatusInfo{}, injectErr
			}
			opts.Host, opts.Port = host, port
			client, err = connectAttach(opts.Host, opts.Port)
		} else {
			client, cmd, err = strategy.Spawn(context.Background(), adapters.LaunchOpts{Runtime: req.Runtime})
		}
	case req.Host != "" || req.Port != 0:
		if spawner, ok := strategy.(adapters.AttachSpawner); ok {
			client, cmd, err = spawner.SpawnAttach(context.Background(), opts)
		} else {
			client, err = connectAttach(opts.Host, opts.Port)
		}
	default:
		s.resetLocked()
		return types.StatusInfo{}, errors.InvalidCommandSchema("attach requires either host/port or pid")
	}
	if err != nil {
		s.resetLocked()
		return types.StatusInfo{}, errors.Wrap(errors.KindRuntime, fmt.Sprintf("failed to connect to adapter: %v", err), "", err)
	}

	result, err := adapters.RunAttachFlow(client, strategy, opts, req.Breakpoints, s.cfg.Timeouts)
	if err != nil {
		_ = client.Close()
		s.resetLocked()
		return types.StatusInfo{}, errors.DeferredResponseFailed("attach", err)
	}

	s.language = req.Language
	s.client = client
	s.strategy = strategy
	s.cmd = cmd
	s.breakpoints = req.Breakpoints
	s.attachedMode = true
	s.applyFlowResult(result)

	return s.statusLocked(), nil
}

func (s *Session) applyFlowResult(result adapters.FlowResult) {
	s.state = result.State
	if result.State == types.StatePaused {
		threadID := result.ThreadID
		s.threadID = &threadID
		s.refreshFrameLocked()
	}
}

// Vars fetches the locals scope for the current frame. Precondition: paused.
func (s *Session) Vars() (types.VarsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != types.StatePaused || s.frameID == nil {
		return types.VarsSnapshot{}, errors.WrongState("vars", string(s.state), string(types.StatePaused))
	}

	scopes, err := s.client.Scopes(*s.frameID, s.cfg.Timeouts.RequestWait)
	if err != nil {
		return types.VarsSnapshot{}, errors.Wrap(errors.KindRuntime, err.Error(), "", err)
	}

	snapshot := types.VarsSnapshot{FrameID: *s.frameID, Variables: map[int][]types.Variable{}}
	for _, sc := range scopes {
		snapshot.Scopes = append(snapshot.Scopes, types.Scope{Name: sc.Name, VariablesReference: sc.VariablesReference, Expensive: sc.Expensive})
		if !isLocalsScope(sc.Name) {
			continue
		}
		vars, err := s.client.Variables(sc.VariablesReference, 0, 100, s.cfg.Timeouts.RequestWait)
		if err != nil {
			return types.VarsSnapshot{}, errors.Wrap(errors.KindRuntime, err.Error(), "", err)
		}
		snapshot.Variables[sc.VariablesReference] = filterVariables(vars, s.strategy)
	}
	return snapshot, nil
}

func isLocalsScope(name string) bool {
	return name == "Locals" || name == "Local"
}

// Stack fetches the call stack for the current thread, filtering internal
// frames. Precondition: paused.
func (s *Session) Stack() (types.StackSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != types.StatePaused || s.threadID == nil {
		return types.StackSnapshot{}, errors.WrongState("stack", string(s.state), string(types.StatePaused))
	}

	frames, _, err := s.client.StackTrace(*s.threadID, 0, 50, s.cfg.Timeouts.RequestWait)
	if err != nil {
		return types.StackSnapshot{}, errors.Wrap(errors.KindRuntime, err.Error(), "", err)
	}

	filtered := filterFrames(frames, s.strategy)
	out := make([]types.StackFrame, len(filtered))
	for i, f := range filtered {
		out[i] = toStackFrame(f)
	}
	return types.StackSnapshot{ThreadID: *s.threadID, Frames: out}, nil
}

// Eval evaluates an expression verbatim in the current frame. Precondition:
// paused. Never changes state or location.
func (s *Session) Eval(expression string) (types.EvaluateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != types.StatePaused || s.frameID == nil {
		return types.EvaluateResult{}, errors.WrongState("eval", string(s.state), string(types.StatePaused))
	}

	result, err := s.client.Evaluate(expression, *s.frameID, "repl", s.cfg.Timeouts.RequestWait)
	if err != nil {
		return types.EvaluateResult{}, errors.EvaluationFailed(expression, err)
	}
	return types.EvaluateResult{Result: result.Result, Type: result.Type, VariablesReference: result.VariablesReference}, nil
}

// Step sends next/stepIn/stepOut and waits for the resulting stop.
// Precondition: paused.
func (s *Session) Step(kind string) (types.StatusInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != types.StatePaused || s.threadID == nil {
		return types.StatusInfo{}, errors.WrongState("step", string(s.state), string(types.StatePaused))
	}

	var err error
	switch kind {
	case "into":
		err = s.client.StepIn(*s.threadID, s.cfg.Timeouts.RequestWait)
	case "out":
		err = s.client.StepOut(*s.threadID, s.cfg.Timeouts.RequestWait)
	default:
		err = s.client.Next(*s.threadID, s.cfg.Timeouts.RequestWait)
	}
	if err != nil {
		return types.StatusInfo{}, errors.Wrap(errors.KindRuntime, err.Error(), "", err)
	}

	s.transition(types.StateRunning)
	s.waitForStopLocked()
	return s.statusLocked(), nil
}

// Continue resumes execution. Precondition: paused or running.
func (s *Session) Continue() (types.StatusInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != types.StatePaused && s.state != types.StateRunning {
		return types.StatusInfo{}, errors.WrongState("continue", string(s.state), string(types.StatePaused))
	}

	if s.state == types.StatePaused {
		threadID := 1
		if s.threadID != nil {
			threadID = *s.threadID
		}
		if err := s.client.Continue(threadID, s.cfg.Timeouts.RequestWait); err != nil {
			return types.StatusInfo{}, errors.Wrap(errors.KindRuntime, err.Error(), "", err)
		}
		s.transition(types.StateRunning)
	}

	s.waitForStopLocked()
	return s.statusLocked(), nil
}

// Break sets a single-line breakpoint in a file. This replaces rather than
// merges the file's existing breakpoint set, since DAP requires the full
// per-file list on every call and this verb only knows about the one line
// it was given.
func (s *Session) Break(spec types.BreakpointSpec) (types.Breakpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == types.StateIdle {
		return types.Breakpoint{}, errors.WrongState("break", string(s.state), "non-idle")
	}

	verified, err := s.client.SetBreakpoints(godap.Source{Path: spec.Path}, []godap.SourceBreakpoint{{Line: spec.Line, Condition: spec.Condition}}, s.cfg.Timeouts.RequestWait)
	if err != nil {
		return types.Breakpoint{}, errors.BreakpointFailed(spec.Path, spec.Line, err.Error())
	}
	if len(verified) == 0 {
		return types.Breakpoint{}, errors.BreakpointFailed(spec.Path, spec.Line, "adapter returned no breakpoints")
	}
	v := verified[0]
	return types.Breakpoint{ID: v.Id, Verified: v.Verified, Message: v.Message, Line: v.Line, Condition: spec.Condition}, nil
}

// Source reads a window of source lines around file:line, or around the
// current location if file is omitted while paused. window is the number
// of lines of context on each side; a non-positive value falls back to 5.
func (s *Session) Source(file string, line, window int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if window <= 0 {
		window = 5
	}

	if file == "" {
		if s.state != types.StatePaused {
			return nil, errors.WrongState("source", string(s.state), string(types.StatePaused))
		}
		loc, err := s.currentLocation()
		if err != nil {
			return nil, errors.Wrap(errors.KindRuntime, err.Error(), "", err)
		}
		file, line = loc.file, loc.line
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(errors.KindRuntime, fmt.Sprintf("cannot read %s: %v", file, err), "", err)
	}
	lines := strings.Split(string(data), "\n")

	start := line - window
	if start < 1 {
		start = 1
	}
	end := line + window
	if end > len(lines) {
		end = len(lines)
	}

	out := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		marker := "  "
		if i == line {
			marker = "→ "
		}
		out = append(out, fmt.Sprintf("%s%4d  %s", marker, i, lines[i-1]))
	}
	return out, nil
}

// Close disconnects the DAP client, terminates the adapter child (SIGTERM
// escalating to SIGKILL), and returns the session to idle. Terminating the
// debuggee itself is skipped when attachedMode is true.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == types.StateIdle {
		return nil
	}

	if s.client != nil {
		_ = s.client.Disconnect(!s.attachedMode)
	}
	if s.cmd != nil {
		_ = dap.TerminateGraceful(pidOf(s.cmd), s.cmd, closeGrace)
	}

	s.resetLocked()
	return nil
}

func (s *Session) resetLocked() {
	s.client = nil
	s.strategy = nil
	s.cmd = nil
	s.threadID = nil
	s.frameID = nil
	s.breakpoints = nil
	s.attachedMode = false
	s.state = types.StateIdle
}

// waitForStopLocked polls in 1s ticks for a `stopped` event, draining
// terminated/exited and output events between ticks. Called with s.mu
// already held.
func (s *Session) waitForStopLocked() {
	for {
		stopped, err := s.client.WaitStopped(1 * time.Second)
		if err != nil {
			s.log.Warn("wait for stopped failed", "session", s.id, "error", err)
			s.resetLocked()
			return
		}
		if stopped != nil {
			threadID := stopped.ThreadId
			if threadID == 0 {
				threadID = 1
			}
			s.threadID = &threadID
			s.refreshFrameLocked()
			s.transition(types.StatePaused)
			return
		}

		if terminated, _ := s.client.DrainTerminal(); terminated {
			s.transition(types.StateTerminated)
			s.threadID = nil
			s.frameID = nil
			return
		}
		s.recordOutput(s.client.DrainOutput())
	}
}

func (s *Session) refreshFrameLocked() {
	if s.threadID == nil {
		return
	}
	frames, _, err := s.client.StackTrace(*s.threadID, 0, 1, s.cfg.Timeouts.RequestWait)
	if err != nil || len(frames) == 0 {
		return
	}
	frameID := frames[0].Id
	s.frameID = &frameID
}

type location struct {
	file string
	line int
	name string
}

func (s *Session) currentLocation() (location, error) {
	if s.threadID == nil {
		return location{}, fmt.Errorf("no current thread")
	}
	frames, _, err := s.client.StackTrace(*s.threadID, 0, 1, s.cfg.Timeouts.RequestWait)
	if err != nil || len(frames) == 0 {
		return location{}, fmt.Errorf("no current frame")
	}
	f := frames[0]
	loc := location{line: f.Line, name: f.Name}
	if f.Source != nil {
		loc.file = f.Source.Path
	}
	return loc, nil
}

func toStackFrame(f godap.StackFrame) types.StackFrame {
	out := types.StackFrame{ID: f.Id, Name: f.Name, Line: f.Line, Column: f.Column}
	if f.Source != nil {
		out.Source = &types.SourceInfo{Name: f.Source.Name, Path: f.Source.Path, SourceReference: f.Source.SourceReference}
	}
	return out
}

// filterFrames applies the strategy's internal-frame filter but never
// empties the list entirely: a real pause always has at least one frame
// worth showing.
func filterFrames(frames []godap.StackFrame, strategy adapters.Strategy) []godap.StackFrame {
	if strategy == nil {
		return frames
	}
	var kept []godap.StackFrame
	for _, f := range frames {
		if !strategy.IsInternalFrame(f) {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		return frames
	}
	return kept
}

func filterVariables(vars []godap.Variable, strategy adapters.Strategy) []types.Variable {
	out := make([]types.Variable, 0, len(vars))
	for _, v := range vars {
		if strategy != nil && strategy.IsInternalVariable(v) {
			continue
		}
		out = append(out, types.Variable{Name: v.Name, Value: v.Value, Type: v.Type, VariablesReference: v.VariablesReference})
	}
	return out
}

func pidOf(cmd *exec.Cmd) int {
	if cmd == nil || cmd.Process == nil {
		return 0
	}
	return cmd.Process.Pid
}

func connectAttach(host string, port int) (*dap.Client, error) {
	address := fmt.Sprintf("%s:%d", host, port)
	var lastErr error
	for i := 0; i < 20; i++ {
		transport, err := dap.NewTCPTransport(address)
		if err == nil {
			return dap.NewClient(transport, nil), nil
		}
		lastErr = err
		time.Sleep(200 * time.Millisecond)
	}
	return nil, fmt.Errorf("connect to %s: %w", address, lastErr)
}
