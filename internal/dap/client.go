package dap

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/go-dap"
)

// pendingSlot is a one-shot correlation entry keyed by request seq. Exactly
// one of Client's two maps (pending, deferred) ever holds a given seq.
type pendingSlot struct {
	ch chan dap.Message
}

// Client is the DAP request/response/event dispatcher described in the
// transport contract: it reconciles synchronous requests, deferred
// (launch/attach-style) requests, and an event queue fed by a single
// read-loop goroutine.
type Client struct {
	transport *Transport

	mu       sync.Mutex
	pending  map[int]*pendingSlot // request() callers awaiting a response
	deferred map[int]*pendingSlot // requestAsync() callers awaiting waitForResponse()

	eventMu sync.Mutex
	events  []dap.Message
	waiters []eventWaiter

	capabilities dap.Capabilities

	log *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	closeErr error
}

type eventWaiter struct {
	name  string
	reply chan dap.Message
}

// NewClient wraps a connected Transport and starts its read loop.
func NewClient(transport *Transport, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		transport: transport,
		pending:   make(map[int]*pendingSlot),
		deferred:  make(map[int]*pendingSlot),
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
	c.wg.Add(1)
	go c.readLoop()
	return c
}

func (c *Client) readLoop() {
	defer c.wg.Done()
	for {
		msg, err := c.transport.Receive()
		if err != nil {
			c.rejectAll(fmt.Errorf("dap transport closed: %w", err))
			return
		}
		c.dispatch(msg)
	}
}

// dispatch routes one inbound message: responses resolve a pending or
// deferred slot by RequestSeq; everything else is an event, enqueued and
// also offered to any blocked waitForEvent caller.
func (c *Client) dispatch(msg dap.Message) {
	if seq, ok := requestSeqOf(msg); ok {
		c.mu.Lock()
		slot, isPending := c.pending[seq]
		if isPending {
			delete(c.pending, seq)
		} else if s, isDeferred := c.deferred[seq]; isDeferred {
			slot, isPending = s, true
			delete(c.deferred, seq)
		}
		c.mu.Unlock()
		if isPending {
			slot.ch <- msg
			return
		}
		c.log.Debug("dap response for unknown seq", "seq", seq)
		return
	}
	c.enqueueEvent(msg)
}

func (c *Client) enqueueEvent(msg dap.Message) {
	name := eventNameOf(msg)
	c.eventMu.Lock()
	defer c.eventMu.Unlock()

	for i, w := range c.waiters {
		if w.name == name {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			w.reply <- msg
			return
		}
	}
	c.events = append(c.events, msg)
}

func (c *Client) rejectAll(err error) {
	c.mu.Lock()
	c.closeErr = err
	pending := c.pending
	deferred := c.deferred
	c.pending = make(map[int]*pendingSlot)
	c.deferred = make(map[int]*pendingSlot)
	c.mu.Unlock()

	for _, slot := range pending {
		close(slot.ch)
	}
	for _, slot := range deferred {
		close(slot.ch)
	}

	c.eventMu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.eventMu.Unlock()
	for _, w := range waiters {
		close(w.reply)
	}
}

// request sends msg and suspends the caller until the matching response
// arrives or timeout elapses. On timeout the pending slot is dropped; a
// later-arriving response for that seq is logged and discarded.
func (c *Client) request(req dap.Message, timeout time.Duration) (dap.Message, error) {
	seq := c.transport.NextSeq()
	setSeq(req, seq)

	slot := &pendingSlot{ch: make(chan dap.Message, 1)}
	c.mu.Lock()
	c.pending[seq] = slot
	c.mu.Unlock()

	if err := c.transport.Send(req); err != nil {
		c.mu.Lock()
		delete(c.pending, seq)
		c.mu.Unlock()
		return nil, fmt.Errorf("send %s: %w", commandOf(req), err)
	}

	select {
	case msg, ok := <-slot.ch:
		if !ok {
			return nil, fmt.Errorf("connection closed while awaiting %s", commandOf(req))
		}
		return msg, nil
	case <-time.After(timeout):
		c.mu.Lock()
		delete(c.pending, seq)
		c.mu.Unlock()
		return nil, fmt.Errorf("%s timed out after %s", commandOf(req), timeout)
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	}
}

// requestAsync sends msg and returns its seq immediately without waiting
// for a response. Used for launch/attach, whose response some adapters
// (debugpy) defer until after configurationDone.
func (c *Client) requestAsync(req dap.Message) (int, error) {
	seq := c.transport.NextSeq()
	setSeq(req, seq)

	slot := &pendingSlot{ch: make(chan dap.Message, 1)}
	c.mu.Lock()
	c.deferred[seq] = slot
	c.mu.Unlock()

	if err := c.transport.Send(req); err != nil {
		c.mu.Lock()
		delete(c.deferred, seq)
		c.mu.Unlock()
		return 0, fmt.Errorf("send %s: %w", commandOf(req), err)
	}
	return seq, nil
}

// waitForResponse suspends until the deferred slot for seq resolves.
func (c *Client) waitForResponse(seq int, timeout time.Duration) (dap.Message, error) {
	c.mu.Lock()
	slot, ok := c.deferred[seq]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no deferred request pending for seq %d", seq)
	}

	select {
	case msg, ok := <-slot.ch:
		if !ok {
			return nil, fmt.Errorf("connection closed while awaiting seq %d", seq)
		}
		return msg, nil
	case <-time.After(timeout):
		c.mu.Lock()
		delete(c.deferred, seq)
		c.mu.Unlock()
		return nil, fmt.Errorf("deferred response for seq %d timed out after %s", seq, timeout)
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	}
}

// waitForEvent returns the next queued event named name, removing it; if
// none is queued it blocks until one arrives or the timeout elapses, in
// which case it returns (nil, nil). Callers interpret absence, not error.
func (c *Client) waitForEvent(name string, timeout time.Duration) (dap.Message, error) {
	c.eventMu.Lock()
	for i, ev := range c.events {
		if eventNameOf(ev) == name {
			c.events = append(c.events[:i], c.events[i+1:]...)
			c.eventMu.Unlock()
			return ev, nil
		}
	}
	reply := make(chan dap.Message, 1)
	c.waiters = append(c.waiters, eventWaiter{name: name, reply: reply})
	c.eventMu.Unlock()

	select {
	case msg, ok := <-reply:
		if !ok {
			return nil, fmt.Errorf("connection closed while awaiting %s event", name)
		}
		return msg, nil
	case <-time.After(timeout):
		c.removeWaiter(reply)
		return nil, nil
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	}
}

func (c *Client) removeWaiter(reply chan dap.Message) {
	c.eventMu.Lock()
	defer c.eventMu.Unlock()
	for i, w := range c.waiters {
		if w.reply == reply {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return
		}
	}
}

// drainEvents atomically removes and returns every queued event whose name
// is in names, without suspending. Used to poll for terminal/exit/output
// events between waitForStop ticks.
func (c *Client) drainEvents(names ...string) []dap.Message {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	c.eventMu.Lock()
	defer c.eventMu.Unlock()

	var matched, kept []dap.Message
	for _, ev := range c.events {
		if want[eventNameOf(ev)] {
			matched = append(matched, ev)
		} else {
			kept = append(kept, ev)
		}
	}
	c.events = kept
	return matched
}

// Initialize performs the synchronous `initialize` request.
func (c *Client) Initialize(clientID, clientName string, timeout time.Duration) (dap.Capabilities, error) {
	req := &dap.InitializeRequest{
		Request: dap.Request{ProtocolMessage: dap.ProtocolMessage{Type: "request"}, Command: "initialize"},
		Arguments: dap.InitializeRequestArguments{
			ClientID:                     clientID,
			ClientName:                   clientName,
			AdapterID:                    "agent-debugger",
			Locale:                       "en-US",
			LinesStartAt1:                true,
			ColumnsStartAt1:              true,
			PathFormat:                   "path",
			SupportsVariableType:         true,
			SupportsVariablePaging:       true,
			SupportsRunInTerminalRequest: false,
		},
	}
	resp, err := c.request(req, timeout)
	if err != nil {
		return dap.Capabilities{}, err
	}
	initResp, ok := resp.(*dap.InitializeResponse)
	if !ok {
		return dap.Capabilities{}, fmt.Errorf("unexpected response type for initialize: %T", resp)
	}
	if !initResp.Success {
		return dap.Capabilities{}, fmt.Errorf("initialize failed: %s", initResp.Message)
	}
	c.capabilities = initResp.Body
	return c.capabilities, nil
}

// LaunchAsync sends `launch` without waiting; pair with WaitLaunchResponse.
func (c *Client) LaunchAsync(args map[string]interface{}) (int, error) {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return 0, fmt.Errorf("marshal launch args: %w", err)
	}
	req := &dap.LaunchRequest{
		Request:   dap.Request{ProtocolMessage: dap.ProtocolMessage{Type: "request"}, Command: "launch"},
		Arguments: argsJSON,
	}
	return c.requestAsync(req)
}

// WaitLaunchResponse resolves the deferred launch response.
func (c *Client) WaitLaunchResponse(seq int, timeout time.Duration) error {
	msg, err := c.waitForResponse(seq, timeout)
	if err != nil {
		return err
	}
	resp, ok := msg.(*dap.LaunchResponse)
	if !ok {
		return fmt.Errorf("unexpected response type for launch: %T", msg)
	}
	if !resp.Success {
		return fmt.Errorf("launch failed: %s", resp.Message)
	}
	return nil
}

// AttachAsync sends `attach` without waiting; pair with WaitAttachResponse.
func (c *Client) AttachAsync(args map[string]interface{}) (int, error) {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return 0, fmt.Errorf("marshal attach args: %w", err)
	}
	req := &dap.AttachRequest{
		Request:   dap.Request{ProtocolMessage: dap.ProtocolMessage{Type: "request"}, Command: "attach"},
		Arguments: argsJSON,
	}
	return c.requestAsync(req)
}

// WaitAttachResponse resolves the deferred attach response.
func (c *Client) WaitAttachResponse(seq int, timeout time.Duration) error {
	msg, err := c.waitForResponse(seq, timeout)
	if err != nil {
		return err
	}
	resp, ok := msg.(*dap.AttachResponse)
	if !ok {
		return fmt.Errorf("unexpected response type for attach: %T", msg)
	}
	if !resp.Success {
		return fmt.Errorf("attach failed: %s", resp.Message)
	}
	return nil
}

// WaitInitialized blocks for the `initialized` event.
func (c *Client) WaitInitialized(timeout time.Duration) error {
	msg, err := c.waitForEvent("initialized", timeout)
	if err != nil {
		return err
	}
	if msg == nil {
		return fmt.Errorf("timed out waiting for initialized event")
	}
	return nil
}

// WaitStopped blocks for the `stopped` event, returning nil,nil on timeout.
func (c *Client) WaitStopped(timeout time.Duration) (*dap.StoppedEventBody, error) {
	msg, err := c.waitForEvent("stopped", timeout)
	if err != nil || msg == nil {
		return nil, err
	}
	ev := msg.(*dap.StoppedEvent)
	return &ev.Body, nil
}

// DrainTerminal removes and returns any queued terminated/exited events.
func (c *Client) DrainTerminal() (terminated bool, exitCode *int) {
	for _, ev := range c.drainEvents("terminated", "exited") {
		terminated = true
		if exited, ok := ev.(*dap.ExitedEvent); ok {
			code := exited.Body.ExitCode
			exitCode = &code
		}
	}
	return terminated, exitCode
}

// DrainOutput removes queued output events and returns their bodies.
func (c *Client) DrainOutput() []dap.OutputEventBody {
	var bodies []dap.OutputEventBody
	for _, ev := range c.drainEvents("output") {
		if out, ok := ev.(*dap.OutputEvent); ok {
			bodies = append(bodies, out.Body)
		}
	}
	return bodies
}

// ConfigurationDone signals the adapter it may complete the deferred launch.
func (c *Client) ConfigurationDone(timeout time.Duration) error {
	req := &dap.ConfigurationDoneRequest{
		Request: dap.Request{ProtocolMessage: dap.ProtocolMessage{Type: "request"}, Command: "configurationDone"},
	}
	resp, err := c.request(req, timeout)
	if err != nil {
		return err
	}
	r, ok := resp.(*dap.ConfigurationDoneResponse)
	if !ok {
		return fmt.Errorf("unexpected response type for configurationDone: %T", resp)
	}
	if !r.Success {
		return fmt.Errorf("configurationDone failed: %s", r.Message)
	}
	return nil
}

// SetExceptionBreakpoints disables exception-break for uniform behavior.
func (c *Client) SetExceptionBreakpoints(filters []string, timeout time.Duration) error {
	req := &dap.SetExceptionBreakpointsRequest{
		Request: dap.Request{ProtocolMessage: dap.ProtocolMessage{Type: "request"}, Command: "setExceptionBreakpoints"},
		Arguments: dap.SetExceptionBreakpointsArguments{
			Filters: filters,
		},
	}
	resp, err := c.request(req, timeout)
	if err != nil {
		return err
	}
	r, ok := resp.(*dap.SetExceptionBreakpointsResponse)
	if !ok {
		return fmt.Errorf("unexpected response type for setExceptionBreakpoints: %T", resp)
	}
	if !r.Success {
		return fmt.Errorf("setExceptionBreakpoints failed: %s", r.Message)
	}
	return nil
}

// SetBreakpoints sends the full per-file breakpoint list (DAP requires it).
func (c *Client) SetBreakpoints(source dap.Source, bps []dap.SourceBreakpoint, timeout time.Duration) ([]dap.Breakpoint, error) {
	req := &dap.SetBreakpointsRequest{
		Request:   dap.Request{ProtocolMessage: dap.ProtocolMessage{Type: "request"}, Command: "setBreakpoints"},
		Arguments: dap.SetBreakpointsArguments{Source: source, Breakpoints: bps},
	}
	resp, err := c.request(req, timeout)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*dap.SetBreakpointsResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type for setBreakpoints: %T", resp)
	}
	if !r.Success {
		return nil, fmt.Errorf("setBreakpoints failed: %s", r.Message)
	}
	return r.Body.Breakpoints, nil
}

// Threads lists the debuggee's threads.
func (c *Client) Threads(timeout time.Duration) ([]dap.Thread, error) {
	req := &dap.ThreadsRequest{Request: dap.Request{ProtocolMessage: dap.ProtocolMessage{Type: "request"}, Command: "threads"}}
	resp, err := c.request(req, timeout)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*dap.ThreadsResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type for threads: %T", resp)
	}
	if !r.Success {
		return nil, fmt.Errorf("threads failed: %s", r.Message)
	}
	return r.Body.Threads, nil
}

// StackTrace fetches frames for a thread.
func (c *Client) StackTrace(threadID, startFrame, levels int, timeout time.Duration) ([]dap.StackFrame, int, error) {
	req := &dap.StackTraceRequest{
		Request:   dap.Request{ProtocolMessage: dap.ProtocolMessage{Type: "request"}, Command: "stackTrace"},
		Arguments: dap.StackTraceArguments{ThreadId: threadID, StartFrame: startFrame, Levels: levels},
	}
	resp, err := c.request(req, timeout)
	if err != nil {
		return nil, 0, err
	}
	r, ok := resp.(*dap.StackTraceResponse)
	if !ok {
		return nil, 0, fmt.Errorf("unexpected response type for stackTrace: %T", resp)
	}
	if !r.Success {
		return nil, 0, fmt.Errorf("stackTrace failed: %s", r.Message)
	}
	return r.Body.StackFrames, r.Body.TotalFrames, nil
}

// Scopes fetches the scopes visible at a frame.
func (c *Client) Scopes(frameID int, timeout time.Duration) ([]dap.Scope, error) {
	req := &dap.ScopesRequest{
		Request:   dap.Request{ProtocolMessage: dap.ProtocolMessage{Type: "request"}, Command: "scopes"},
		Arguments: dap.ScopesArguments{FrameId: frameID},
	}
	resp, err := c.request(req, timeout)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*dap.ScopesResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type for scopes: %T", resp)
	}
	if !r.Success {
		return nil, fmt.Errorf("scopes failed: %s", r.Message)
	}
	return r.Body.Scopes, nil
}

// Variables fetches up to count variables under a variablesReference.
func (c *Client) Variables(variablesRef, start, count int, timeout time.Duration) ([]dap.Variable, error) {
	args := dap.VariablesArguments{VariablesReference: variablesRef}
	if start > 0 {
		args.Start = start
	}
	if count > 0 {
		args.Count = count
	}
	req := &dap.VariablesRequest{
		Request:   dap.Request{ProtocolMessage: dap.ProtocolMessage{Type: "request"}, Command: "variables"},
		Arguments: args,
	}
	resp, err := c.request(req, timeout)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*dap.VariablesResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type for variables: %T", resp)
	}
	if !r.Success {
		return nil, fmt.Errorf("variables failed: %s", r.Message)
	}
	return r.Body.Variables, nil
}

// Evaluate sends `expression` verbatim in the given frame/context.
func (c *Client) Evaluate(expression string, frameID int, evalContext string, timeout time.Duration) (*dap.EvaluateResponseBody, error) {
	req := &dap.EvaluateRequest{
		Request:   dap.Request{ProtocolMessage: dap.ProtocolMessage{Type: "request"}, Command: "evaluate"},
		Arguments: dap.EvaluateArguments{Expression: expression, FrameId: frameID, Context: evalContext},
	}
	resp, err := c.request(req, timeout)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*dap.EvaluateResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type for evaluate: %T", resp)
	}
	if !r.Success {
		return nil, fmt.Errorf("%s", r.Message)
	}
	return &r.Body, nil
}

// Continue resumes a thread.
func (c *Client) Continue(threadID int, timeout time.Duration) error {
	req := &dap.ContinueRequest{
		Request:   dap.Request{ProtocolMessage: dap.ProtocolMessage{Type: "request"}, Command: "continue"},
		Arguments: dap.ContinueArguments{ThreadId: threadID},
	}
	resp, err := c.request(req, timeout)
	if err != nil {
		return err
	}
	r, ok := resp.(*dap.ContinueResponse)
	if !ok {
		return fmt.Errorf("unexpected response type for continue: %T", resp)
	}
	if !r.Success {
		return fmt.Errorf("continue failed: %s", r.Message)
	}
	return nil
}

// Next/StepIn/StepOut step the given thread.
func (c *Client) Next(threadID int, timeout time.Duration) error { return c.step("next", threadID, timeout) }
func (c *Client) StepIn(threadID int, timeout time.Duration) error {
	return c.step("stepIn", threadID, timeout)
}
func (c *Client) StepOut(threadID int, timeout time.Duration) error {
	return c.step("stepOut", threadID, timeout)
}

func (c *Client) step(command string, threadID int, timeout time.Duration) error {
	var req dap.Message
	switch command {
	case "next":
		req = &dap.NextRequest{
			Request:   dap.Request{ProtocolMessage: dap.ProtocolMessage{Type: "request"}, Command: "next"},
			Arguments: dap.NextArguments{ThreadId: threadID},
		}
	case "stepIn":
		req = &dap.StepInRequest{
			Request:   dap.Request{ProtocolMessage: dap.ProtocolMessage{Type: "request"}, Command: "stepIn"},
			Arguments: dap.StepInArguments{ThreadId: threadID},
		}
	case "stepOut":
		req = &dap.StepOutRequest{
			Request:   dap.Request{ProtocolMessage: dap.ProtocolMessage{Type: "request"}, Command: "stepOut"},
			Arguments: dap.StepOutArguments{ThreadId: threadID},
		}
	}
	resp, err := c.request(req, timeout)
	if err != nil {
		return err
	}
	switch r := resp.(type) {
	case *dap.NextResponse:
		if !r.Success {
			return fmt.Errorf("next failed: %s", r.Message)
		}
	case *dap.StepInResponse:
		if !r.Success {
			return fmt.Errorf("stepIn failed: %s", r.Message)
		}
	case *dap.StepOutResponse:
		if !r.Success {
			return fmt.Errorf("stepOut failed: %s", r.Message)
		}
	default:
		return fmt.Errorf("unexpected response type for %s: %T", command, resp)
	}
	return nil
}

// Disconnect sends `disconnect` best-effort, then closes the transport and
// rejects all outstanding slots.
func (c *Client) Disconnect(terminateDebuggee bool) error {
	req := &dap.DisconnectRequest{
		Request:   dap.Request{ProtocolMessage: dap.ProtocolMessage{Type: "request"}, Command: "disconnect"},
		Arguments: &dap.DisconnectArguments{TerminateDebuggee: terminateDebuggee},
	}
	_, _ = c.request(req, 5*time.Second) // best-effort; fall through to close regardless
	return c.Close()
}

// Close cancels the read loop and closes the underlying transport.
func (c *Client) Close() error {
	c.cancel()
	err := c.transport.Close()
	c.wg.Wait()
	return err
}

// requestSeqOf extracts RequestSeq from response messages; ok is false for
// events and for message kinds this client never sends a request for.
func requestSeqOf(msg dap.Message) (int, bool) {
	switch m := msg.(type) {
	case *dap.InitializeResponse:
		return m.RequestSeq, true
	case *dap.LaunchResponse:
		return m.RequestSeq, true
	case *dap.AttachResponse:
		return m.RequestSeq, true
	case *dap.DisconnectResponse:
		return m.RequestSeq, true
	case *dap.ConfigurationDoneResponse:
		return m.RequestSeq, true
	case *dap.SetExceptionBreakpointsResponse:
		return m.RequestSeq, true
	case *dap.ThreadsResponse:
		return m.RequestSeq, true
	case *dap.StackTraceResponse:
		return m.RequestSeq, true
	case *dap.ScopesResponse:
		return m.RequestSeq, true
	case *dap.VariablesResponse:
		return m.RequestSeq, true
	case *dap.EvaluateResponse:
		return m.RequestSeq, true
	case *dap.SetBreakpointsResponse:
		return m.RequestSeq, true
	case *dap.ContinueResponse:
		return m.RequestSeq, true
	case *dap.NextResponse:
		return m.RequestSeq, true
	case *dap.StepInResponse:
		return m.RequestSeq, true
	case *dap.StepOutResponse:
		return m.RequestSeq, true
	case *dap.PauseResponse:
		return m.RequestSeq, true
	case *dap.SourceResponse:
		return m.RequestSeq, true
	case *dap.ErrorResponse:
		return m.RequestSeq, true
	}
	return 0, false
}

func eventNameOf(msg dap.Message) string {
	switch m := msg.(type) {
	case *dap.InitializedEvent:
		return "initialized"
	case *dap.StoppedEvent:
		return "stopped"
	case *dap.TerminatedEvent:
		return "terminated"
	case *dap.ExitedEvent:
		return "exited"
	case *dap.OutputEvent:
		return "output"
	case *dap.ThreadEvent:
		return "thread"
	case *dap.ContinuedEvent:
		return "continued"
	case *dap.ProcessEvent:
		return "process"
	case *dap.BreakpointEvent:
		return "breakpoint"
	default:
		return fmt.Sprintf("%T", m)
	}
}

func setSeq(req dap.Message, seq int) {
	switch r := req.(type) {
	case *dap.InitializeRequest:
		r.Seq = seq
	case *dap.LaunchRequest:
		r.Seq = seq
	case *dap.AttachRequest:
		r.Seq = seq
	case *dap.DisconnectRequest:
		r.Seq = seq
	case *dap.ConfigurationDoneRequest:
		r.Seq = seq
	case *dap.SetExceptionBreakpointsRequest:
		r.Seq = seq
	case *dap.ThreadsRequest:
		r.Seq = seq
	case *dap.StackTraceRequest:
		r.Seq = seq
	case *dap.ScopesRequest:
		r.Seq = seq
	case *dap.VariablesRequest:
		r.Seq = seq
	case *dap.EvaluateRequest:
		r.Seq = seq
	case *dap.SetBreakpointsRequest:
		r.Seq = seq
	case *dap.ContinueRequest:
		r.Seq = seq
	case *dap.NextRequest:
		r.Seq = seq
	case *dap.StepInRequest:
		r.Seq = seq
	case *dap.StepOutRequest:
		r.Seq = seq
	case *dap.PauseRequest:
		r.Seq = seq
	case *dap.SourceRequest:
		r.Seq = seq
	}
}

func commandOf(req dap.Message) string {
	switch r := req.(type) {
	case *dap.InitializeRequest:
		return r.Command
	case *dap.LaunchRequest:
		return r.Command
	case *dap.AttachRequest:
		return r.Command
	case *dap.DisconnectRequest:
		return r.Command
	case *dap.ConfigurationDoneRequest:
		return r.Command
	case *dap.SetExceptionBreakpointsRequest:
		return r.Command
	case *dap.ThreadsRequest:
		return r.Command
	case *dap.StackTraceRequest:
		return r.Command
	case *dap.ScopesRequest:
		return r.Command
	case *dap.VariablesRequest:
		return r.Command
	case *dap.EvaluateRequest:
		return r.Command
	case *dap.SetBreakpointsRequest:
		return r.Command
	case *dap.ContinueRequest:
		return r.Command
	case *dap.NextRequest:
		return r.Command
	case *dap.StepInRequest:
		return r.Command
	case *dap.StepOutRequest:
		return r.Command
	case *dap.PauseRequest:
		return r.Command
	case *dap.SourceRequest:
		return r.Command
	default:
		return fmt.Sprintf("%T", req)
	}
}
