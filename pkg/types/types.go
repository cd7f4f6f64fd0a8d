// Package types defines the data shared between the session layer, the
// adapter strategies, and the wire protocol spoken over the daemon socket.
package types

// Language identifies which debug adapter strategy handles a session.
type Language string

const (
	LanguageGo         Language = "go"
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageRust       Language = "rust"
	LanguageC          Language = "c"
	LanguageCpp        Language = "cpp"
)

// ExtensionLanguage maps a source file extension to the language used to
// pick an adapter when --language is not given explicitly.
var ExtensionLanguage = map[string]Language{
	".go":  LanguageGo,
	".py":  LanguagePython,
	".js":  LanguageJavaScript,
	".mjs": LanguageJavaScript,
	".cjs": LanguageJavaScript,
	".ts":  LanguageTypeScript,
	".tsx": LanguageTypeScript,
	".rs":  LanguageRust,
	".c":   LanguageC,
	".h":   LanguageC,
	".cc":  LanguageCpp,
	".cpp": LanguageCpp,
	".cxx": LanguageCpp,
	".hpp": LanguageCpp,
}

// IsNative reports whether the language is debugged through lldb/gdb rather
// than a language-specific DAP adapter.
func (l Language) IsNative() bool {
	return l == LanguageC || l == LanguageCpp || l == LanguageRust
}

// State is the session's position in its lifecycle FSM.
type State string

const (
	StateIdle       State = "idle"
	StateStarting   State = "starting"
	StatePaused     State = "paused"
	StateRunning    State = "running"
	StateTerminated State = "terminated"
)

// LaunchRequest describes a program to start under a debug adapter.
type LaunchRequest struct {
	Language    Language          `json:"language"`
	Program     string            `json:"program"`
	Args        []string          `json:"args,omitempty"`
	Cwd         string            `json:"cwd,omitempty"`
	Env         map[string]string `json:"env,omitempty"`
	StopOnEntry bool              `json:"stopOnEntry,omitempty"`
	Runtime     string            `json:"runtime,omitempty"`
	Breakpoints []BreakpointSpec  `json:"breakpoints,omitempty"`
}

// AttachRequest describes a running process or a listening adapter to attach to.
type AttachRequest struct {
	Language    Language         `json:"language"`
	Host        string           `json:"host,omitempty"`
	Port        int              `json:"port,omitempty"`
	PID         int              `json:"pid,omitempty"`
	Runtime     string           `json:"runtime,omitempty"`
	Breakpoints []BreakpointSpec `json:"breakpoints,omitempty"`
}

// BreakpointSpec is one entry of the file:line[:condition] grammar parsed
// from repeated --break flags.
type BreakpointSpec struct {
	Path      string `json:"path"`
	Line      int    `json:"line"`
	Condition string `json:"condition,omitempty"`
}

// StatusInfo summarizes the session for the `status` verb.
type StatusInfo struct {
	State    State    `json:"state"`
	Language Language `json:"language,omitempty"`
	PID      int      `json:"pid,omitempty"`
	Program  string   `json:"program,omitempty"`
	Stopped  *StoppedInfo `json:"stopped,omitempty"`
}

// StoppedInfo records where execution last paused. The session fills in
// ThreadID and Description only; Reason and AllStopped are left empty.
type StoppedInfo struct {
	Reason      string `json:"reason"`
	ThreadID    int    `json:"threadId"`
	Description string `json:"description,omitempty"`
	AllStopped  bool   `json:"allThreadsStopped,omitempty"`
}

// ThreadInfo represents a single thread in the debuggee.
type ThreadInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// StackFrame represents one frame of a thread's call stack.
type StackFrame struct {
	ID     int         `json:"id"`
	Name   string      `json:"name"`
	Source *SourceInfo `json:"source,omitempty"`
	Line   int         `json:"line"`
	Column int         `json:"column,omitempty"`
}

// SourceInfo identifies the origin of a stack frame or breakpoint.
type SourceInfo struct {
	Name            string `json:"name,omitempty"`
	Path            string `json:"path,omitempty"`
	SourceReference int    `json:"sourceReference,omitempty"`
}

// Scope groups variables visible at a given frame.
type Scope struct {
	Name               string `json:"name"`
	VariablesReference int    `json:"variablesReference"`
	Expensive          bool   `json:"expensive,omitempty"`
}

// Variable is a single named value, possibly expandable via its reference.
type Variable struct {
	Name               string `json:"name"`
	Value              string `json:"value"`
	Type               string `json:"type,omitempty"`
	VariablesReference int    `json:"variablesReference"`
}

// Breakpoint is the adapter's verification result for a requested breakpoint.
type Breakpoint struct {
	ID        int         `json:"id,omitempty"`
	Verified  bool        `json:"verified"`
	Message   string      `json:"message,omitempty"`
	Source    *SourceInfo `json:"source,omitempty"`
	Line      int         `json:"line,omitempty"`
	Condition string      `json:"condition,omitempty"`
}

// EvaluateResult is the outcome of evaluating an expression in a frame.
type EvaluateResult struct {
	Result             string `json:"result"`
	Type               string `json:"type,omitempty"`
	VariablesReference int    `json:"variablesReference"`
}

// VarsSnapshot is the result of the `vars` verb: every scope for a frame,
// with one level of variables fetched for the Locals/Local scope only.
type VarsSnapshot struct {
	FrameID   int                `json:"frameId"`
	Scopes    []Scope            `json:"scopes"`
	Variables map[int][]Variable `json:"variables"`
}

// StackSnapshot is the full call stack requested by the `stack` verb.
type StackSnapshot struct {
	ThreadID int          `json:"threadId"`
	Frames   []StackFrame `json:"frames"`
}
