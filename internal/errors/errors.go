// Package errors provides the structured error taxonomy shared across the
// daemon's packages. Errors carry a machine-readable kind plus a human hint so
// a reply can tell the caller what went wrong and how to recover.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind categorizes a failure for the reply envelope and for deciding how the
// session state should move afterward. These are kinds, not Go types: every
// DebugError carries one regardless of which constructor built it.
type Kind string

const (
	KindConfiguration   Kind = "configuration"
	KindHandshake       Kind = "handshake"
	KindProtocol        Kind = "protocol"
	KindStatePrecond    Kind = "state_precondition"
	KindRuntime         Kind = "runtime"
	KindInjection       Kind = "injection"
)

// DebugError is the one structured error type used throughout the daemon.
// It mirrors errors.New plus a remediation hint instead of growing a Go type
// per failure mode.
type DebugError struct {
	Kind    Kind                   `json:"kind"`
	Message string                 `json:"message"`
	Hint    string                 `json:"hint,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

func (e *DebugError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Hint != "" {
		sb.WriteString(" | hint: ")
		sb.WriteString(e.Hint)
	}
	return sb.String()
}

func (e *DebugError) Unwrap() error { return e.Cause }

func (e *DebugError) WithDetails(key string, value interface{}) *DebugError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *DebugError) WithCause(err error) *DebugError {
	e.Cause = err
	return e
}

// --- Configuration ---

func UnknownLanguage(language string, supported []string) *DebugError {
	return &DebugError{
		Kind:    KindConfiguration,
		Message: fmt.Sprintf("no debug adapter available for language %q", language),
		Hint:    fmt.Sprintf("supported languages: %s", strings.Join(supported, ", ")),
		Details: map[string]interface{}{"language": language, "supported": supported},
	}
}

func UnsupportedExtension(ext string) *DebugError {
	return &DebugError{
		Kind:    KindConfiguration,
		Message: fmt.Sprintf("cannot infer a language from file extension %q", ext),
		Hint:    "pass --language explicitly",
		Details: map[string]interface{}{"extension": ext},
	}
}

func MissingAdapterBinary(name, path string, err error) *DebugError {
	return &DebugError{
		Kind:    KindConfiguration,
		Message: fmt.Sprintf("%s is not available at %q", name, path),
		Hint:    fmt.Sprintf("install %s or set its path in the config file", name),
		Cause:   err,
		Details: map[string]interface{}{"adapter": name, "path": path},
	}
}

func MissingRuntime(name string, err error) *DebugError {
	return &DebugError{
		Kind:    KindConfiguration,
		Message: fmt.Sprintf("runtime %q is not usable: %v", name, err),
		Hint:    "check the runtime path override (--runtime / --python) or your PATH",
		Cause:   err,
	}
}

// --- Handshake ---

func InitializeFailed(err error) *DebugError {
	return &DebugError{
		Kind:    KindHandshake,
		Message: fmt.Sprintf("DAP initialize failed: %v", err),
		Hint:    "the adapter may have crashed on startup; check its stderr",
		Cause:   err,
	}
}

func InitializedTimeout() *DebugError {
	return &DebugError{
		Kind:    KindHandshake,
		Message: "timed out waiting for the initialized event",
		Hint:    "the adapter did not signal readiness within the handshake timeout",
	}
}

func DeferredResponseFailed(command string, err error) *DebugError {
	return &DebugError{
		Kind:    KindHandshake,
		Message: fmt.Sprintf("%s failed: %v", command, err),
		Hint:    "check that the program path and arguments are correct",
		Cause:   err,
		Details: map[string]interface{}{"command": command},
	}
}

// --- Protocol ---

func InvalidCommandJSON(err error) *DebugError {
	return &DebugError{
		Kind:    KindProtocol,
		Message: "Invalid JSON",
		Cause:   err,
	}
}

func InvalidCommandSchema(reason string) *DebugError {
	return &DebugError{
		Kind:    KindProtocol,
		Message: fmt.Sprintf("Invalid command: %s", reason),
	}
}

func UnknownVerb(action string) *DebugError {
	return &DebugError{
		Kind:    KindProtocol,
		Message: fmt.Sprintf("unknown action %q", action),
	}
}

// --- State precondition ---

func WrongState(verb string, have, want string) *DebugError {
	return &DebugError{
		Kind:    KindStatePrecond,
		Message: fmt.Sprintf("%s requires state %s, session is %s", verb, want, have),
		Details: map[string]interface{}{"verb": verb, "state": have, "want": want},
	}
}

func AlreadyActive() *DebugError {
	return &DebugError{
		Kind:    KindStatePrecond,
		Message: "a debug session is already active",
		Hint:    "run close before starting a new session",
	}
}

// --- Runtime ---

func RequestTimeout(command string, timeoutSeconds float64) *DebugError {
	return &DebugError{
		Kind:    KindRuntime,
		Message: fmt.Sprintf("%s timed out after %.0fs", command, timeoutSeconds),
		Hint:    "the program may be blocked; try status, then close if it is unresponsive",
		Details: map[string]interface{}{"command": command},
	}
}

func ConnectionClosed(err error) *DebugError {
	return &DebugError{
		Kind:    KindRuntime,
		Message: "the adapter connection closed unexpectedly",
		Hint:    "the adapter process likely crashed or exited",
		Cause:   err,
	}
}

func AdapterCrashed(err error) *DebugError {
	return &DebugError{
		Kind:    KindRuntime,
		Message: fmt.Sprintf("debug adapter exited unexpectedly: %v", err),
		Cause:   err,
	}
}

func BreakpointFailed(path string, line int, reason string) *DebugError {
	return &DebugError{
		Kind:    KindRuntime,
		Message: fmt.Sprintf("could not set breakpoint at %s:%d", path, line),
		Hint:    reason,
		Details: map[string]interface{}{"path": path, "line": line},
	}
}

func EvaluationFailed(expression string, err error) *DebugError {
	return &DebugError{
		Kind:    KindRuntime,
		Message: fmt.Sprintf("evaluate %q failed: %v", expression, err),
		Cause:   err,
		Details: map[string]interface{}{"expression": expression},
	}
}

// --- Injection ---

func InjectionFailed(pid int, reason string, err error) *DebugError {
	return &DebugError{
		Kind:    KindInjection,
		Message: fmt.Sprintf("failed to inject a DAP server into pid %d: %s", pid, reason),
		Hint:    "install debugpy in the target environment: pip install debugpy",
		Cause:   err,
		Details: map[string]interface{}{"pid": pid},
	}
}

// --- Generic wrapping ---

func Wrap(kind Kind, message, hint string, err error) *DebugError {
	return &DebugError{Kind: kind, Message: message, Hint: hint, Cause: err}
}

// FromError coerces any error into a DebugError, preserving one already present.
func FromError(err error) *DebugError {
	var de *DebugError
	if stderrors.As(err, &de) {
		return de
	}
	return &DebugError{
		Kind:    KindRuntime,
		Message: err.Error(),
		Cause:   err,
	}
}
