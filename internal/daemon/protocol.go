// Package daemon implements the long-lived process that owns the debug
// session and serves it over a local Unix-domain socket: a
// newline-delimited-JSON broker, one command per connection, in the style
// of a small internal IPC server rather than an RPC framework.
package daemon

import (
	"github.com/agent-tools/agent-debugger/internal/errors"
	"github.com/agent-tools/agent-debugger/pkg/types"
)

// Command is the CLI-to-daemon wire envelope, discriminated on Action. Only
// the fields relevant to a given action are populated; the rest are left
// at their zero value and ignored.
type Command struct {
	Action string `json:"action"`

	// start
	Script      string                 `json:"script,omitempty"`
	Language    string                 `json:"language,omitempty"`
	Breakpoints []types.BreakpointSpec `json:"breakpoints,omitempty"`
	Runtime     string                 `json:"runtime,omitempty"`
	Args        []string               `json:"args,omitempty"`
	Cwd         string                 `json:"cwd,omitempty"`
	StopOnEntry bool                   `json:"stop_on_entry,omitempty"`

	// attach
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`
	PID  int    `json:"pid,omitempty"`

	// eval
	Expression string `json:"expression,omitempty"`

	// step
	Kind string `json:"kind,omitempty"`

	// break / source
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
	Condition string `json:"condition,omitempty"`
	Context   int    `json:"context,omitempty"`

	// status
	Verbose bool `json:"verbose,omitempty"`
}

// Reply is the loose daemon-to-CLI result map: only the keys of the verb's
// own payload are populated (e.g. "state" and "status" for status-shaped
// replies, "result" and "type" for eval), or a single "error" key.
type Reply map[string]interface{}

func errorReply(err error) Reply {
	return Reply{"error": err.Error()}
}

func validate(cmd Command) *errors.DebugError {
	switch cmd.Action {
	case "start":
		if cmd.Script == "" {
			return errors.InvalidCommandSchema("start requires \"script\"")
		}
	case "attach":
		if cmd.Port == 0 && cmd.PID == 0 {
			return errors.InvalidCommandSchema("attach requires \"port\" or \"pid\"")
		}
		if cmd.Port != 0 && cmd.PID != 0 {
			return errors.InvalidCommandSchema("attach takes only one of \"port\" or \"pid\"")
		}
	case "eval":
		if cmd.Expression == "" {
			return errors.InvalidCommandSchema("eval requires \"expression\"")
		}
	case "break":
		if cmd.File == "" || cmd.Line <= 0 {
			return errors.InvalidCommandSchema("break requires \"file\" and a positive \"line\"")
		}
	case "vars", "stack", "step", "continue", "source", "status", "close":
		// no required fields
	default:
		return errors.UnknownVerb(cmd.Action)
	}
	return nil
}
