package main

import (
	"path/filepath"
	"strconv"

	"github.com/agent-tools/agent-debugger/internal/daemon"
	"github.com/spf13/cobra"
)

func newVarsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "vars",
		Short: "Show variables in scope at the current frame",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := runVerb(daemon.Command{Action: "vars"})
			return render(reply, err)
		},
	}
}

func newStackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stack",
		Short: "Show the call stack of the stopped thread",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := runVerb(daemon.Command{Action: "stack"})
			return render(reply, err)
		},
	}
}

func newEvalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate an expression in the current frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := runVerb(daemon.Command{Action: "eval", Expression: args[0]})
			return render(reply, err)
		},
	}
}

var stepKind string

func newStepCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "step",
		Short: "Advance execution by one step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := runVerb(daemon.Command{Action: "step", Kind: stepKind})
			return render(reply, err)
		},
	}
	cmd.Flags().StringVar(&stepKind, "kind", "over", "step kind: over, into, or out")
	return cmd
}

func newContinueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "continue",
		Short: "Resume execution until the next stop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := runVerb(daemon.Command{Action: "continue"})
			return render(reply, err)
		},
	}
}

var breakCondition string

func newBreakCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "break <file:line>",
		Short: "Set a breakpoint at file:line, optionally conditional",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, line, err := parseFileLine(args)
			if err != nil {
				return err
			}
			reply, vErr := runVerb(daemon.Command{Action: "break", File: file, Line: line, Condition: breakCondition})
			return render(reply, vErr)
		},
	}
	cmd.Flags().StringVar(&breakCondition, "condition", "", "condition expression gating the breakpoint")
	return cmd
}

var sourceContext int

func newSourceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "source [file:line]",
		Short: "Show source lines around a location, or around the current stopped line if omitted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, line, err := parseFileLine(args)
			if err != nil {
				return err
			}
			reply, vErr := runVerb(daemon.Command{Action: "source", File: file, Line: line, Context: sourceContext})
			return render(reply, vErr)
		},
	}
	cmd.Flags().IntVar(&sourceContext, "context", 5, "number of lines of context on each side")
	return cmd
}

// parseFileLine parses an optional positional file:line argument. A missing
// positional (used by `source` to mean "the current stopped location") is
// not an error; it returns a zero-valued file and line for the daemon to
// fill in from session state.
func parseFileLine(args []string) (string, int, error) {
	if len(args) == 0 {
		return "", 0, nil
	}
	raw := args[0]

	idx := lastColon(raw)
	if idx < 0 {
		return "", 0, &usageError{"expected file:line"}
	}
	line, err := strconv.Atoi(raw[idx+1:])
	if err != nil || line < 1 {
		return "", 0, &usageError{"expected a positive line number after the last colon"}
	}
	abs, err := filepath.Abs(raw[:idx])
	if err != nil {
		return "", 0, err
	}
	return abs, line, nil
}

func lastColon(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return i
		}
	}
	return -1
}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }
