package main

import (
	"path/filepath"

	"github.com/agent-tools/agent-debugger/internal/breakpoint"
	"github.com/agent-tools/agent-debugger/internal/daemon"
	"github.com/spf13/cobra"
)

var (
	startLanguage    string
	startRuntime     string
	startCwd         string
	startStopOnEntry bool
	startBreaks      []string

	attachHost     string
	attachPort     int
	attachPID      int
	attachLanguage string
	attachBreaks   []string
)

func newStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <program> [-- args...]",
		Short: "Launch a program under a debug adapter",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program := args[0]
			progArgs := args[1:]

			language := startLanguage
			if language == "" {
				language = languageFromExtension(program)
			}

			reply, err := runVerb(daemon.Command{
				Action:      "start",
				Script:      program,
				Language:    language,
				Args:        progArgs,
				Cwd:         startCwd,
				StopOnEntry: startStopOnEntry,
				Runtime:     startRuntime,
				Breakpoints: breakpoint.ParseAll(startBreaks, nil),
			})
			return render(reply, err)
		},
	}

	cmd.Flags().StringVar(&startLanguage, "language", "", "override language detection (go, python, javascript, typescript, rust, c, cpp)")
	cmd.Flags().StringVar(&startRuntime, "runtime", "", "override the interpreter/runtime binary (alias: --python)")
	cmd.Flags().StringVar(&startRuntime, "python", "", "alias for --runtime")
	cmd.Flags().StringVar(&startCwd, "cwd", "", "working directory for the launched program")
	cmd.Flags().BoolVar(&startStopOnEntry, "stop-on-entry", false, "pause before the program's first line runs")
	cmd.Flags().StringArrayVarP(&startBreaks, "break", "b", nil, "breakpoint as file:line[:condition], repeatable")

	return cmd
}

func newAttachCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Attach to a running process or a listening debug adapter",
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := runVerb(daemon.Command{
				Action:      "attach",
				Host:        attachHost,
				Port:        attachPort,
				PID:         attachPID,
				Language:    attachLanguage,
				Breakpoints: breakpoint.ParseAll(attachBreaks, nil),
			})
			return render(reply, err)
		},
	}

	cmd.Flags().StringVar(&attachHost, "host", "", "host of an already-listening debug adapter")
	cmd.Flags().IntVar(&attachPort, "port", 0, "port of an already-listening debug adapter")
	cmd.Flags().IntVar(&attachPID, "pid", 0, "PID of a running process to attach to")
	cmd.Flags().StringVar(&attachLanguage, "language", "", "language of the target process (required for pid attach)")
	cmd.Flags().StringArrayVarP(&attachBreaks, "break", "b", nil, "breakpoint as file:line[:condition], repeatable")

	return cmd
}

var statusVerbose bool

func newStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report the current session's state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := runVerb(daemon.Command{Action: "status", Verbose: statusVerbose})
			return render(reply, err)
		},
	}
	cmd.Flags().BoolVar(&statusVerbose, "verbose", false, "include adapter output accumulated since the last verbose status check")
	return cmd
}

func newCloseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Terminate the active session and shut the daemon down",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := runVerb(daemon.Command{Action: "close"})
			return render(reply, err)
		},
	}
}

// languageFromExtension mirrors the daemon's own extension-based resolution
// (types.ExtensionLanguage). A non-empty result is sent as the command's
// language, which the daemon uses as given; an empty result leaves the
// resolution to the daemon.
func languageFromExtension(program string) string {
	switch filepath.Ext(program) {
	case ".py":
		return "python"
	case ".go":
		return "go"
	case ".js", ".mjs", ".cjs":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	case ".rs":
		return "rust"
	case ".c", ".h":
		return "c"
	case ".cc", ".cpp", ".cxx", ".hpp":
		return "cpp"
	default:
		return ""
	}
}
