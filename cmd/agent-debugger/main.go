// Command agent-debugger is the stateless CLI front-end: one invocation
// per verb, talking to a long-lived daemon over a local Unix-domain
// socket, auto-spawning the daemon when its socket or PID file is absent
// or stale.
package main

import (
	"fmt"
	"os"

	"github.com/agent-tools/agent-debugger/internal/config"
	"github.com/agent-tools/agent-debugger/internal/version"
	"github.com/spf13/cobra"
)

var (
	configPath string
	jsonOutput bool
	cfg        *config.Config
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "agent-debugger",
		Short:   "A language-agnostic command-line debugger front-end",
		Version: version.GetVersion(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig(resolveConfigPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = loaded
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a JSON config file (default: $AGENT_DEBUGGER_CONFIG)")
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit the raw daemon reply as JSON instead of a human-readable rendering")

	root.AddCommand(
		newStartCommand(),
		newAttachCommand(),
		newVarsCommand(),
		newStackCommand(),
		newEvalCommand(),
		newStepCommand(),
		newContinueCommand(),
		newBreakCommand(),
		newSourceCommand(),
		newStatusCommand(),
		newCloseCommand(),
		newDaemonCommand(),
	)
	return root
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return os.Getenv("AGENT_DEBUGGER_CONFIG")
}
