package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/agent-tools/agent-debugger/internal/daemon"
	"github.com/spf13/cobra"
)

// newDaemonCommand runs the daemon in the foreground. It is hidden because
// it is an implementation detail: the CLI invokes it on itself, detached,
// when no live daemon is reachable. Users normally never type it directly.
func newDaemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "daemon",
		Short:  "Run the debug session daemon in the foreground",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer cancel()

			d, err := daemon.New(cfg)
			if err != nil {
				return fmt.Errorf("init daemon: %w", err)
			}
			return d.Run(ctx)
		},
	}
	return cmd
}
