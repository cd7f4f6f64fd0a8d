package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"time"

	"github.com/agent-tools/agent-debugger/internal/config"
	"github.com/agent-tools/agent-debugger/internal/daemon"
)

const daemonReadyBudget = 3 * time.Second

// runVerb ensures a daemon is reachable, sends cmd, and returns its reply.
func runVerb(cmd daemon.Command) (daemon.Reply, error) {
	if err := ensureDaemon(cfg); err != nil {
		return nil, err
	}
	return sendCommand(cfg, cmd)
}

// ensureDaemon checks the PID file for a live daemon; if absent or stale it
// reaps the stale artifacts and spawns a detached daemon, then polls for
// socket readiness within a bounded budget.
func ensureDaemon(cfg *config.Config) error {
	pidPath := daemon.PIDPath(cfg.SessionDir)
	pid := daemon.ReadPID(pidPath)
	if pid != 0 && daemon.IsAlive(pid) {
		return nil
	}

	_ = os.Remove(pidPath)
	_ = os.Remove(daemon.SocketPath(cfg.SessionDir))

	if err := spawnDaemon(); err != nil {
		return fmt.Errorf("spawn daemon: %w", err)
	}
	return waitForSocket(daemon.SocketPath(cfg.SessionDir), daemonReadyBudget)
}

func spawnDaemon() error {
	exePath, err := os.Executable()
	if err != nil {
		return err
	}
	args := []string{"daemon"}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	cmd := exec.Command(exePath, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	detachProcess(cmd)
	return cmd.Start()
}

func waitForSocket(path string, budget time.Duration) error {
	deadline := time.Now().Add(budget)
	for time.Now().Before(deadline) {
		if conn, err := net.DialTimeout("unix", path, 200*time.Millisecond); err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("daemon did not become ready at %s within %s", path, budget)
}

// sendCommand opens one connection, writes cmd as a newline-terminated
// JSON line, and reads exactly one newline-terminated JSON reply.
func sendCommand(cfg *config.Config, cmd daemon.Command) (daemon.Reply, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "unix", daemon.SocketPath(cfg.SessionDir))
	if err != nil {
		return nil, fmt.Errorf("connect to daemon: %w", err)
	}
	defer conn.Close()

	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode command: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("write command: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		return nil, fmt.Errorf("read reply: %w", err)
	}

	var reply daemon.Reply
	if err := json.Unmarshal([]byte(line), &reply); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	return reply, nil
}
