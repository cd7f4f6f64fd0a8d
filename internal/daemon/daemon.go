package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/agent-tools/agent-debugger/internal/adapters"
	"github.com/agent-tools/agent-debugger/internal/config"
	"github.com/agent-tools/agent-debugger/internal/errors"
	"github.com/agent-tools/agent-debugger/internal/session"
	"github.com/agent-tools/agent-debugger/pkg/types"
)

const (
	socketName    = "daemon.sock"
	pidName       = "daemon.pid"
	logName       = "daemon.log"
	escapeTimeout = 5 * time.Second
)

// Daemon owns the process-wide session and serves it over a Unix-domain
// socket, one connection per command.
type Daemon struct {
	cfg  *config.Config
	sess *session.Session
	log  *slog.Logger

	dir        string
	socketPath string
	pidPath    string

	mu       sync.Mutex
	listener net.Listener
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// SocketPath returns the canonical socket path for a session directory,
// used by both the daemon and the CLI's connect/auto-spawn logic.
func SocketPath(dir string) string { return filepath.Join(dir, socketName) }

// PIDPath returns the canonical PID file path for a session directory.
func PIDPath(dir string) string { return filepath.Join(dir, pidName) }

// New builds a daemon bound to cfg.SessionDir. Call Run to start serving.
func New(cfg *config.Config) (*Daemon, error) {
	if err := os.MkdirAll(cfg.SessionDir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	logFile, err := os.OpenFile(filepath.Join(cfg.SessionDir, logName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open daemon log: %w", err)
	}
	log := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelInfo}))

	registry := adapters.NewRegistry(cfg)
	return &Daemon{
		cfg:        cfg,
		sess:       session.New(registry, cfg, log),
		log:        log,
		dir:        cfg.SessionDir,
		socketPath: SocketPath(cfg.SessionDir),
		pidPath:    PIDPath(cfg.SessionDir),
	}, nil
}

// Run binds the socket, writes the PID file, and serves connections until
// ctx is canceled or a fatal accept error occurs. It always cleans up the
// socket and PID file on return.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.removeStaleSocket(); err != nil {
		return err
	}
	if err := os.WriteFile(d.pidPath, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer d.cleanupArtifacts()

	listener, err := net.Listen("unix", d.socketPath)
	if err != nil {
		return fmt.Errorf("bind socket: %w", err)
	}
	d.mu.Lock()
	d.listener = listener
	d.mu.Unlock()

	d.log.Info("daemon started", "socket", d.socketPath, "pid", os.Getpid())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()

	go func() {
		<-ctx.Done()
		d.shutdownListener()
	}()

	// One goroutine per connection: the session's own mutex already
	// serializes actual verb execution, so accept can stay non-blocking
	// even while a long-running verb (continue, eval) is in flight.
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				d.wg.Wait()
				d.log.Info("daemon stopped")
				return nil
			default:
				d.log.Warn("accept failed", "error", err)
				d.wg.Wait()
				return err
			}
		}
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.handleConn(conn)
		}()
	}
}

func (d *Daemon) shutdownListener() {
	escape := time.AfterFunc(escapeTimeout, func() {
		d.log.Warn("cleanup exceeded escape timer, forcing exit")
		os.Exit(1)
	})
	defer escape.Stop()

	_ = d.sess.Close()
	d.mu.Lock()
	l := d.listener
	d.mu.Unlock()
	if l != nil {
		_ = l.Close()
	}
}

func (d *Daemon) cleanupArtifacts() {
	_ = os.Remove(d.socketPath)
	_ = os.Remove(d.pidPath)
}

func (d *Daemon) removeStaleSocket() error {
	if _, err := os.Stat(d.socketPath); err == nil {
		_ = os.Remove(d.socketPath)
	}
	return nil
}

// handleConn reads exactly one command line, dispatches it, writes exactly
// one reply line, then closes the connection. A panic anywhere in dispatch
// is recovered, the session is closed, and the panic is reported as a
// runtime-kind error so the listener keeps serving the next connection.
func (d *Daemon) handleConn(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return
	}

	var cmd Command
	reply := d.safeDispatch(line, &cmd)
	d.writeReply(conn, reply)
}

func (d *Daemon) safeDispatch(line string, cmd *Command) (reply Reply) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("panic handling command", "recovered", r, "action", cmd.Action)
			_ = d.sess.Close()
			reply = errorReply(errors.Wrap(errors.KindRuntime, fmt.Sprintf("internal error: %v", r), "", nil))
		}
	}()

	if err := json.Unmarshal([]byte(line), cmd); err != nil {
		return errorReply(errors.InvalidCommandJSON(err))
	}
	if verr := validate(*cmd); verr != nil {
		return errorReply(verr)
	}

	start := time.Now()
	reply = d.dispatch(*cmd)
	d.log.Info("verb dispatched", "action", cmd.Action, "elapsed", time.Since(start), "error", reply["error"])

	if cmd.Action == "close" {
		d.requestShutdown()
	}
	return reply
}

// requestShutdown triggers the accept loop's cancellation without blocking
// on the reply already queued for the closing connection.
func (d *Daemon) requestShutdown() {
	d.mu.Lock()
	cancel := d.cancel
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (d *Daemon) writeReply(conn net.Conn, reply Reply) {
	data, err := json.Marshal(reply)
	if err != nil {
		data, _ = json.Marshal(Reply{"error": "failed to marshal reply"})
	}
	data = append(data, '\n')
	_, _ = conn.Write(data)
	if uc, ok := conn.(*net.UnixConn); ok {
		_ = uc.CloseWrite()
	}
}

func (d *Daemon) dispatch(cmd Command) Reply {
	switch cmd.Action {
	case "start":
		req := types.LaunchRequest{
			Language:    types.Language(cmd.Language),
			Program:     cmd.Script,
			Args:        cmd.Args,
			Cwd:         cmd.Cwd,
			StopOnEntry: cmd.StopOnEntry,
			Runtime:     cmd.Runtime,
			Breakpoints: cmd.Breakpoints,
		}
		status, err := d.sess.Start(req)
		return statusReply(status, err)

	case "attach":
		req := types.AttachRequest{
			Language:    types.Language(cmd.Language),
			Host:        cmd.Host,
			Port:        cmd.Port,
			PID:         cmd.PID,
			Runtime:     cmd.Runtime,
			Breakpoints: cmd.Breakpoints,
		}
		status, err := d.sess.Attach(req)
		return statusReply(status, err)

	case "vars":
		snap, err := d.sess.Vars()
		if err != nil {
			return errorReply(err)
		}
		return Reply{"variables": snap}

	case "stack":
		snap, err := d.sess.Stack()
		if err != nil {
			return errorReply(err)
		}
		return Reply{"frames": snap}

	case "eval":
		result, err := d.sess.Eval(cmd.Expression)
		if err != nil {
			return errorReply(err)
		}
		return Reply{"result": result.Result, "type": result.Type}

	case "step":
		status, err := d.sess.Step(cmd.Kind)
		return statusReply(status, err)

	case "continue":
		status, err := d.sess.Continue()
		return statusReply(status, err)

	case "break":
		bp, err := d.sess.Break(types.BreakpointSpec{Path: cmd.File, Line: cmd.Line, Condition: cmd.Condition})
		if err != nil {
			return errorReply(err)
		}
		return Reply{"breakpoints": []types.Breakpoint{bp}}

	case "source":
		lines, err := d.sess.Source(cmd.File, cmd.Line, cmd.Context)
		if err != nil {
			return errorReply(err)
		}
		return Reply{"source": lines}

	case "status":
		reply := statusReply(d.sess.Status(), nil)
		if cmd.Verbose {
			reply["output"] = d.sess.DrainOutputLog()
		}
		return reply

	case "close":
		if err := d.sess.Close(); err != nil {
			return errorReply(err)
		}
		return Reply{"message": "session closed"}

	default:
		return errorReply(errors.UnknownVerb(cmd.Action))
	}
}

func statusReply(status types.StatusInfo, err error) Reply {
	if err != nil {
		return errorReply(err)
	}
	return Reply{"state": status.State, "status": status}
}

// IsAlive reports whether pid names a process that is still running.
func IsAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// ReadPID reads a daemon PID file, returning 0 if it doesn't exist or is malformed.
func ReadPID(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return 0
	}
	return pid
}
