package daemon

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestSocketAndPIDPath(t *testing.T) {
	dir := "/tmp/agent-debugger-test"
	if got, want := SocketPath(dir), filepath.Join(dir, "daemon.sock"); got != want {
		t.Errorf("SocketPath = %q, want %q", got, want)
	}
	if got, want := PIDPath(dir), filepath.Join(dir, "daemon.pid"); got != want {
		t.Errorf("PIDPath = %q, want %q", got, want)
	}
}

func TestReadPID_MissingFile(t *testing.T) {
	if pid := ReadPID(filepath.Join(t.TempDir(), "nope.pid")); pid != 0 {
		t.Errorf("expected 0 for missing file, got %d", pid)
	}
}

func TestReadPID_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.pid")
	if err := os.WriteFile(path, []byte("not-a-pid"), 0o644); err != nil {
		t.Fatal(err)
	}
	if pid := ReadPID(path); pid != 0 {
		t.Errorf("expected 0 for malformed contents, got %d", pid)
	}
}

func TestReadPID_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.pid")
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		t.Fatal(err)
	}
	if pid := ReadPID(path); pid != os.Getpid() {
		t.Errorf("expected %d, got %d", os.Getpid(), pid)
	}
}

func TestIsAlive_CurrentProcess(t *testing.T) {
	if !IsAlive(os.Getpid()) {
		t.Error("expected current process to be alive")
	}
}

func TestIsAlive_InvalidPID(t *testing.T) {
	if IsAlive(0) || IsAlive(-1) {
		t.Error("expected non-positive pids to report not alive")
	}
}
