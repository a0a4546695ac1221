package process

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func waitDead(t *testing.T, pid int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		alive, err := (PSChecker{}).IsAlive(pid)
		if err != nil {
			t.Fatalf("IsAlive failed: %v", err)
		}
		if !alive {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("pid %d still alive", pid)
}

func TestLaunchEmptyCommand(t *testing.T) {
	if _, err := (Command{}).Launch(); !errors.Is(err, ErrEmptyCommand) {
		t.Fatalf("expected ErrEmptyCommand, got %v", err)
	}
}

func TestLaunchMissingBinary(t *testing.T) {
	_, err := Command{Argv: []string{filepath.Join(t.TempDir(), "nope")}}.Launch()
	if err == nil {
		t.Fatalf("expected start error for missing binary")
	}
}

func TestLaunchWritesOutputLogAndRunID(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "out.log")
	child, err := Command{
		Argv:       []string{"sh", "-c", "echo out; echo err 1>&2; echo $" + RunIDEnv},
		OutputPath: logPath,
	}.Launch()
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	if child.RunID == "" {
		t.Fatalf("expected run ID to be set")
	}
	if err := child.Reap(); err != nil {
		t.Fatalf("Reap failed: %v", err)
	}
	if child.ExitCode() != 0 {
		t.Fatalf("expected exit code 0, got %d", child.ExitCode())
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading output log: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, "out\n") || !strings.Contains(got, "err\n") {
		t.Fatalf("output log missing streams: %q", got)
	}
	if !strings.Contains(got, child.RunID) {
		t.Fatalf("output log missing run ID %s: %q", child.RunID, got)
	}
}

func TestTerminateStopsAndReaps(t *testing.T) {
	child, err := Command{Argv: []string{"sleep", "60"}}.Launch()
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- Terminate(child, PSChecker{}) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Terminate failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Terminate did not return in time")
	}

	alive, err := (PSChecker{}).IsAlive(child.PID())
	if err != nil {
		t.Fatalf("IsAlive failed: %v", err)
	}
	if alive {
		t.Fatalf("pid %d survived Terminate", child.PID())
	}
	if child.cmd.ProcessState == nil {
		t.Fatalf("expected child to be reaped")
	}
}

func TestTerminateAlreadyExited(t *testing.T) {
	child, err := Command{Argv: []string{"true"}}.Launch()
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	waitDead(t, child.PID())

	if err := Terminate(child, PSChecker{}); err != nil {
		t.Fatalf("Terminate of exited child failed: %v", err)
	}
	if child.cmd.ProcessState == nil {
		t.Fatalf("expected exited child to be reaped")
	}
}

func TestTerminateTwice(t *testing.T) {
	child, err := Command{Argv: []string{"sleep", "60"}}.Launch()
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	if err := Terminate(child, PSChecker{}); err != nil {
		t.Fatalf("Terminate failed: %v", err)
	}
	if err := Terminate(child, PSChecker{}); !errors.Is(err, ErrConsumed) {
		t.Fatalf("expected ErrConsumed, got %v", err)
	}
	if err := child.Reap(); !errors.Is(err, ErrConsumed) {
		t.Fatalf("expected ErrConsumed from Reap, got %v", err)
	}
}

func TestTerminateHelperMissing(t *testing.T) {
	child, err := Command{Argv: []string{"sleep", "60"}}.Launch()
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	defer func() {
		_ = child.cmd.Process.Kill()
		_ = child.wait()
	}()

	saved := KillPath
	KillPath = filepath.Join(t.TempDir(), "no-kill")
	defer func() { KillPath = saved }()

	if err := Terminate(child, PSChecker{}); err == nil {
		t.Fatalf("expected error when the terminate helper cannot start")
	}
}

type brokenChecker struct{}

func (brokenChecker) IsAlive(int) (bool, error) {
	return false, errors.New("process table unavailable")
}

func TestTerminateLivenessFailure(t *testing.T) {
	child, err := Command{Argv: []string{"sleep", "60"}}.Launch()
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	defer func() {
		_ = child.cmd.Process.Kill()
		_ = child.wait()
	}()

	if err := Terminate(child, brokenChecker{}); err == nil {
		t.Fatalf("expected liveness failure to propagate")
	}
}
