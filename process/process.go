// Package process spawns the bound command and implements the protocol for
// stopping it again.
package process

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// RunIDEnv is the environment variable carrying the launch identifier into the child.
const RunIDEnv = "KEY_RUNNER_RUN_ID"

var logger = log.New(io.Discard, "process: ", log.LstdFlags)

// SetLogOutput routes the package debug log to w.
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

var (
	// ErrEmptyCommand is returned when a Command has no argv.
	ErrEmptyCommand = errors.New("command is required")
	// ErrConsumed is returned when a child that was already terminated or reaped is used again.
	ErrConsumed = errors.New("child already terminated")
)

// Command describes how to launch the bound command.
type Command struct {
	Argv []string
	// OutputPath, when set, receives the child's stdout and stderr (appended).
	OutputPath string
	// Env is added to the daemon's own environment.
	Env []string
}

// Launch starts a new child process for the command.
func (c Command) Launch() (*Child, error) {
	if len(c.Argv) == 0 || c.Argv[0] == "" {
		return nil, ErrEmptyCommand
	}

	runID := uuid.NewString()
	cmd := exec.Command(c.Argv[0], c.Argv[1:]...)
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Env = append(cmd.Env, RunIDEnv+"="+runID)

	// cmd.Stdin is left nil, so it will use /dev/null
	var out *os.File
	if c.OutputPath != "" {
		f, err := os.OpenFile(c.OutputPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open output log: %w", err)
		}
		out = f
		cmd.Stdout = f
		cmd.Stderr = f
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	logger.Printf("Starting %q (run %s)", c.Argv, runID)
	err := cmd.Start()
	if out != nil {
		// The child holds its own descriptor after Start.
		_ = out.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", c.Argv[0], err)
	}

	child := &Child{
		RunID:   runID,
		Started: time.Now(),
		cmd:     cmd,
		pid:     cmd.Process.Pid,
	}
	logger.Printf("Started pid %d (run %s)", child.pid, runID)
	return child, nil
}

// Child is a spawned command. It is reaped exactly once.
type Child struct {
	RunID   string
	Started time.Time

	cmd *exec.Cmd
	pid int

	// consumed is set once the child has been handed to Terminate or Reap.
	consumed atomic.Bool

	waitOnce sync.Once
	waitErr  error
}

// PID returns the OS process identifier.
func (c *Child) PID() int {
	return c.pid
}

// ExitCode returns the exit code recorded by the wait, or -1 if the child
// has not been reaped or was killed by a signal.
func (c *Child) ExitCode() int {
	if c.cmd.ProcessState == nil {
		return -1
	}
	return c.cmd.ProcessState.ExitCode()
}

// Reap waits for a child that is known to have exited and releases it.
func (c *Child) Reap() error {
	if !c.consumed.CompareAndSwap(false, true) {
		return ErrConsumed
	}
	return c.wait()
}

// wait blocks until the child exits. A non-zero exit status or death by
// signal is the expected outcome here and is not reported as an error.
func (c *Child) wait() error {
	c.waitOnce.Do(func() {
		err := c.cmd.Wait()
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			c.waitErr = fmt.Errorf("wait for pid %d: %w", c.pid, err)
			return
		}
		logger.Printf("Reaped pid %d (run %s): %v", c.pid, c.RunID, c.cmd.ProcessState)
	})
	return c.waitErr
}
