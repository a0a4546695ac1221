package process

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

// KillPath is the helper used to deliver the terminate signal.
var KillPath = "kill"

// Terminate asks child to stop with SIGTERM and blocks until it has been
// reaped. A child that already exited is only reaped. There is no timeout: a
// child ignoring SIGTERM keeps Terminate waiting.
func Terminate(child *Child, checker Checker) error {
	if !child.consumed.CompareAndSwap(false, true) {
		return ErrConsumed
	}

	alive, err := checker.IsAlive(child.pid)
	if err != nil {
		return err
	}
	if !alive {
		logger.Printf("pid %d already exited", child.pid)
		return child.wait()
	}

	logger.Printf("Sending SIGTERM to pid %d", child.pid)
	if err := signalTerm(child.pid); err != nil {
		return err
	}

	return child.wait()
}

// signalTerm runs the kill helper and waits for it. The helper failing to
// start or to be waited on is an error; a non-zero exit only means the
// target vanished in between, which the following wait on the child covers.
func signalTerm(pid int) error {
	cmd := exec.Command(KillPath, "-s", "TERM", strconv.Itoa(pid))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start terminate helper: %w", err)
	}
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return fmt.Errorf("wait for terminate helper: %w", err)
		}
		logger.Printf("terminate helper for pid %d exited with %d", pid, exitErr.ExitCode())
	}
	return nil
}
