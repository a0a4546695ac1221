// Package setup checks the host for what the daemon needs before it starts:
// the kill and ps helpers, a mounted procfs, and read access to the keyboard.
package setup

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
)

var logger = log.New(io.Discard, "setup: ", log.LstdFlags)

// SetLogOutput routes the package debug log to w.
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

// ErrMissingTool is wrapped by EnsureEnvironment when a helper binary is not
// on PATH.
var ErrMissingTool = errors.New("required tool not found")

// Options selects which checks EnsureEnvironment runs.
type Options struct {
	// KillPath is the termination helper, looked up on PATH unless absolute.
	KillPath string
	// Liveness is "ps" or "procfs".
	Liveness string
	// ProcRoot is the procfs mount used by the procfs checker.
	ProcRoot string
}

// EnsureEnvironment checks for the required helpers. Unlike an interactive
// installer it never changes the system; a missing tool fails with a hint
// naming the package that provides it.
func EnsureEnvironment(opts Options) error {
	killPath := opts.KillPath
	if killPath == "" {
		killPath = "kill"
	}
	if err := requireTool(killPath); err != nil {
		return err
	}

	switch opts.Liveness {
	case "", "ps":
		if err := requireTool("ps"); err != nil {
			return err
		}
	case "procfs":
		root := opts.ProcRoot
		if root == "" {
			root = "/proc"
		}
		if _, err := os.Stat(filepath.Join(root, "self", "stat")); err != nil {
			return fmt.Errorf("procfs not available at %s: %w", root, err)
		}
	default:
		return fmt.Errorf("unknown liveness checker %q", opts.Liveness)
	}
	return nil
}

func requireTool(name string) error {
	path, err := lookPath(name)
	if err != nil {
		hint := InstallHint("procps")
		if hint == "" {
			hint = "install the procps package"
		}
		return fmt.Errorf("%w: %s (%s)", ErrMissingTool, name, hint)
	}
	logger.Printf("found %s at %s", name, path)
	return nil
}

var lookPath = exec.LookPath
