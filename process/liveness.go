package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Checker reports whether a process identifier belongs to a live process.
//
// An error means the process table could not be queried at all; callers
// must not read it as "not alive".
type Checker interface {
	IsAlive(pid int) (bool, error)
}

// PSChecker queries the process table through ps(1).
type PSChecker struct {
	// Path is the ps binary. Defaults to "ps" looked up in PATH.
	Path string
}

// IsAlive runs ps for exactly pid. Zombies count as dead: they have exited
// and only wait for their parent to reap them.
func (c PSChecker) IsAlive(pid int) (bool, error) {
	bin := c.Path
	if bin == "" {
		bin = "ps"
	}

	out, err := exec.Command(bin, "-o", "pid=,stat=", "-p", strconv.Itoa(pid)).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return false, fmt.Errorf("query process table: %w", err)
		}
		// ps exits 1 when nothing matched. Anything it printed is still parsed below.
	}

	return parsePSLine(strings.TrimSpace(string(out)), pid), nil
}

func parsePSLine(line string, pid int) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	found, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil || int(found) != pid {
		return false
	}
	if len(fields) > 1 && strings.HasPrefix(fields[1], "Z") {
		return false
	}
	return true
}

// ProcfsChecker reads /proc/<pid>/stat directly.
type ProcfsChecker struct {
	// Root is the procfs mount point. Defaults to "/proc".
	Root string
}

// IsAlive reports whether <root>/<pid>/stat exists and describes a process
// that is neither a zombie nor dead.
func (c ProcfsChecker) IsAlive(pid int) (bool, error) {
	root := c.Root
	if root == "" {
		root = "/proc"
	}
	if _, err := os.Stat(root); err != nil {
		return false, fmt.Errorf("query process table: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(root, strconv.Itoa(pid), "stat"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("query process table: %w", err)
	}

	// stat format is "pid (comm) state ...", and comm may itself contain ") "
	raw := string(data)
	open := strings.Index(raw, " (")
	close := strings.LastIndex(raw, ")")
	if open == -1 || close == -1 || close+2 > len(raw) {
		return false, nil
	}
	found, err := strconv.Atoi(raw[:open])
	if err != nil || found != pid {
		return false, nil
	}
	fields := strings.Fields(raw[close+1:])
	if len(fields) == 0 {
		return false, nil
	}
	switch fields[0] {
	case "Z", "X", "x":
		return false, nil
	}
	return true, nil
}
