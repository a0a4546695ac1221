package setup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
)

func fakeLookPath(t *testing.T, present ...string) {
	t.Helper()
	saved := lookPath
	t.Cleanup(func() { lookPath = saved })
	lookPath = func(name string) (string, error) {
		for _, p := range present {
			if p == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
}

func TestEnsureEnvironmentPS(t *testing.T) {
	fakeLookPath(t, "kill", "ps")
	if err := EnsureEnvironment(Options{}); err != nil {
		t.Fatalf("EnsureEnvironment failed: %v", err)
	}
}

func TestEnsureEnvironmentMissingPS(t *testing.T) {
	fakeLookPath(t, "kill", "apt-get")
	err := EnsureEnvironment(Options{Liveness: "ps"})
	if !errors.Is(err, ErrMissingTool) {
		t.Fatalf("expected ErrMissingTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "apt-get install -y procps") {
		t.Fatalf("expected an apt-get hint, got %v", err)
	}
}

func TestEnsureEnvironmentMissingKill(t *testing.T) {
	fakeLookPath(t, "ps")
	err := EnsureEnvironment(Options{})
	if !errors.Is(err, ErrMissingTool) {
		t.Fatalf("expected ErrMissingTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "install the procps package") {
		t.Fatalf("expected the generic hint, got %v", err)
	}
}

func TestEnsureEnvironmentProcfs(t *testing.T) {
	fakeLookPath(t, "kill")

	root := t.TempDir()
	if err := EnsureEnvironment(Options{Liveness: "procfs", ProcRoot: root}); err == nil {
		t.Fatalf("expected error for a proc root without self/stat")
	}

	if err := os.MkdirAll(filepath.Join(root, "self"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "self", "stat"), []byte("1 (init) S 0"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := EnsureEnvironment(Options{Liveness: "procfs", ProcRoot: root}); err != nil {
		t.Fatalf("EnsureEnvironment failed: %v", err)
	}
}

func TestEnsureEnvironmentUnknownLiveness(t *testing.T) {
	fakeLookPath(t, "kill", "ps")
	if err := EnsureEnvironment(Options{Liveness: "pidfd"}); err == nil {
		t.Fatalf("expected error for unknown liveness checker")
	}
}

func TestInstallHint(t *testing.T) {
	fakeLookPath(t, "dnf")
	if got, want := InstallHint("procps"), "try: sudo dnf install -y procps-ng"; got != want {
		t.Fatalf("InstallHint = %q, want %q", got, want)
	}

	fakeLookPath(t)
	if got := InstallHint("procps"); got != "" {
		t.Fatalf("expected no hint without a package manager, got %q", got)
	}
}

func TestPermissionHint(t *testing.T) {
	denied := &os.PathError{Op: "open", Path: "/dev/input/event3", Err: syscall.EACCES}
	err := PermissionHint(fmt.Errorf("open device: %w", denied))
	if !errors.Is(err, syscall.EACCES) {
		t.Fatalf("hint must keep the errno, got %v", err)
	}
	if !strings.Contains(err.Error(), "'input' group") {
		t.Fatalf("expected input group hint, got %v", err)
	}

	missing := &os.PathError{Op: "open", Path: "/dev/input/event3", Err: syscall.ENOENT}
	if got := PermissionHint(missing); got != error(missing) {
		t.Fatalf("non-permission errors must pass through, got %v", got)
	}
	if PermissionHint(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}
