package hotkey

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func fakeInput(t *testing.T, sysRoot, node, name, ev string) {
	t.Helper()
	dir := filepath.Join(sysRoot, "class/input", node, "device")
	if err := os.MkdirAll(filepath.Join(dir, "capabilities"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "name"), []byte(name+"\n"), 0o644); err != nil {
		t.Fatalf("write name: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "capabilities/ev"), []byte(ev+"\n"), 0o644); err != nil {
		t.Fatalf("write ev: %v", err)
	}
}

func TestFindKeyboards(t *testing.T) {
	sysRoot := t.TempDir()
	fakeInput(t, sysRoot, "event10", "Some USB Keyboard", "3")
	fakeInput(t, sysRoot, "event2", "AT Translated Set 2", "120013")
	fakeInput(t, sysRoot, "event3", "Logitech Mouse", "17")
	fakeInput(t, sysRoot, "event4", "Power Button", "3")

	keyboards, err := FindKeyboards(sysRoot, "/dev")
	if err != nil {
		t.Fatalf("FindKeyboards failed: %v", err)
	}
	if len(keyboards) != 2 {
		t.Fatalf("expected 2 keyboards, got %#v", keyboards)
	}
	if keyboards[0].Path != "/dev/input/event2" || keyboards[0].Name != "AT Translated Set 2" {
		t.Fatalf("unexpected first keyboard %#v", keyboards[0])
	}
	if keyboards[1].Node != "event10" {
		t.Fatalf("expected event10 second, got %#v", keyboards[1])
	}

	path, err := FindKeyboard(sysRoot, "/dev")
	if err != nil {
		t.Fatalf("FindKeyboard failed: %v", err)
	}
	if path != "/dev/input/event2" {
		t.Fatalf("unexpected path %s", path)
	}
}

func TestFindKeyboardNone(t *testing.T) {
	sysRoot := t.TempDir()
	fakeInput(t, sysRoot, "event0", "Video Bus", "3")
	if _, err := FindKeyboard(sysRoot, "/dev"); !errors.Is(err, ErrNoKeyboard) {
		t.Fatalf("expected ErrNoKeyboard, got %v", err)
	}
}

func TestResolveDevicePath(t *testing.T) {
	cases := map[string]string{
		"/sys/class/input/event5":  "/dev/input/event5",
		"/sys/class/input/event5/": "/dev/input/event5",
		"/dev/input/event7":        "/dev/input/event7",
		"/sys/class/input/mouse0":  "/sys/class/input/mouse0",
	}
	for in, want := range cases {
		if got := ResolveDevicePath(in, SysRoot, DevRoot); got != want {
			t.Fatalf("ResolveDevicePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAwaitFindsExisting(t *testing.T) {
	calls := 0
	path, err := Await(context.Background(), t.TempDir(), func() (string, error) {
		calls++
		return "/dev/input/event1", nil
	})
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if path != "/dev/input/event1" || calls != 1 {
		t.Fatalf("unexpected result %q after %d calls", path, calls)
	}
}

func TestAwaitSeesCreatedDevice(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "event3")
	find := func() (string, error) {
		if _, err := os.Stat(target); err != nil {
			return "", ErrNoKeyboard
		}
		return target, nil
	}

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = os.WriteFile(target, nil, 0o644)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	path, err := Await(ctx, dir, find)
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if path != target {
		t.Fatalf("expected %s, got %s", target, path)
	}
}

func TestAwaitGivesUp(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := Await(ctx, t.TempDir(), func() (string, error) {
		return "", ErrNoKeyboard
	})
	if !errors.Is(err, ErrNoKeyboard) {
		t.Fatalf("expected ErrNoKeyboard, got %v", err)
	}
}

func TestKeyCodeNames(t *testing.T) {
	cases := map[string]uint16{"F3": KeyF3, "key_f9": KeyF9, "KEY_SPACE": KeySpace, " esc ": KeyEsc}
	for name, want := range cases {
		got, ok := KeyCode(name)
		if !ok || got != want {
			t.Fatalf("KeyCode(%q) = %d, %v; want %d", name, got, ok, want)
		}
	}
	if _, ok := KeyCode("NOPE"); ok {
		t.Fatalf("expected unknown name to fail")
	}
	if KeyName(KeyF3) != "KEY_F3" {
		t.Fatalf("unexpected name %q", KeyName(KeyF3))
	}
}
