// Package parser turns the user-facing command and key strings into the
// values the daemon works with.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/micha/key-runner/hotkey"
)

var (
	// ErrEmptyCommand is returned for a command with no words in it.
	ErrEmptyCommand = errors.New("command is empty")
	// ErrUnknownKey is returned when a key is neither a code nor a known name.
	ErrUnknownKey = errors.New("unknown key")
)

// ParseCommand splits a command line on whitespace. There is no quoting:
// "notify-send 'a b'" yields three words, the same as a shell-less exec.
func ParseCommand(s string) ([]string, error) {
	argv := strings.Fields(s)
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}
	return argv, nil
}

// ParseKey accepts a decimal evdev code ("61") or a key name ("F3",
// "KEY_F3", "pause"). Plain digits are always read as a code, so the digit
// keys must be written with the prefix ("KEY_1").
func ParseKey(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrUnknownKey)
	}

	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		if n == 0 || n > hotkey.KeyMax {
			return 0, fmt.Errorf("key code %d out of range 1..%d", n, hotkey.KeyMax)
		}
		return uint16(n), nil
	}

	code, ok := hotkey.KeyCode(s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKey, s)
	}
	return code, nil
}
