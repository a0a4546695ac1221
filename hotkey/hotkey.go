// Package hotkey reads key events from a Linux evdev keyboard device.
package hotkey

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"
)

var logger = log.New(io.Discard, "hotkey: ", log.LstdFlags)

// SetLogOutput routes the package debug log to w.
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

var (
	// ErrNoKeyboard is returned when discovery finds no keyboard device.
	ErrNoKeyboard = errors.New("no keyboard device found")
	// ErrDeviceGone is returned when the open device disappears (unplugged).
	ErrDeviceGone = errors.New("input device is gone")
	// ErrUnsupported is returned on platforms without evdev.
	ErrUnsupported = errors.New("evdev input is not supported on this platform")
)

// Event types (Linux EV_* constants)
const (
	evSyn = 0x00
	evKey = 0x01
	evRel = 0x02
	evAbs = 0x03
	evMsc = 0x04
	evSw  = 0x05
	evLed = 0x11
	evSnd = 0x12
	evRep = 0x14
)

// Sync codes
const (
	synReport  = 0
	synDropped = 3
)

// KeyState is the value of an EV_KEY event.
type KeyState int32

const (
	KeyReleased KeyState = 0
	KeyPressed  KeyState = 1
	KeyRepeated KeyState = 2
)

func (s KeyState) String() string {
	switch s {
	case KeyReleased:
		return "released"
	case KeyPressed:
		return "pressed"
	case KeyRepeated:
		return "repeated"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// Event is one decoded input event. The concrete types below are the only
// implementations.
type Event interface {
	isEvent()
}

// KeyEvent is a key or button changing state.
type KeyEvent struct {
	Time  time.Time
	Code  uint16
	State KeyState
}

// SyncEvent separates packets of events (SYN_REPORT and friends).
type SyncEvent struct {
	Time time.Time
	Code uint16
}

// RelativeEvent is pointer or wheel motion.
type RelativeEvent struct {
	Time  time.Time
	Axis  uint16
	Value int32
}

// AbsoluteEvent is an absolute axis update (touchpads, tablets).
type AbsoluteEvent struct {
	Time  time.Time
	Axis  uint16
	Value int32
}

// MiscEvent carries the remaining well-known event types: MSC, SW, LED, SND and REP.
type MiscEvent struct {
	Time  time.Time
	Type  uint16
	Code  uint16
	Value int32
}

// UnknownEvent is any event type not listed above.
type UnknownEvent struct {
	Time  time.Time
	Type  uint16
	Code  uint16
	Value int32
}

func (KeyEvent) isEvent()      {}
func (SyncEvent) isEvent()     {}
func (RelativeEvent) isEvent() {}
func (AbsoluteEvent) isEvent() {}
func (MiscEvent) isEvent()     {}
func (UnknownEvent) isEvent()  {}

// Keyboard is a discovered keyboard device.
type Keyboard struct {
	// Path is the device node, e.g. /dev/input/event3.
	Path string
	// Node is the event node name, e.g. event3.
	Node string
	// Name is the kernel-reported device name.
	Name string
}
