//go:build linux

package hotkey

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// inputEvent matches the native Linux struct input_event layout.
//
//	struct input_event {
//	    struct timeval time;
//	    __u16 type;
//	    __u16 code;
//	    __s32 value;
//	};
type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

const readBatch = 64

var inputSize = int(unsafe.Sizeof(inputEvent{}))

// DefaultOpenFlags opens a device read-only without blocking reads.
const DefaultOpenFlags = os.O_RDONLY | unix.O_NONBLOCK | unix.O_CLOEXEC

// Device is an open evdev device. Dispatch drains everything the kernel
// has buffered and Next hands the decoded events out in device order.
type Device struct {
	file *os.File
	fd   int

	closeOnce sync.Once
	closeErr  error

	chunk    []byte
	partial  []byte
	pending  []Event
	dropping bool
}

// Open opens the device node at path. The access mode comes from flags
// (O_RDONLY, O_WRONLY or O_RDWR) together with any other open flags.
func Open(path string, flags int) (*Device, error) {
	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, fmt.Errorf("open input device: %w", err)
	}
	logger.Printf("opened %s", path)
	d, err := NewDevice(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return d, nil
}

// NewDevice wraps an already open file. The device takes ownership of f.
func NewDevice(f *os.File) (*Device, error) {
	fd := int(f.Fd())
	// Fd leaves the descriptor in blocking mode; Dispatch relies on EAGAIN.
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, fmt.Errorf("set nonblocking: %w", err)
	}
	return &Device{
		file:  f,
		fd:    fd,
		chunk: make([]byte, inputSize*readBatch),
	}, nil
}

// Fd returns the descriptor to poll for readability.
func (d *Device) Fd() int {
	return d.fd
}

// Close releases the device. Only the first call closes the descriptor.
func (d *Device) Close() error {
	d.closeOnce.Do(func() {
		logger.Printf("closing %s", d.file.Name())
		d.closeErr = d.file.Close()
	})
	return d.closeErr
}

// Dispatch reads and decodes every event currently buffered by the kernel.
// It returns once a read would block.
func (d *Device) Dispatch() error {
	for {
		n, err := unix.Read(d.fd, d.chunk)
		if err != nil {
			switch {
			case errors.Is(err, unix.EAGAIN):
				return nil
			case errors.Is(err, unix.EINTR):
				continue
			case errors.Is(err, unix.ENODEV):
				return ErrDeviceGone
			default:
				return fmt.Errorf("read input device: %w", err)
			}
		}
		if n == 0 {
			return ErrDeviceGone
		}
		d.partial = append(d.partial, d.chunk[:n]...)
		d.decode()
	}
}

// Next pops the oldest decoded event.
func (d *Device) Next() (Event, bool) {
	if len(d.pending) == 0 {
		return nil, false
	}
	ev := d.pending[0]
	d.pending[0] = nil
	d.pending = d.pending[1:]
	return ev, true
}

func (d *Device) decode() {
	for len(d.partial) >= inputSize {
		var raw inputEvent
		// The buffer is sized in whole events, so the read cannot fail.
		_ = binary.Read(bytes.NewReader(d.partial[:inputSize]), binary.NativeEndian, &raw)
		d.partial = d.partial[inputSize:]

		if raw.Type == evSyn && raw.Code == synDropped {
			logger.Printf("kernel dropped events; discarding until next report")
			d.dropping = true
			continue
		}
		if d.dropping {
			if raw.Type == evSyn && raw.Code == synReport {
				d.dropping = false
			}
			continue
		}
		d.pending = append(d.pending, convert(raw))
	}
	if len(d.partial) == 0 {
		d.partial = nil
	}
}

func convert(raw inputEvent) Event {
	sec, nsec := raw.Time.Unix()
	t := time.Unix(sec, nsec)
	switch raw.Type {
	case evKey:
		return KeyEvent{Time: t, Code: raw.Code, State: KeyState(raw.Value)}
	case evSyn:
		return SyncEvent{Time: t, Code: raw.Code}
	case evRel:
		return RelativeEvent{Time: t, Axis: raw.Code, Value: raw.Value}
	case evAbs:
		return AbsoluteEvent{Time: t, Axis: raw.Code, Value: raw.Value}
	case evMsc, evSw, evLed, evSnd, evRep:
		return MiscEvent{Time: t, Type: raw.Type, Code: raw.Code, Value: raw.Value}
	default:
		return UnknownEvent{Time: t, Type: raw.Type, Code: raw.Code, Value: raw.Value}
	}
}

// Encode renders ev in the native input_event layout, the inverse of Dispatch.
func Encode(ev Event) []byte {
	var raw inputEvent
	var t time.Time
	switch e := ev.(type) {
	case KeyEvent:
		t, raw.Type, raw.Code, raw.Value = e.Time, evKey, e.Code, int32(e.State)
	case SyncEvent:
		t, raw.Type, raw.Code = e.Time, evSyn, e.Code
	case RelativeEvent:
		t, raw.Type, raw.Code, raw.Value = e.Time, evRel, e.Axis, e.Value
	case AbsoluteEvent:
		t, raw.Type, raw.Code, raw.Value = e.Time, evAbs, e.Axis, e.Value
	case MiscEvent:
		t, raw.Type, raw.Code, raw.Value = e.Time, e.Type, e.Code, e.Value
	case UnknownEvent:
		t, raw.Type, raw.Code, raw.Value = e.Time, e.Type, e.Code, e.Value
	}
	raw.Time = unix.NsecToTimeval(t.UnixNano())

	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.NativeEndian, &raw)
	return buf.Bytes()
}

// Report is the SYN_REPORT event closing a packet.
func Report(t time.Time) SyncEvent {
	return SyncEvent{Time: t, Code: synReport}
}

// Dropped is the SYN_DROPPED event the kernel emits after a buffer overrun.
func Dropped(t time.Time) SyncEvent {
	return SyncEvent{Time: t, Code: synDropped}
}
