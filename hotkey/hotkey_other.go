//go:build !linux

package hotkey

import (
	"os"
	"time"
)

// DefaultOpenFlags is the read-only open mode.
const DefaultOpenFlags = os.O_RDONLY

// Device is unavailable without evdev.
type Device struct{}

func Open(path string, flags int) (*Device, error) {
	return nil, ErrUnsupported
}

func NewDevice(f *os.File) (*Device, error) {
	return nil, ErrUnsupported
}

func (d *Device) Fd() int { return -1 }
func (d *Device) Close() error { return nil }
func (d *Device) Dispatch() error { return ErrUnsupported }
func (d *Device) Next() (Event, bool) { return nil, false }
func Encode(ev Event) []byte { return nil }
func Report(t time.Time) SyncEvent { return SyncEvent{Time: t} }
func Dropped(t time.Time) SyncEvent { return SyncEvent{Time: t, Code: synDropped} }
