// Package runner drives the poll loop: wait for the keyboard, feed every
// decoded event to the toggler, and stop the child on shutdown.
package runner

import (
	"errors"
	"fmt"
	"io"
	"log"

	"golang.org/x/sys/unix"

	"github.com/micha/key-runner/hotkey"
	"github.com/micha/key-runner/shutdown"
	"github.com/micha/key-runner/toggler"
)

var logger = log.New(io.Discard, "runner: ", log.LstdFlags)

// SetLogOutput routes the package debug log to w.
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Source is a pollable input event source.
type Source interface {
	Fd() int
	Dispatch() error
	Next() (hotkey.Event, bool)
}

// Runner wires a source, a toggler and a shutdown coordinator together.
type Runner struct {
	source  Source
	toggler *toggler.Toggler
	coord   *shutdown.Coordinator
}

// New creates a Runner.
func New(source Source, tg *toggler.Toggler, coord *shutdown.Coordinator) *Runner {
	return &Runner{source: source, toggler: tg, coord: coord}
}

// Run blocks until shutdown is requested or a fatal error occurs. Either
// way the tracked child is stopped before Run returns.
func (r *Runner) Run() error {
	loopErr := r.loop()
	if loopErr != nil {
		logger.Printf("loop stopped: %v", loopErr)
	}

	var stopErr error
	if err := r.toggler.Shutdown(); err != nil {
		stopErr = fmt.Errorf("stop child: %w", err)
	}
	return errors.Join(loopErr, r.coord.Err(), stopErr)
}

func (r *Runner) loop() error {
	fds := []unix.PollFd{
		{Fd: int32(r.source.Fd()), Events: unix.POLLIN},
		{Fd: int32(r.coord.Fd()), Events: unix.POLLIN},
	}

	for {
		// No timeout: the process sleeps until a key arrives or shutdown wakes it.
		if _, err := unix.Poll(fds, -1); err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("poll: %w", err)
		}

		dev := fds[0].Revents
		if dev&unix.POLLIN != 0 {
			if err := r.drain(); err != nil {
				return err
			}
		} else if dev&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			return hotkey.ErrDeviceGone
		}

		// Checked only between drains, so buffered presses are never cut short.
		if r.coord.Requested() {
			logger.Printf("shutdown requested")
			return nil
		}
	}
}

// drain decodes everything pending and applies it in device order before
// the loop looks at the shutdown flag again.
func (r *Runner) drain() error {
	if err := r.source.Dispatch(); err != nil {
		// Apply whatever was decoded before the device went away.
		if applyErr := r.apply(); applyErr != nil {
			return errors.Join(err, applyErr)
		}
		return err
	}
	return r.apply()
}

func (r *Runner) apply() error {
	for {
		ev, ok := r.source.Next()
		if !ok {
			return nil
		}
		if err := r.toggler.Handle(ev); err != nil {
			return err
		}
	}
}
