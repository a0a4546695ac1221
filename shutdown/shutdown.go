// Package shutdown carries the stop request from the signal handler to the
// main loop.
//
// The flag is set once and never cleared. Setting it also writes a byte to
// a self-pipe so a loop blocked in poll(2) on Fd wakes up.
package shutdown

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"
)

var logger = log.New(io.Discard, "shutdown: ", log.LstdFlags)

// SetLogOutput routes the package debug log to w.
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Coordinator holds the process-wide stop flag.
type Coordinator struct {
	requested atomic.Bool

	mu     sync.Mutex
	err    error
	closed bool

	readFd  int
	writeFd int

	signals   chan os.Signal
	closeOnce sync.Once
}

// New creates a coordinator and its wake pipe.
func New() (*Coordinator, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, fmt.Errorf("create wake pipe: %w", err)
	}
	for _, fd := range fds {
		unix.CloseOnExec(fd)
		if err := unix.SetNonblock(fd, true); err != nil {
			_ = unix.Close(fds[0])
			_ = unix.Close(fds[1])
			return nil, fmt.Errorf("set nonblocking: %w", err)
		}
	}
	return &Coordinator{readFd: fds[0], writeFd: fds[1]}, nil
}

// Install requests shutdown when one of sigs arrives. With no arguments it
// listens for SIGINT and SIGTERM.
func (c *Coordinator) Install(sigs ...os.Signal) {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	c.signals = make(chan os.Signal, 1)
	signal.Notify(c.signals, sigs...)

	go func(ch <-chan os.Signal) {
		for sig := range ch {
			logger.Printf("received %v", sig)
			c.Request()
		}
	}(c.signals)
}

// Request sets the flag and wakes the main loop. Safe to call repeatedly
// and from any goroutine.
func (c *Coordinator) Request() {
	c.requested.Store(true)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	// A full pipe already holds a pending wake-up.
	_, _ = unix.Write(c.writeFd, []byte{1})
}

// Fail records err as the reason for stopping and requests shutdown. Only
// the first error is kept.
func (c *Coordinator) Fail(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
	logger.Printf("fatal: %v", err)
	c.Request()
}

// Requested reports whether shutdown has been requested.
func (c *Coordinator) Requested() bool {
	return c.requested.Load()
}

// Err returns the error passed to Fail, if any.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Fd is readable once shutdown has been requested.
func (c *Coordinator) Fd() int {
	return c.readFd
}

// Close stops signal delivery and releases the wake pipe.
func (c *Coordinator) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.signals != nil {
			signal.Stop(c.signals)
			close(c.signals)
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		c.closed = true
		err = errors.Join(unix.Close(c.readFd), unix.Close(c.writeFd))
	})
	return err
}
