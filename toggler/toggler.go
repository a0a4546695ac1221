// Package toggler decides, for every key press, whether to launch the bound
// command or stop the instance that is running.
package toggler

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/micha/key-runner/hotkey"
	"github.com/micha/key-runner/process"
)

var logger = log.New(io.Discard, "toggler: ", log.LstdFlags)

// SetLogOutput routes the package debug log to w.
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

// State is the toggler state.
type State int

const (
	// StateIdle means no child is believed to be running.
	StateIdle State = iota
	// StateRunning means a child is tracked.
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Launcher starts a new child for the bound command.
type Launcher interface {
	Launch() (*process.Child, error)
}

// Option configures a Toggler.
type Option func(*Toggler)

// WithChecker sets the liveness checker. The default runs ps.
func WithChecker(checker process.Checker) Option {
	return func(t *Toggler) {
		t.checker = checker
	}
}

// WithFatalHandler sets the callback for errors raised by background
// terminations. The default only logs them.
func WithFatalHandler(fn func(error)) Option {
	return func(t *Toggler) {
		t.onFatal = fn
	}
}

// Toggler is the state machine. Handle and Shutdown must be called from a
// single goroutine; children handed to background terminations are no
// longer referenced by it.
type Toggler struct {
	launcher Launcher
	key      uint16
	checker  process.Checker
	onFatal  func(error)

	child *process.Child
	tasks sync.WaitGroup
}

// New creates a toggler for key that launches children through launcher.
func New(launcher Launcher, key uint16, opts ...Option) *Toggler {
	t := &Toggler{
		launcher: launcher,
		key:      key,
		checker:  process.PSChecker{},
		onFatal: func(err error) {
			logger.Printf("background termination failed: %v", err)
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// State returns the current state.
func (t *Toggler) State() State {
	if t.child == nil {
		return StateIdle
	}
	return StateRunning
}

// Child returns the tracked child, or nil when idle.
func (t *Toggler) Child() *process.Child {
	return t.child
}

// Handle applies one input event. Only a press of the bound key changes
// state; every other event is ignored.
func (t *Toggler) Handle(ev hotkey.Event) error {
	switch e := ev.(type) {
	case hotkey.KeyEvent:
		if e.State != hotkey.KeyPressed || e.Code != t.key {
			return nil
		}
		logger.Printf("key %d pressed", e.Code)
		return t.Toggle()
	case hotkey.SyncEvent:
		return nil
	case hotkey.RelativeEvent:
		return nil
	case hotkey.AbsoluteEvent:
		return nil
	case hotkey.MiscEvent:
		return nil
	case hotkey.UnknownEvent:
		return nil
	default:
		logger.Printf("unhandled event type %T", ev)
		return nil
	}
}

// Toggle launches the command when idle, stops the tracked child when it is
// still alive, and relaunches when it exited on its own.
func (t *Toggler) Toggle() error {
	if t.child == nil {
		logger.Printf("no process so start it")
		return t.launch()
	}

	alive, err := t.checker.IsAlive(t.child.PID())
	if err != nil {
		return err
	}

	old := t.child
	t.child = nil
	if alive {
		logger.Printf("stopping pid %d", old.PID())
		t.background(func() error {
			return process.Terminate(old, t.checker)
		})
		return nil
	}

	logger.Printf("pid %d exited on its own, relaunching", old.PID())
	t.background(old.Reap)
	return t.launch()
}

// Shutdown stops the tracked child, then waits for every background
// termination to finish.
func (t *Toggler) Shutdown() error {
	var err error
	if t.child != nil {
		old := t.child
		t.child = nil
		logger.Printf("shutdown: stopping pid %d", old.PID())
		err = process.Terminate(old, t.checker)
	}
	t.tasks.Wait()
	return err
}

func (t *Toggler) launch() error {
	child, err := t.launcher.Launch()
	if err != nil {
		return fmt.Errorf("launch: %w", err)
	}
	t.child = child
	return nil
}

func (t *Toggler) background(fn func() error) {
	t.tasks.Add(1)
	go func() {
		defer t.tasks.Done()
		if err := fn(); err != nil {
			t.onFatal(err)
		}
	}()
}
