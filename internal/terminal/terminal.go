// Package terminal owns the controlling terminal: its size, the alternate
// screen, cursor visibility, raw mode and the signal flags the main loop
// polls. Everything it turns on is turned off again by Cleanup.
package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Fallback size when the window size cannot be queried
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// Control sequences
const (
	seqAltScreenEnter = "\x1b[?1049h"
	seqAltScreenExit  = "\x1b[?1049l"
	seqCursorHide     = "\x1b[?25l"
	seqCursorShow     = "\x1b[?25h"
	seqClearScreen    = "\x1b[2J\x1b[H"
	seqResetAttrs     = "\x1b[0m"
)

type teardown struct {
	name string
	fn   func() error
}

// Controller drives one terminal. It is not safe for concurrent use; only
// the signal flags are shared with other goroutines.
type Controller struct {
	out   io.Writer
	outFd int
	inFd  int

	// Replaced in tests
	makeRaw   func(fd int) (restore func() error, err error)
	getSize   func(fd int) (int, int, error)
	onSignals func() (stop func())

	teardowns []teardown
	active    bool
}

// New creates a controller reading keys from in and drawing to out.
func New(in, out *os.File) *Controller {
	return newController(int(in.Fd()), out, int(out.Fd()))
}

func newController(inFd int, out io.Writer, outFd int) *Controller {
	return &Controller{
		out:       out,
		outFd:     outFd,
		inFd:      inFd,
		makeRaw:   rawMode,
		getSize:   winsize,
		onSignals: installHandlers,
	}
}

func rawMode(fd int) (func() error, error) {
	st, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() error { return term.Restore(fd, st) }, nil
}

func winsize(fd int) (int, int, error) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, err
	}
	return int(ws.Col), int(ws.Row), nil
}

func installHandlers() func() {
	stopResize := InstallResizeHandler()
	stopTerm := InstallTerminationHandler()
	return func() {
		stopTerm()
		stopResize()
	}
}

// Size returns the terminal width and height. A failed query or an empty
// window yields 80x24.
func (c *Controller) Size() (width, height int) {
	w, h, err := c.getSize(c.outFd)
	if err != nil || w <= 0 || h <= 0 {
		return DefaultWidth, DefaultHeight
	}
	return w, h
}

// Write sends p to the terminal unchanged.
func (c *Controller) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

func (c *Controller) writeSeq(seq string) error {
	_, err := io.WriteString(c.out, seq)
	return err
}

// EnterAltScreen switches to the alternate screen buffer.
func (c *Controller) EnterAltScreen() error { return c.writeSeq(seqAltScreenEnter) }

// ExitAltScreen returns to the normal screen buffer.
func (c *Controller) ExitAltScreen() error { return c.writeSeq(seqAltScreenExit) }

// HideCursor hides the cursor.
func (c *Controller) HideCursor() error { return c.writeSeq(seqCursorHide) }

// ShowCursor shows the cursor.
func (c *Controller) ShowCursor() error { return c.writeSeq(seqCursorShow) }

// Init enters the alternate screen, hides the cursor, switches the input to
// raw mode and installs the signal handlers, in that order. If a step fails
// the steps already done are undone before the error is returned. Calling
// Init on an active controller does nothing.
func (c *Controller) Init() error {
	if c.active {
		return nil
	}

	if err := c.EnterAltScreen(); err != nil {
		return c.abort(fmt.Errorf("failed to enter alternate screen: %w", err))
	}
	c.push("alternate screen", c.ExitAltScreen)

	if err := c.writeSeq(seqClearScreen); err != nil {
		return c.abort(fmt.Errorf("failed to clear screen: %w", err))
	}

	if err := c.HideCursor(); err != nil {
		return c.abort(fmt.Errorf("failed to hide cursor: %w", err))
	}
	c.push("cursor", c.ShowCursor)

	restore, err := c.makeRaw(c.inFd)
	if err != nil {
		return c.abort(fmt.Errorf("failed to enter raw mode: %w", err))
	}
	c.push("raw mode", restore)

	ClearResize()
	ClearTermination()
	stop := c.onSignals()
	c.push("signal handlers", func() error {
		stop()
		return nil
	})

	c.active = true
	return nil
}

func (c *Controller) push(name string, fn func() error) {
	c.teardowns = append(c.teardowns, teardown{name: name, fn: fn})
}

func (c *Controller) abort(err error) error {
	if cerr := c.runTeardowns(); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}

// Cleanup undoes everything Init did, in reverse order. Each step runs at
// most once no matter how often Cleanup is called, and a failing step does
// not stop the ones after it.
func (c *Controller) Cleanup() error {
	if len(c.teardowns) == 0 {
		return nil
	}
	// Attribute state is terminal-wide; never leave colors behind
	resetErr := c.writeSeq(seqResetAttrs)
	err := c.runTeardowns()
	c.active = false
	if resetErr != nil {
		return errors.Join(fmt.Errorf("failed to reset attributes: %w", resetErr), err)
	}
	return err
}

func (c *Controller) runTeardowns() error {
	var errs []error
	for len(c.teardowns) > 0 {
		last := len(c.teardowns) - 1
		td := c.teardowns[last]
		c.teardowns = c.teardowns[:last]
		if err := td.fn(); err != nil {
			errs = append(errs, fmt.Errorf("failed to restore %s: %w", td.name, err))
		}
	}
	return errors.Join(errs...)
}

// Active reports whether Init succeeded and Cleanup has not run yet.
func (c *Controller) Active() bool { return c.active }

// EmergencyReset writes the sequences that leave the alternate screen, show
// the cursor and reset attributes. It is for paths where the controller's
// state is unknown, such as a recovered panic; raw mode is not touched.
func EmergencyReset(w io.Writer) {
	_, _ = io.WriteString(w, seqResetAttrs+seqCursorShow+seqAltScreenExit)
}
