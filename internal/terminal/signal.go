package terminal

import (
	"os"
	"os/signal"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Set by the signal goroutines, cleared by the main loop. Nothing else sits
// behind them.
var (
	resizeFlag      atomic.Bool
	terminationFlag atomic.Bool
)

// ResizePending reports whether the window changed size since the last
// ClearResize.
func ResizePending() bool { return resizeFlag.Load() }

// ClearResize acknowledges a resize.
func ClearResize() { resizeFlag.Store(false) }

// TerminationRequested reports whether SIGTERM, SIGHUP, SIGINT or SIGQUIT
// arrived.
func TerminationRequested() bool { return terminationFlag.Load() }

// ClearTermination acknowledges a termination request.
func ClearTermination() { terminationFlag.Store(false) }

// InstallResizeHandler sets the resize flag on every SIGWINCH until the
// returned stop function is called.
func InstallResizeHandler() (stop func()) {
	return notifyFlag(&resizeFlag, unix.SIGWINCH)
}

// InstallTerminationHandler sets the termination flag on SIGTERM, SIGHUP,
// SIGINT and SIGQUIT so the main loop can exit through its normal cleanup.
// The default action of those signals is suppressed until stop is called.
func InstallTerminationHandler() (stop func()) {
	return notifyFlag(&terminationFlag, unix.SIGTERM, unix.SIGHUP, unix.SIGINT, unix.SIGQUIT)
}

func notifyFlag(flag *atomic.Bool, sigs ...os.Signal) func() {
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, sigs...)

	go func() {
		for {
			select {
			case <-ch:
				flag.Store(true)
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
