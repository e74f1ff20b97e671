package input

import (
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sys/unix"
)

// readSize is the most bytes taken from the terminal per poll
const readSize = 32

// Source delivers raw input bytes. ReadTimeout waits at most timeout for
// data and returns (0, nil) when none arrived.
type Source interface {
	ReadTimeout(p []byte, timeout time.Duration) (int, error)
}

// FDSource reads a terminal file descriptor with poll(2) and read(2).
type FDSource struct {
	fd int
}

// NewFDSource wraps fd, normally os.Stdin.Fd().
func NewFDSource(fd int) *FDSource {
	return &FDSource{fd: fd}
}

// ReadTimeout polls the descriptor once. A zero timeout never blocks.
// Interrupted and would-block reads count as "no data".
func (s *FDSource) ReadTimeout(p []byte, timeout time.Duration) (int, error) {
	fds := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLIN}}

	n, err := unix.Poll(fds, int(timeout/time.Millisecond))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to poll input: %w", err)
	}
	if n == 0 {
		return 0, nil
	}

	revents := fds[0].Revents
	if revents&unix.POLLIN == 0 {
		if revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 {
			return 0, io.EOF
		}
		return 0, nil
	}

	rn, err := unix.Read(s.fd, p)
	if err != nil {
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read input: %w", err)
	}
	if rn < 0 {
		return 0, nil
	}
	return rn, nil
}

// Poller reads at most one chunk per call and hands out its events one at a
// time. Each chunk is decoded on its own; a sequence split across two reads
// is dropped.
type Poller struct {
	src     Source
	timeout time.Duration
	buf     [readSize]byte
	queue   []Event
}

// NewPoller creates a poller over src that waits up to timeout per read.
func NewPoller(src Source, timeout time.Duration) *Poller {
	if timeout < 0 {
		timeout = 0
	}
	return &Poller{src: src, timeout: timeout}
}

// Poll returns the next key event, or None when nothing arrived. Errors come
// only from the source, never from undecodable input.
func (p *Poller) Poll() (Event, error) {
	if ev, ok := p.pop(); ok {
		return ev, nil
	}

	n, err := p.src.ReadTimeout(p.buf[:], p.timeout)
	if err != nil {
		return None, err
	}
	if n == 0 {
		return None, nil
	}

	p.queue = appendEvents(p.queue[:0], p.buf[:n])
	ev, _ := p.pop()
	return ev, nil
}

// Pending is the number of decoded events not yet returned.
func (p *Poller) Pending() int { return len(p.queue) }

func (p *Poller) pop() (Event, bool) {
	if len(p.queue) == 0 {
		return None, false
	}
	ev := p.queue[0]
	p.queue = p.queue[1:]
	return ev, true
}
