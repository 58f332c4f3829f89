package serialmux

import (
	"bufio"
	"bytes"
	"fmt"
	"sync"
)

var ErrWriteFailed = fmt.Errorf("failed to write to serial port")

// DefaultLineBuffer is how many lines a LineSource buffers before the reader
// goroutine blocks. The rig emits at most a few hundred lines per second, so
// this gives the polling side several seconds of slack.
const DefaultLineBuffer = 1024

// LineSource turns a serial port into a pollable stream of text lines. A
// background goroutine scans the port and buffers complete lines; consumers
// poll with TryReadLine, which never blocks. Commands are written back
// through Send and SendCommand.
type LineSource struct {
	port  SerialPorter
	lines chan string

	writeMu sync.Mutex

	mu     sync.Mutex
	err    error
	closed bool

	quit chan struct{}
	done chan struct{}
}

// NewLineSource wraps an open port and starts the reader goroutine.
func NewLineSource(port SerialPorter) *LineSource {
	return NewLineSourceBuffer(port, DefaultLineBuffer)
}

// NewLineSourceBuffer wraps an open port with an explicit line buffer size.
func NewLineSourceBuffer(port SerialPorter, buffer int) *LineSource {
	if buffer <= 0 {
		buffer = DefaultLineBuffer
	}
	ls := &LineSource{
		port:  port,
		lines: make(chan string, buffer),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go ls.readLoop()
	return ls
}

// readLoop scans the port and buffers lines until the port closes or a read
// fault occurs. The blocking Scan lives here so that the polling side never
// blocks.
func (ls *LineSource) readLoop() {
	defer close(ls.done)
	defer close(ls.lines)

	scan := bufio.NewScanner(ls.port)
	for scan.Scan() {
		select {
		case ls.lines <- scan.Text():
		case <-ls.quit:
			return
		}
	}
	if err := scan.Err(); err != nil {
		ls.mu.Lock()
		if !ls.closed {
			ls.err = err
		}
		ls.mu.Unlock()
	}
}

// TryReadLine returns the next buffered line without blocking. ok is false
// when no line is currently available, which is not an error — just nothing
// to do this poll.
func (ls *LineSource) TryReadLine() (string, bool) {
	select {
	case line, ok := <-ls.lines:
		if !ok {
			return "", false
		}
		return line, true
	default:
		return "", false
	}
}

// Send writes raw bytes to the port. Used for single-byte scan triggers that
// must not be newline-terminated.
func (ls *LineSource) Send(p []byte) error {
	ls.writeMu.Lock()
	defer ls.writeMu.Unlock()
	n, err := ls.port.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return ErrWriteFailed
	}
	return nil
}

// SendCommand writes a command line to the port, appending a newline when the
// command does not already end with one.
func (ls *LineSource) SendCommand(command string) error {
	if !bytes.HasSuffix([]byte(command), []byte("\n")) {
		command += "\n"
	}
	return ls.Send([]byte(command))
}

// Closed reports whether the line stream has ended: the reader goroutine has
// exited and the buffer will receive no more lines. Buffered lines may still
// be pending.
func (ls *LineSource) Closed() bool {
	select {
	case <-ls.done:
		return true
	default:
		return false
	}
}

// Err returns the read fault that ended the stream, or nil for a clean close.
func (ls *LineSource) Err() error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.err
}

// Close closes the underlying port, which unblocks the reader goroutine.
// Close is idempotent.
func (ls *LineSource) Close() error {
	ls.mu.Lock()
	if ls.closed {
		ls.mu.Unlock()
		return nil
	}
	ls.closed = true
	ls.mu.Unlock()
	close(ls.quit)
	return ls.port.Close()
}
