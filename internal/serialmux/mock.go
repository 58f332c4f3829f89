package serialmux

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"time"
)

// ReplayPort implements SerialPorter by replaying a fixed script of lines at
// a configurable interval, simulating a rig that is mid-scan. Used by the
// capture CLI's dev mode and by tests.
type ReplayPort struct {
	reader *io.PipeReader

	mu      sync.Mutex
	written bytes.Buffer
	closed  bool
}

// NewReplayPort starts replaying the given lines, one per interval. After the
// script is exhausted the port reports EOF, like a device that went quiet and
// was unplugged.
func NewReplayPort(lines []string, interval time.Duration) *ReplayPort {
	r, w := io.Pipe()
	p := &ReplayPort{reader: r}

	go func() {
		defer w.Close()
		for _, line := range lines {
			if interval > 0 {
				time.Sleep(interval)
			}
			if _, err := io.WriteString(w, line+"\n"); err != nil {
				return
			}
		}
	}()

	return p
}

func (p *ReplayPort) Read(buf []byte) (int, error) {
	return p.reader.Read(buf)
}

func (p *ReplayPort) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, errors.New("serial port closed")
	}
	return p.written.Write(data)
}

func (p *ReplayPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return p.reader.Close()
}

// WrittenData returns everything written to the port, such as scan triggers.
func (p *ReplayPort) WrittenData() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.written.Bytes()...)
}

// TestablePort implements SerialPorter with configurable behaviour for
// testing: scripted read data, captured writes, and injectable errors.
type TestablePort struct {
	mu sync.Mutex

	readBuffer  bytes.Buffer
	writeBuffer bytes.Buffer

	// ReadError is returned by the next Read call if set.
	ReadError error

	// WriteError is returned by the next Write call if set.
	WriteError error

	// CloseError is returned by Close if set.
	CloseError error

	// ShortWrite makes Write report one byte fewer than requested.
	ShortWrite bool

	closed   bool
	readCond *sync.Cond
}

// NewTestablePort creates a port with blocking reads: Read waits until data
// is added or the port is closed, like a real serial device.
func NewTestablePort() *TestablePort {
	p := &TestablePort{}
	p.readCond = sync.NewCond(&p.mu)
	return p
}

func (p *TestablePort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ReadError != nil {
		err := p.ReadError
		p.ReadError = nil
		return 0, err
	}

	for !p.closed && p.readBuffer.Len() == 0 {
		p.readCond.Wait()
		if p.ReadError != nil {
			err := p.ReadError
			p.ReadError = nil
			return 0, err
		}
	}
	if p.closed && p.readBuffer.Len() == 0 {
		return 0, io.EOF
	}
	return p.readBuffer.Read(buf)
}

func (p *TestablePort) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.WriteError != nil {
		err := p.WriteError
		p.WriteError = nil
		return 0, err
	}
	if p.closed {
		return 0, errors.New("serial port closed")
	}
	n, err := p.writeBuffer.Write(data)
	if p.ShortWrite && n > 0 {
		n--
	}
	return n, err
}

func (p *TestablePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.readCond.Broadcast()
	return p.CloseError
}

// AddReadData appends data to be returned by subsequent Read calls and wakes
// any blocked reader.
func (p *TestablePort) AddReadData(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readBuffer.Write(data)
	p.readCond.Broadcast()
}

// FailRead injects a read error and wakes any blocked reader.
func (p *TestablePort) FailRead(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ReadError = err
	p.readCond.Broadcast()
}

// WrittenData returns all data written to the port.
func (p *TestablePort) WrittenData() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.writeBuffer.Bytes()...)
}
