package serialmux

import (
	"errors"
	"testing"
	"time"
)

// waitForLine polls TryReadLine until a line arrives or the timeout elapses.
func waitForLine(t *testing.T, ls *LineSource, timeout time.Duration) string {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if line, ok := ls.TryReadLine(); ok {
			return line
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for line")
	return ""
}

func waitForClosed(t *testing.T, ls *LineSource, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if ls.Closed() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for source to close")
}

func TestLineSourceDeliversLines(t *testing.T) {
	port := NewTestablePort()
	ls := NewLineSource(port)
	defer ls.Close()

	port.AddReadData([]byte("Scanner initialized\n80,90,0,50\n"))

	if got := waitForLine(t, ls, time.Second); got != "Scanner initialized" {
		t.Errorf("first line = %q", got)
	}
	if got := waitForLine(t, ls, time.Second); got != "80,90,0,50" {
		t.Errorf("second line = %q", got)
	}
}

func TestLineSourceTryReadLineDoesNotBlock(t *testing.T) {
	port := NewTestablePort()
	ls := NewLineSource(port)
	defer ls.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, ok := ls.TryReadLine(); ok {
			t.Error("TryReadLine returned a line from an empty buffer")
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("TryReadLine blocked on empty buffer")
	}
}

func TestLineSourcePartialLineNotDelivered(t *testing.T) {
	port := NewTestablePort()
	ls := NewLineSource(port)
	defer ls.Close()

	port.AddReadData([]byte("80,90,0"))
	time.Sleep(20 * time.Millisecond)
	if line, ok := ls.TryReadLine(); ok {
		t.Errorf("got incomplete line %q", line)
	}

	port.AddReadData([]byte(",50\n"))
	if got := waitForLine(t, ls, time.Second); got != "80,90,0,50" {
		t.Errorf("line = %q, want completed line", got)
	}
}

func TestLineSourceReadFault(t *testing.T) {
	port := NewTestablePort()
	ls := NewLineSource(port)
	defer ls.Close()

	readErr := errors.New("input/output error")
	port.FailRead(readErr)

	waitForClosed(t, ls, time.Second)
	if !errors.Is(ls.Err(), readErr) {
		t.Errorf("Err() = %v, want %v", ls.Err(), readErr)
	}
}

func TestLineSourceCleanEOF(t *testing.T) {
	port := NewTestablePort()
	ls := NewLineSource(port)

	port.AddReadData([]byte("last line\n"))
	if got := waitForLine(t, ls, time.Second); got != "last line" {
		t.Errorf("line = %q", got)
	}

	port.Close()
	waitForClosed(t, ls, time.Second)
	if err := ls.Err(); err != nil {
		t.Errorf("Err() after clean EOF = %v, want nil", err)
	}
}

func TestLineSourceDrainAfterClose(t *testing.T) {
	port := NewTestablePort()
	ls := NewLineSource(port)

	port.AddReadData([]byte("a\nb\n"))
	// Wait for both lines to be buffered before ending the stream.
	first := waitForLine(t, ls, time.Second)
	port.Close()
	waitForClosed(t, ls, time.Second)

	if first != "a" {
		t.Errorf("first = %q", first)
	}
	// The second line is still readable after the stream ended.
	if got := waitForLine(t, ls, time.Second); got != "b" {
		t.Errorf("second = %q", got)
	}
	if _, ok := ls.TryReadLine(); ok {
		t.Error("expected no more lines")
	}
}

func TestLineSourceSend(t *testing.T) {
	port := NewTestablePort()
	ls := NewLineSource(port)
	defer ls.Close()

	if err := ls.Send([]byte("S")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := string(port.WrittenData()); got != "S" {
		t.Errorf("written %q, want raw trigger byte with no newline", got)
	}
}

func TestLineSourceSendCommand(t *testing.T) {
	port := NewTestablePort()
	ls := NewLineSource(port)
	defer ls.Close()

	if err := ls.SendCommand("CAL"); err != nil {
		t.Fatalf("SendCommand: %v", err)
	}
	if err := ls.SendCommand("RST\n"); err != nil {
		t.Fatalf("SendCommand: %v", err)
	}
	if got := string(port.WrittenData()); got != "CAL\nRST\n" {
		t.Errorf("written %q, want %q", got, "CAL\nRST\n")
	}
}

func TestLineSourceSendErrors(t *testing.T) {
	port := NewTestablePort()
	ls := NewLineSource(port)
	defer ls.Close()

	writeErr := errors.New("write timeout")
	port.WriteError = writeErr
	if err := ls.Send([]byte("S")); !errors.Is(err, writeErr) {
		t.Errorf("Send = %v, want %v", err, writeErr)
	}

	port.ShortWrite = true
	if err := ls.Send([]byte("GO")); !errors.Is(err, ErrWriteFailed) {
		t.Errorf("short write = %v, want ErrWriteFailed", err)
	}
}

func TestLineSourceCloseIdempotent(t *testing.T) {
	port := NewTestablePort()
	ls := NewLineSource(port)

	if err := ls.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := ls.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestReplayPort(t *testing.T) {
	port := NewReplayPort([]string{"Scanner initialized", "80,0,0,0"}, 0)
	ls := NewLineSource(port)
	defer ls.Close()

	if got := waitForLine(t, ls, time.Second); got != "Scanner initialized" {
		t.Errorf("first = %q", got)
	}
	if got := waitForLine(t, ls, time.Second); got != "80,0,0,0" {
		t.Errorf("second = %q", got)
	}

	// Script exhausted: stream ends cleanly.
	waitForClosed(t, ls, time.Second)
	if err := ls.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}

	if _, err := port.Write([]byte("S")); err != nil {
		t.Errorf("Write before close: %v", err)
	}
	if got := string(port.WrittenData()); got != "S" {
		t.Errorf("WrittenData = %q", got)
	}
}
