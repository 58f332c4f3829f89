package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/scanrig/internal/monitoring"
)

// State is the session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateAwaitingStart
	StateScanning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateAwaitingStart:
		return "awaiting_start"
	case StateScanning:
		return "scanning"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrStreamEnded is the session failure cause when the line source closes
// before a completion marker arrives.
var ErrStreamEnded = errors.New("line source closed before scan completed")

// LineSource is the transport collaborator. The session never opens or
// configures the transport itself; it only polls for lines, optionally writes
// a start command, and closes the source when the session ends.
type LineSource interface {
	// TryReadLine returns the next buffered line without blocking. ok is
	// false when no line is currently available.
	TryReadLine() (line string, ok bool)
	// Send writes raw bytes to the device.
	Send(p []byte) error
	// Closed reports whether the stream has ended. Err gives the cause.
	Closed() bool
	// Err returns the transport fault that ended the stream, or nil.
	Err() error
	Close() error
}

// Connector establishes the line stream for a session.
type Connector func(ctx context.Context) (LineSource, error)

// Observer receives recognized status events as they arrive.
type Observer func(StatusEvent)

// SessionConfig configures a capture session.
type SessionConfig struct {
	// Classifier defaults to DefaultClassifier when nil.
	Classifier *Classifier
	// StartCommand, when non-empty, is written to the device after
	// connecting (the firmware's scan trigger, e.g. "S").
	StartCommand []byte
	// Observer, when non-nil, is invoked for every status event.
	Observer Observer
	// MaxLinesPerTick bounds how many lines one Tick processes. Zero
	// means drain whatever is buffered.
	MaxLinesPerTick int
}

// Session drives one scan attempt: connect, trigger, classify, parse,
// convert, aggregate, finish. It is designed to be driven cooperatively —
// each Tick processes at most the currently-buffered lines and returns, so it
// composes with any scheduler.
//
// All methods must be called from a single goroutine. Aggregated results are
// read concurrently via Snapshot.
type Session struct {
	cfg   SessionConfig
	src   LineSource
	agg   *Aggregator
	state State
	err   error

	linesSkipped    *monitoring.Counter
	samplesAccepted *monitoring.Counter
	statusSeen      *monitoring.Counter
}

// NewSession creates an idle session.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Classifier == nil {
		cfg.Classifier = DefaultClassifier()
	}
	return &Session{
		cfg:             cfg,
		agg:             NewAggregator(),
		state:           StateIdle,
		linesSkipped:    monitoring.NewCounter("lines_skipped"),
		samplesAccepted: monitoring.NewCounter("samples_accepted"),
		statusSeen:      monitoring.NewCounter("status_lines"),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Err returns the failure cause after a transition to StateFailed.
func (s *Session) Err() error { return s.err }

// Snapshot returns an immutable copy of everything aggregated so far. Partial
// results are always valid: no failure or cancellation discards accepted
// samples.
func (s *Session) Snapshot() *Collection { return s.agg.Snapshot() }

// LinesSkipped returns how many non-empty lines were discarded as noise.
func (s *Session) LinesSkipped() int64 { return s.linesSkipped.Value() }

// SamplesAccepted returns how many data lines were aggregated.
func (s *Session) SamplesAccepted() int64 { return s.samplesAccepted.Value() }

// Connect establishes the line stream and arms the scan trigger:
// Idle → Connecting → AwaitingStart. A connection failure moves the session
// to Failed.
func (s *Session) Connect(ctx context.Context, connect Connector) error {
	if s.state != StateIdle {
		return fmt.Errorf("cannot connect from state %s", s.state)
	}
	s.state = StateConnecting

	src, err := connect(ctx)
	if err != nil {
		s.fail(fmt.Errorf("connect: %w", err))
		return s.err
	}
	s.src = src

	if len(s.cfg.StartCommand) > 0 {
		if err := src.Send(s.cfg.StartCommand); err != nil {
			s.fail(fmt.Errorf("send start command: %w", err))
			return s.err
		}
	}

	s.state = StateAwaitingStart
	return nil
}

// Tick processes the currently-buffered lines and returns. Absence of data is
// not an error, just nothing to do this tick. Tick never blocks on an empty
// input buffer.
func (s *Session) Tick() {
	if s.terminal() || s.src == nil {
		return
	}

	drained := false
	for processed := 0; s.cfg.MaxLinesPerTick == 0 || processed < s.cfg.MaxLinesPerTick; processed++ {
		line, ok := s.src.TryReadLine()
		if !ok {
			drained = true
			break
		}
		s.dispatch(line)
		if s.terminal() {
			return
		}
	}

	// A closed stream with no completion marker is a transport fault.
	// Buffered lines are drained before the fault is raised so that
	// nothing already received is lost.
	if drained && s.src.Closed() {
		if err := s.src.Err(); err != nil {
			s.fail(fmt.Errorf("read line source: %w", err))
		} else {
			s.fail(ErrStreamEnded)
		}
	}
}

// Run drives the session until it reaches a terminal state or the context is
// cancelled. Cancellation is cooperative: it completes the session with
// whatever has been aggregated so far.
func (s *Session) Run(ctx context.Context, pollInterval time.Duration) error {
	if pollInterval <= 0 {
		pollInterval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return nil
		case <-ticker.C:
			s.Tick()
			if s.terminal() {
				if s.state == StateFailed {
					return s.err
				}
				return nil
			}
		}
	}
}

// Stop cancels the session, transitioning any non-terminal state to
// Completed. Aggregated results remain available.
func (s *Session) Stop() {
	if s.terminal() {
		return
	}
	s.state = StateCompleted
	s.closeSource()
}

func (s *Session) dispatch(line string) {
	res := s.cfg.Classifier.Classify(line)
	switch res.Class {
	case ClassNoise:
		if line != "" {
			s.linesSkipped.Add(1)
			monitoring.Logf("scan: skipped line: %q", line)
		}

	case ClassStatus:
		s.statusSeen.Add(1)
		if s.cfg.Observer != nil {
			s.cfg.Observer(res.Status)
		}
		switch res.Status.Kind {
		case StatusScanStarted:
			if s.state == StateAwaitingStart {
				s.state = StateScanning
			}
		case StatusScanComplete:
			s.state = StateCompleted
			s.closeSource()
		case StatusDeviceError:
			s.fail(fmt.Errorf("device error: %s", res.Status.Message))
		}

	case ClassData:
		if s.state == StateAwaitingStart {
			s.state = StateScanning
		}
		sample, err := ParseSample(res.Schema, res.Fields)
		if err != nil {
			// Unreachable given the classifier contract; an arity
			// mismatch here is an internal consistency fault.
			s.fail(fmt.Errorf("parse sample: %w", err))
			return
		}
		s.agg.Accept(sample)
		s.samplesAccepted.Add(1)
	}
}

func (s *Session) fail(err error) {
	if s.terminal() {
		return
	}
	s.err = err
	s.state = StateFailed
	s.closeSource()
}

func (s *Session) terminal() bool {
	return s.state == StateCompleted || s.state == StateFailed
}

func (s *Session) closeSource() {
	if s.src == nil {
		return
	}
	if err := s.src.Close(); err != nil {
		monitoring.Logf("scan: close line source: %v", err)
	}
}
