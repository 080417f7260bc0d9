package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"logsynth/internal/core"
	"logsynth/internal/runner"
)

// ErrAlreadyStarted is returned when a Stream is started a second time.
var ErrAlreadyStarted = errors.New("stream already started")

// State is the lifecycle position of a Stream.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Source is one named line generator to run as a stream. Generator state
// must not be shared with any other Source.
type Source struct {
	Name      string
	Generator core.Generator
	Mutator   core.Mutator
}

// StreamResult is the outcome of one stream after it has joined.
type StreamResult struct {
	Name    string
	Emitted int
	Err     error
	State   State
}

// Stream runs one paced loop on its own goroutine against a shared sink.
//
// A Stream runs at most once: Idle → Running → Completed | Failed. Emitted
// and Err may only be read after Wait has returned.
type Stream struct {
	name   string
	rate   float64
	runner *runner.Runner
	logger *log.Entry

	state   atomic.Int32
	done    chan struct{}
	emitted int
	err     error
}

// NewStream creates an idle stream. The sink is shared, never closed by the
// stream.
func NewStream(src Source, sink core.Sink, perSecond float64, clock core.Clock) *Stream {
	logger := log.WithField("stream", src.Name)
	return &Stream{
		name: src.Name,
		rate: perSecond,
		runner: runner.NewRunner(src.Generator, sink, runner.Config{
			Clock:   clock,
			Mutator: src.Mutator,
			Logger:  logger,
		}),
		logger: logger,
		done:   make(chan struct{}),
	}
}

func (s *Stream) Name() string { return s.name }

func (s *Stream) State() State { return State(s.state.Load()) }

// StartCount runs count cycles in the background.
func (s *Stream) StartCount(ctx context.Context, count int) error {
	return s.start(ctx, func(ctx context.Context) (int, error) {
		return s.runner.RunCount(ctx, s.rate, count)
	})
}

// StartDuration runs cycles for d in the background.
func (s *Stream) StartDuration(ctx context.Context, d time.Duration) error {
	return s.start(ctx, func(ctx context.Context) (int, error) {
		return s.runner.RunDuration(ctx, s.rate, d)
	})
}

func (s *Stream) start(ctx context.Context, run func(context.Context) (int, error)) error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return fmt.Errorf("%s: %w", s.name, ErrAlreadyStarted)
	}

	s.logger.WithField("rate", s.rate).Debug("stream started")
	go func() {
		defer close(s.done)
		defer s.recoverPanic()

		emitted, err := run(ctx)
		s.finish(emitted, err)
	}()
	return nil
}

// recoverPanic turns a panic in a capability into this stream's failure so
// sibling streams keep running.
func (s *Stream) recoverPanic() {
	if r := recover(); r != nil {
		s.finish(s.runner.Emitted(), fmt.Errorf("panic: %v", r))
	}
}

func (s *Stream) finish(emitted int, err error) {
	s.emitted = emitted
	s.err = err

	fields := log.Fields{"emitted": emitted}
	if err != nil {
		s.state.Store(int32(StateFailed))
		s.logger.WithFields(fields).WithError(err).Warn("stream failed")
		return
	}
	s.state.Store(int32(StateCompleted))
	s.logger.WithFields(fields).Debug("stream completed")
}

// Wait blocks until the stream reaches a terminal state. Waiting on a stream
// that was never started returns immediately.
func (s *Stream) Wait() {
	if s.State() == StateIdle {
		return
	}
	<-s.done
}

// Emitted returns the number of lines written. Only valid after Wait.
func (s *Stream) Emitted() int { return s.emitted }

// Err returns the terminal error, if any. Only valid after Wait.
func (s *Stream) Err() error { return s.err }

// Result snapshots the stream outcome. Only valid after Wait.
func (s *Stream) Result() StreamResult {
	return StreamResult{Name: s.name, Emitted: s.emitted, Err: s.err, State: s.State()}
}
