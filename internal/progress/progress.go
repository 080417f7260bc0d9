// Package progress prints a live one-line status while streams run.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	director "github.com/relistan/go-director"

	"logsynth/internal/collector"
)

// Source provides the counters to report. *collector.Collector satisfies it.
type Source interface {
	Snapshot() collector.Stats
}

type Progress struct {
	source  Source
	looper  director.Looper
	enabled bool
	output  io.Writer

	mu       sync.Mutex
	started  chan struct{}
	finished chan struct{}
	running  bool
	stopped  bool
}

// NewProgress reports source once per second to stderr. A disabled Progress
// accepts every call and prints nothing.
func NewProgress(source Source, enabled bool) *Progress {
	return &Progress{
		source:  source,
		looper:  director.NewImmediateTimedLooper(director.FOREVER, time.Second, make(chan error, 1)),
		enabled: enabled,
		output:  os.Stderr,
	}
}

func (p *Progress) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = w
}

// Start begins periodic reporting on its own goroutine.
func (p *Progress) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled || p.running || p.stopped {
		return
	}
	p.running = true
	p.started = make(chan struct{})
	p.finished = make(chan struct{})

	var once sync.Once
	go func() {
		defer close(p.finished)
		p.looper.Loop(func() error {
			once.Do(func() { close(p.started) })
			p.tick()
			return nil
		})
	}()
}

func (p *Progress) tick() {
	stats := p.source.Snapshot()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	fmt.Fprint(p.output, "\r\033[K"+Line(stats))
}

// Line renders stats as "[mm:ss] Lines: n | Rate: x/s".
func Line(stats collector.Stats) string {
	elapsed := stats.Elapsed.Round(time.Second)
	mins := int(elapsed.Minutes())
	secs := int(elapsed.Seconds()) % 60
	return fmt.Sprintf("[%02d:%02d] Lines: %d | Rate: %.1f/s", mins, secs, stats.Lines, stats.LinesPerSec())
}

// Stop ends reporting and clears the status line. Safe to call more than
// once, or without Start.
func (p *Progress) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	running := p.running
	p.mu.Unlock()

	if !running {
		return
	}

	// The looper only accepts Quit once its loop is running.
	select {
	case <-p.started:
	case <-p.finished:
	}
	select {
	case <-p.finished:
	default:
		p.looper.Quit()
	}

	p.mu.Lock()
	fmt.Fprint(p.output, "\r\033[K")
	p.mu.Unlock()
}

// Printf prints a message on its own line, clearing the status line first.
func (p *Progress) Printf(format string, args ...any) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.output, "\r\033[K"+format+"\n", args...)
}
