// Package collector counts what reaches the sink and summarizes a run.
package collector

import (
	"sync/atomic"
	"time"

	"logsynth/internal/core"
)

// Collector wraps the shared sink and counts lines, bytes and write
// failures. Counters are atomic so progress reporting can read them while
// streams write.
type Collector struct {
	sink  core.Sink
	clock core.Clock
	start time.Time

	lines    atomic.Int64
	bytes    atomic.Int64
	failures atomic.Int64
}

// New wraps sink. The elapsed time is measured from this call.
func New(sink core.Sink, clock core.Clock) *Collector {
	if clock == nil {
		clock = core.RealClock{}
	}
	return &Collector{sink: sink, clock: clock, start: clock.Now()}
}

// Write forwards line and records the outcome. Thread-safe.
func (c *Collector) Write(line string) error {
	if err := c.sink.Write(line); err != nil {
		c.failures.Add(1)
		return err
	}
	c.lines.Add(1)
	c.bytes.Add(int64(len(line)) + 1)
	return nil
}

// Close closes the wrapped sink.
func (c *Collector) Close() error {
	return c.sink.Close()
}

// Stats is a point-in-time copy of the counters.
type Stats struct {
	Lines    int64
	Bytes    int64
	Failures int64
	Elapsed  time.Duration
}

// LinesPerSec is the average rate over Elapsed.
func (s Stats) LinesPerSec() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Lines) / s.Elapsed.Seconds()
}

// Snapshot reads the counters.
func (c *Collector) Snapshot() Stats {
	return Stats{
		Lines:    c.lines.Load(),
		Bytes:    c.bytes.Load(),
		Failures: c.failures.Load(),
		Elapsed:  c.clock.Since(c.start),
	}
}
