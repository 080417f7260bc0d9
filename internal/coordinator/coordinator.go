// Package coordinator runs several paced streams concurrently against one
// shared sink and aggregates their outcomes.
package coordinator

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"logsynth/internal/core"
	"logsynth/internal/ratelimit"
)

// Plan describes one parallel run: a total rate shared by all streams and
// exactly one stop condition.
type Plan struct {
	Rate     float64
	Count    *int
	Duration *time.Duration
	// Burst is rejected: burst schedules are single-stream only.
	Burst string
}

// CountPlan returns a plan emitting count lines in total.
func CountPlan(perSecond float64, count int) Plan {
	return Plan{Rate: perSecond, Count: &count}
}

// DurationPlan returns a plan running every stream for d.
func DurationPlan(perSecond float64, d time.Duration) Plan {
	return Plan{Rate: perSecond, Duration: &d}
}

func (p Plan) validate() error {
	if err := ratelimit.ValidateRate(p.Rate); err != nil {
		return err
	}
	if p.Burst != "" {
		return fmt.Errorf("%w: burst patterns are not supported with parallel streams", core.ErrInvalidConfig)
	}
	switch {
	case p.Count != nil && p.Duration != nil:
		return fmt.Errorf("%w: specify either a count or a duration, not both", core.ErrInvalidConfig)
	case p.Count == nil && p.Duration == nil:
		return fmt.Errorf("%w: either a count or a duration must be specified", core.ErrInvalidConfig)
	case p.Count != nil && *p.Count < 0:
		return fmt.Errorf("%w: count must be >= 0, got %d", core.ErrInvalidConfig, *p.Count)
	case p.Duration != nil && *p.Duration < 0:
		return fmt.Errorf("%w: duration must be >= 0, got %v", core.ErrInvalidConfig, *p.Duration)
	}
	return nil
}

// Result aggregates every stream of a run, in input order.
type Result struct {
	Streams        []StreamResult
	Total          int
	Elapsed        time.Duration
	PerStreamRate  float64
	PerStreamCount int // count mode only
	Dropped        int // count remainder not assigned to any stream
}

// Counts maps stream names to emitted lines. Streams sharing a name
// collapse into one key and the later stream wins.
func (r *Result) Counts() map[string]int {
	counts := make(map[string]int, len(r.Streams))
	for _, s := range r.Streams {
		counts[s.Name] = s.Emitted
	}
	return counts
}

// Failed returns the streams that ended in StateFailed.
func (r *Result) Failed() []StreamResult {
	var failed []StreamResult
	for _, s := range r.Streams {
		if s.State == StateFailed {
			failed = append(failed, s)
		}
	}
	return failed
}

// StreamError names a failed stream and its cause.
type StreamError struct {
	Name string
	Err  error
}

// StreamErrors is the aggregate error of a run in which at least one
// stream failed.
type StreamErrors []StreamError

func (e StreamErrors) Error() string {
	msgs := make([]string, len(e))
	for i, se := range e {
		msgs[i] = fmt.Sprintf("%s: %v", se.Name, se.Err)
	}
	return "stream errors: " + strings.Join(msgs, "; ")
}

func (e StreamErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, se := range e {
		errs[i] = se.Err
	}
	return errs
}

// Coordinator fans out one goroutine per source and joins them all.
type Coordinator struct {
	clock core.Clock
}

func NewCoordinator() *Coordinator {
	return &Coordinator{clock: core.RealClock{}}
}

// NewCoordinatorWithClock creates a Coordinator with a custom clock (for testing).
func NewCoordinatorWithClock(clock core.Clock) *Coordinator {
	return &Coordinator{clock: clock}
}

// Run splits plan.Rate (and plan.Count) evenly across sources, starts every
// stream, and waits for all of them. A failing stream never stops its
// siblings. When any stream fails the returned error is a StreamErrors, and
// the Result is still returned with every stream's partial count.
//
// Count mode uses integer division: count%len(sources) lines are dropped.
// Cancelling ctx stops each stream before its next cycle; that is not an
// error.
func (c *Coordinator) Run(ctx context.Context, sources []Source, sink core.Sink, plan Plan) (*Result, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no template sources provided", core.ErrInvalidConfig)
	}
	if err := plan.validate(); err != nil {
		return nil, err
	}

	n := len(sources)
	result := &Result{PerStreamRate: plan.Rate / float64(n)}
	if plan.Count != nil {
		result.PerStreamCount = *plan.Count / n
		result.Dropped = *plan.Count % n
		if result.Dropped > 0 {
			log.WithFields(log.Fields{"count": *plan.Count, "streams": n, "dropped": result.Dropped}).
				Warn("count does not divide evenly across streams, remainder dropped")
		}
	}

	streams := make([]*Stream, n)
	for i, src := range sources {
		if src.Name == "" {
			src.Name = fmt.Sprintf("stream-%d", i+1)
		}
		streams[i] = NewStream(src, sink, result.PerStreamRate, c.clock)
	}

	log.WithFields(log.Fields{"streams": n, "rate": plan.Rate, "per_stream_rate": result.PerStreamRate}).
		Info("starting parallel streams")

	start := c.clock.Now()
	for _, s := range streams {
		var err error
		if plan.Count != nil {
			err = s.StartCount(ctx, result.PerStreamCount)
		} else {
			err = s.StartDuration(ctx, *plan.Duration)
		}
		if err != nil {
			// Streams are freshly created; this only guards programming errors.
			return nil, err
		}
	}

	for _, s := range streams {
		s.Wait()
	}
	result.Elapsed = c.clock.Since(start)

	var errs StreamErrors
	for _, s := range streams {
		sr := s.Result()
		result.Streams = append(result.Streams, sr)
		result.Total += sr.Emitted
		if sr.Err != nil {
			errs = append(errs, StreamError{Name: sr.Name, Err: sr.Err})
		}
	}

	if len(errs) > 0 {
		return result, errs
	}
	return result, nil
}
