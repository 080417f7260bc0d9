// Package runner drives paced generate/write cycles under the three
// stopping policies: by count, by duration and by burst schedule.
package runner

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"logsynth/internal/core"
	"logsynth/internal/ratelimit"
)

// behindLogInterval throttles the "behind schedule" debug message.
const behindLogInterval = time.Second

// Config holds the optional collaborators of a Runner.
type Config struct {
	Clock   core.Clock
	Mutator core.Mutator // nil means lines are written unchanged
	Logger  *log.Entry
}

// Runner executes one stream of cycles. Each cycle generates a line,
// optionally mutates it and writes it to the sink; one successful cycle is
// one emitted line.
//
// A Runner is NOT safe for concurrent use; each stream must have its own.
type Runner struct {
	gen    core.Generator
	sink   core.Sink
	mutate core.Mutator
	clock  core.Clock
	logger *log.Entry
	behind rate.Sometimes

	emitted int
}

// NewRunner creates a Runner bound to one generator and a (possibly shared)
// sink.
func NewRunner(gen core.Generator, sink core.Sink, cfg Config) *Runner {
	clock := cfg.Clock
	if clock == nil {
		clock = core.RealClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Runner{
		gen:    gen,
		sink:   sink,
		mutate: cfg.Mutator,
		clock:  clock,
		logger: logger,
		behind: rate.Sometimes{Interval: behindLogInterval},
	}
}

// RunCount runs exactly count cycles at rate lines per second. It returns
// fewer than count only when ctx is cancelled (nil error) or a cycle fails.
func (r *Runner) RunCount(ctx context.Context, perSecond float64, count int) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("%w: count must be >= 0, got %d", core.ErrInvalidConfig, count)
	}
	pacer, err := ratelimit.NewPacer(r.clock, perSecond)
	if err != nil {
		return 0, err
	}

	r.logger.WithFields(log.Fields{"mode": "count", "rate": perSecond, "count": count}).Debug("run starting")

	for i := 0; i < count; i++ {
		if !r.wait(ctx, pacer, i) {
			return r.stopped(i, "cancelled"), nil
		}
		if err := r.cycle(); err != nil {
			return r.failed(i, err)
		}
	}
	return r.stopped(count, "complete"), nil
}

// RunDuration runs cycles at rate lines per second until d has elapsed. A
// cycle whose deadline is at or beyond d is never started.
func (r *Runner) RunDuration(ctx context.Context, perSecond float64, d time.Duration) (int, error) {
	if d < 0 {
		return 0, fmt.Errorf("%w: duration must be >= 0, got %v", core.ErrInvalidConfig, d)
	}
	pacer, err := ratelimit.NewPacer(r.clock, perSecond)
	if err != nil {
		return 0, err
	}

	r.logger.WithFields(log.Fields{"mode": "duration", "rate": perSecond, "duration": d}).Debug("run starting")

	for i := 0; ; i++ {
		if pacer.Offset(i) >= d {
			return r.stopped(i, "complete"), nil
		}
		if !r.wait(ctx, pacer, i) {
			return r.stopped(i, "cancelled"), nil
		}
		if r.clock.Since(pacer.Start()) >= d {
			return r.stopped(i, "complete"), nil
		}
		if err := r.cycle(); err != nil {
			return r.failed(i, err)
		}
	}
}

// RunBurst runs the schedule's segments in order, each as a by-duration run
// over its own span. The whole run is additionally capped by outer, measured
// from the call: whichever of schedule end and outer bound comes first stops
// the run. Emitted counts accumulate across segments.
func (r *Runner) RunBurst(ctx context.Context, schedule ratelimit.Schedule, outer time.Duration) (int, error) {
	if len(schedule) == 0 {
		return 0, fmt.Errorf("%w: burst schedule is empty", core.ErrInvalidConfig)
	}
	for _, seg := range schedule {
		if err := ratelimit.ValidateRate(seg.Rate); err != nil {
			return 0, err
		}
	}
	if outer < 0 {
		return 0, fmt.Errorf("%w: duration must be >= 0, got %v", core.ErrInvalidConfig, outer)
	}

	r.logger.WithFields(log.Fields{"mode": "burst", "schedule": schedule.String(), "duration": outer}).Debug("run starting")

	scheduler := ratelimit.NewScheduler(r.clock, schedule, outer)
	total := 0
	for {
		seg, span, ok := scheduler.Next()
		if !ok || ctx.Err() != nil {
			break
		}

		r.logger.WithFields(log.Fields{
			"segment": scheduler.Index(),
			"rate":    seg.Rate,
			"span":    span,
		}).Debug("burst segment")

		segStart := r.clock.Now()
		n, err := r.RunDuration(ctx, seg.Rate, span)
		total += n
		if err != nil {
			return total, err
		}

		// Keep segment boundaries aligned with their spans: the last cycle
		// of a segment starts up to one interval before the span ends.
		if err := r.clock.Sleep(ctx, span-r.clock.Since(segStart)); err != nil {
			break
		}
	}
	return total, nil
}

// cycle executes one generate→mutate→write unit.
func (r *Runner) cycle() error {
	line, err := r.gen.Generate()
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	if r.mutate != nil {
		line = r.mutate.Mutate(line)
	}
	if err := r.sink.Write(line); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	r.emitted++
	return nil
}

// Emitted returns the number of successful cycles over the Runner's
// lifetime, across all runs.
func (r *Runner) Emitted() int {
	return r.emitted
}

// wait blocks until iteration i's deadline. It reports false if the run
// was cancelled.
func (r *Runner) wait(ctx context.Context, pacer *ratelimit.Pacer, i int) bool {
	lag, err := pacer.Wait(ctx, i)
	if err != nil {
		return false
	}
	if lag > 0 {
		r.behind.Do(func() {
			r.logger.WithFields(log.Fields{"iteration": i, "lag": lag}).Debug("behind schedule, catching up")
		})
	}
	return true
}

func (r *Runner) stopped(emitted int, reason string) int {
	r.logger.WithFields(log.Fields{"emitted": emitted, "reason": reason}).Debug("run finished")
	return emitted
}

func (r *Runner) failed(emitted int, err error) (int, error) {
	r.logger.WithFields(log.Fields{"emitted": emitted, "error": err}).Debug("run failed")
	return emitted, err
}
