package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"logsynth/internal/core"
)

// MinRate is the lowest rate whose cycle interval fits in a time.Duration.
const MinRate = float64(time.Second) / math.MaxInt64

// ValidateRate rejects rates that cannot drive a schedule: zero, negative,
// NaN, infinity and rates below MinRate.
func ValidateRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return fmt.Errorf("%w: rate must be > 0 lines/sec, got %v", core.ErrInvalidConfig, rate)
	}
	if rate < MinRate {
		return fmt.Errorf("%w: rate %v lines/sec is below the minimum of %v", core.ErrInvalidConfig, rate, MinRate)
	}
	return nil
}

// Pacer computes fixed-schedule deadlines for a constant rate.
//
// Deadline i is start + i/rate, always measured from the same start instant.
// A cycle that overruns does not shift later deadlines: the caller simply
// finds them already passed and proceeds without sleeping until it has
// caught up. Throughput therefore never exceeds rate.
type Pacer struct {
	clock core.Clock
	rate  float64
	start time.Time
}

// NewPacer creates a Pacer anchored at the clock's current time.
func NewPacer(clock core.Clock, rate float64) (*Pacer, error) {
	if err := ValidateRate(rate); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = core.RealClock{}
	}
	return &Pacer{clock: clock, rate: rate, start: clock.Now()}, nil
}

// Start returns the instant deadlines are measured from.
func (p *Pacer) Start() time.Time {
	return p.start
}

// Offset returns the delay of iteration i relative to the start instant.
// Offsets beyond the range of time.Duration saturate at its maximum.
func (p *Pacer) Offset(i int) time.Duration {
	ns := math.Round(float64(i) * float64(time.Second) / p.rate)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}

// Deadline returns the instant at which iteration i may begin.
func (p *Pacer) Deadline(i int) time.Time {
	return p.start.Add(p.Offset(i))
}

// Wait blocks until iteration i's deadline. It returns how far behind
// schedule the caller already was (zero when it had to sleep), or the
// context error if ctx is done first.
func (p *Pacer) Wait(ctx context.Context, i int) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	wait := p.Deadline(i).Sub(p.clock.Now())
	if wait <= 0 {
		return -wait, nil
	}
	return 0, p.clock.Sleep(ctx, wait)
}
