package sink

import (
	"context"

	"logsynth/internal/core"
	"logsynth/internal/ratelimit"
)

// Throttled caps the write rate of the sink it wraps. Writes block until the
// limiter admits them. Once ctx is cancelled writes pass straight through so
// in-flight cycles still complete.
type Throttled struct {
	core.Sink
	ctx     context.Context
	limiter *ratelimit.RateLimiter
}

// Throttle wraps s with a ceiling of perSecond writes per second. A
// non-positive rate returns s unchanged.
func Throttle(ctx context.Context, s core.Sink, perSecond float64) core.Sink {
	if perSecond <= 0 {
		return s
	}
	return &Throttled{Sink: s, ctx: ctx, limiter: ratelimit.NewRateLimiter(perSecond)}
}

func (t *Throttled) Write(line string) error {
	if err := t.limiter.Wait(t.ctx); err != nil && t.ctx.Err() == nil {
		return err
	}
	return t.Sink.Write(line)
}

// Limit returns the configured ceiling.
func (t *Throttled) Limit() float64 { return t.limiter.Limit() }
