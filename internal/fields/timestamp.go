package fields

import (
	"fmt"
	"math/rand"
	"time"
)

// Named timestamp layouts. Anything else is used as a Go layout.
var timestampLayouts = map[string]string{
	"iso8601": "2006-01-02T15:04:05.000Z07:00",
	"rfc3339": time.RFC3339,
	"clf":     "02/Jan/2006:15:04:05 -0700",
	"syslog":  time.Stamp,
}

// timestamp renders a clock that starts at a fixed instant and advances by
// step (plus up to ±jitter) on every call.
type timestamp struct {
	start   time.Time
	current time.Time
	step    time.Duration
	jitter  time.Duration
	format  string
	layout  string
	rng     *rand.Rand
}

func newTimestamp(cfg Config, env Env) (Generator, error) {
	format, err := cfg.String("format", "iso8601")
	if err != nil {
		return nil, err
	}
	if format == "" {
		return nil, fmt.Errorf("format must not be empty")
	}
	step, err := cfg.Duration("step", time.Second)
	if err != nil {
		return nil, err
	}
	jitter, err := cfg.Duration("jitter", 0)
	if err != nil {
		return nil, err
	}

	start := env.Now()
	if cfg.Has("start") {
		text, err := cfg.String("start", "")
		if err != nil {
			return nil, err
		}
		if start, err = time.Parse(time.RFC3339, text); err != nil {
			return nil, fmt.Errorf("start must be RFC3339: %w", err)
		}
	}

	ts := &timestamp{
		start:   start,
		current: start,
		step:    step,
		jitter:  jitter,
		format:  format,
		rng:     env.Rand,
	}
	if layout, ok := timestampLayouts[format]; ok {
		ts.layout = layout
	} else if format != "unix" && format != "unix_ms" {
		ts.layout = format
	}
	return ts, nil
}

func (t *timestamp) Generate() any {
	v := t.render(t.current)

	advance := t.step
	if t.jitter > 0 {
		advance += time.Duration(t.rng.Int63n(int64(2*t.jitter)+1)) - t.jitter
	}
	if advance > 0 {
		t.current = t.current.Add(advance)
	}
	return v
}

func (t *timestamp) render(at time.Time) any {
	switch t.format {
	case "unix":
		return at.Unix()
	case "unix_ms":
		return at.UnixMilli()
	}
	return at.Format(t.layout)
}

func (t *timestamp) Reset() { t.current = t.start }
