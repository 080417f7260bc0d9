package ratelimit

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"logsynth/internal/core"
)

var durationUnits = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
}

// ParseDuration parses compact durations such as "30s", "5m", "1.5h" or a
// bare number of seconds ("90"). The result is always finite and
// non-negative.
func ParseDuration(s string) (time.Duration, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return 0, fmt.Errorf("%w: empty duration", core.ErrInvalidConfig)
	}

	unit := time.Second
	if u, ok := durationUnits[text[len(text)-1]]; ok {
		unit = u
		text = text[:len(text)-1]
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid duration %q", core.ErrInvalidConfig, s)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, fmt.Errorf("%w: duration must be finite and non-negative, got %q", core.ErrInvalidConfig, s)
	}

	d := value * float64(unit)
	if d > math.MaxInt64 {
		return 0, fmt.Errorf("%w: duration %q out of range", core.ErrInvalidConfig, s)
	}
	return time.Duration(d), nil
}
