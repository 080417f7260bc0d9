package fields

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"logsynth/internal/ratelimit"
)

// Config is one field's YAML mapping, "type" included.
type Config map[string]any

// Has reports whether key is set.
func (c Config) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// String returns key as a string. Scalars are stringified.
func (c Config) String(key, def string) (string, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return def, nil
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case int, int64, float64, bool:
		return Stringify(s), nil
	}
	return "", fmt.Errorf("%q must be a string, got %T", key, v)
}

// Int returns key as an integer. Whole floats are accepted.
func (c Config) Int(key string, def int64) (int64, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("%q is out of range", key)
		}
		return int64(n), nil
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), nil
		}
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%q must be an integer, got %v", key, v)
}

// Float returns key as a float.
func (c Config) Float(key string, def float64) (float64, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		if !math.IsNaN(n) && !math.IsInf(n, 0) {
			return n, nil
		}
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%q must be a number, got %v", key, v)
}

// Duration returns key as a duration. Accepts Go durations ("250ms"),
// the CLI grammar ("1.5m") and bare numbers of seconds.
func (c Config) Duration(key string, def time.Duration) (time.Duration, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return def, nil
	}
	var text string
	switch d := v.(type) {
	case string:
		text = d
	case int, int64, float64:
		text = Stringify(d)
	default:
		return 0, fmt.Errorf("%q must be a duration, got %T", key, v)
	}
	if d, err := time.ParseDuration(text); err == nil && d >= 0 {
		return d, nil
	}
	d, err := ratelimit.ParseDuration(text)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", key, err)
	}
	return d, nil
}

// List returns key as a sequence.
func (c Config) List(key string) ([]any, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("%q is required", key)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%q must be a list, got %T", key, v)
	}
	return list, nil
}

// Stringify renders a field value the way it appears in a plain log line.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
