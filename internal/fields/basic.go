package fields

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

type literal struct{ value any }

func newLiteral(cfg Config, _ Env) (Generator, error) {
	v, ok := cfg["value"]
	if !ok {
		return nil, errors.New(`"value" is required`)
	}
	return literal{value: v}, nil
}

func (l literal) Generate() any { return l.value }
func (literal) Reset()          {}

// choice picks one of values, optionally weighted.
type choice struct {
	values []any
	cum    []float64 // cumulative weights, nil when uniform
	rng    *rand.Rand
}

func newChoice(cfg Config, env Env) (Generator, error) {
	values, err := cfg.List("values")
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, errors.New(`"values" cannot be empty`)
	}
	c := &choice{values: values, rng: env.Rand}
	if !cfg.Has("weights") {
		return c, nil
	}

	weights, err := cfg.List("weights")
	if err != nil {
		return nil, err
	}
	if len(weights) != len(values) {
		return nil, fmt.Errorf(`"weights" has %d entries, "values" has %d`, len(weights), len(values))
	}
	total := 0.0
	c.cum = make([]float64, len(weights))
	for i, w := range weights {
		f, err := Config{"w": w}.Float("w", 0)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("weight %d must be a non-negative number, got %v", i, w)
		}
		total += f
		c.cum[i] = total
	}
	if total <= 0 {
		return nil, errors.New("weights must not all be zero")
	}
	return c, nil
}

func (c *choice) Generate() any {
	if c.cum == nil {
		return c.values[c.rng.Intn(len(c.values))]
	}
	x := c.rng.Float64() * c.cum[len(c.cum)-1]
	i := sort.Search(len(c.cum), func(i int) bool { return c.cum[i] > x })
	if i == len(c.cum) {
		i--
	}
	return c.values[i]
}

func (*choice) Reset() {}

// intRange draws uniformly from [min, max].
type intRange struct {
	min, max int64
	rng      *rand.Rand
}

func newInt(cfg Config, env Env) (Generator, error) {
	lo, err := cfg.Int("min", 0)
	if err != nil {
		return nil, err
	}
	hi, err := cfg.Int("max", 100)
	if err != nil {
		return nil, err
	}
	if hi < lo {
		return nil, fmt.Errorf("max (%d) is less than min (%d)", hi, lo)
	}
	return &intRange{min: lo, max: hi, rng: env.Rand}, nil
}

func (g *intRange) Generate() any {
	span := uint64(g.max - g.min)
	if span == math.MaxUint64 {
		return int64(g.rng.Uint64())
	}
	if span >= math.MaxInt64 {
		return g.min + int64(g.rng.Uint64()%(span+1))
	}
	return g.min + g.rng.Int63n(int64(span)+1)
}

func (*intRange) Reset() {}

// floatRange draws uniformly from [min, max) rounded to precision digits.
type floatRange struct {
	min, max float64
	scale    float64
	rng      *rand.Rand
}

func newFloat(cfg Config, env Env) (Generator, error) {
	lo, err := cfg.Float("min", 0)
	if err != nil {
		return nil, err
	}
	hi, err := cfg.Float("max", 1)
	if err != nil {
		return nil, err
	}
	if hi < lo {
		return nil, fmt.Errorf("max (%v) is less than min (%v)", hi, lo)
	}
	precision, err := cfg.Int("precision", 2)
	if err != nil {
		return nil, err
	}
	if precision < 0 || precision > 15 {
		return nil, fmt.Errorf("precision must be between 0 and 15, got %d", precision)
	}
	return &floatRange{min: lo, max: hi, scale: math.Pow10(int(precision)), rng: env.Rand}, nil
}

func (g *floatRange) Generate() any {
	v := g.min + g.rng.Float64()*(g.max-g.min)
	return math.Round(v*g.scale) / g.scale
}

func (*floatRange) Reset() {}

// sequence counts from start by step.
type sequence struct {
	start, step, next int64
}

func newSequence(cfg Config, _ Env) (Generator, error) {
	start, err := cfg.Int("start", 1)
	if err != nil {
		return nil, err
	}
	step, err := cfg.Int("step", 1)
	if err != nil {
		return nil, err
	}
	return &sequence{start: start, step: step, next: start}, nil
}

func (s *sequence) Generate() any {
	v := s.next
	s.next += s.step
	return v
}

func (s *sequence) Reset() { s.next = s.start }

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomString draws length alphanumeric characters.
type randomString struct {
	length int
	rng    *rand.Rand
}

func newString(cfg Config, env Env) (Generator, error) {
	n, err := cfg.Int("length", 8)
	if err != nil {
		return nil, err
	}
	if n <= 0 || n > 4096 {
		return nil, fmt.Errorf("length must be between 1 and 4096, got %d", n)
	}
	return &randomString{length: int(n), rng: env.Rand}, nil
}

func (g *randomString) Generate() any {
	b := make([]byte, g.length)
	for i := range b {
		b[i] = alphanumeric[g.rng.Intn(len(alphanumeric))]
	}
	return string(b)
}

func (*randomString) Reset() {}
