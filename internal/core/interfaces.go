// Package core defines the capabilities the emission engine consumes and the
// clock it paces against.
package core

import "errors"

// ErrInvalidConfig is wrapped by every configuration error detected before
// a run starts (bad rate, conflicting stop conditions, malformed burst...).
var ErrInvalidConfig = errors.New("invalid configuration")

// Generator produces one rendered line per call. Implementations may hold
// internal state (counters, RNG) that advances per call.
type Generator interface {
	Generate() (string, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func() (string, error)

func (f GeneratorFunc) Generate() (string, error) { return f() }

// Mutator optionally transforms a generated line before it is written.
type Mutator interface {
	Mutate(line string) string
}

// Sink is a line-oriented destination.
//
// Write must be safe for concurrent use: several streams share one sink and
// the engine adds no locking of its own. Close is called exactly once by the
// owner after every stream has finished.
type Sink interface {
	Write(line string) error
	Close() error
}
