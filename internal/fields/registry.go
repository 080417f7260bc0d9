// Package fields implements the typed value generators a template's fields
// are built from. Every generator is stateful and owned by exactly one line
// generator; none of them is safe for concurrent use.
package fields

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"
)

// Generator produces one value per call.
type Generator interface {
	Generate() any
	// Reset rewinds the generator to its initial state (counters, cursors,
	// clocks). Random draws are not rewound.
	Reset()
}

// Env carries what factories need besides the field's own configuration.
type Env struct {
	// Rand is the field's private random source.
	Rand *rand.Rand
	// BaseDir resolves relative file references (the template's directory).
	BaseDir string
	// Now is the start time of timestamp fields without an explicit start.
	Now func() time.Time
}

func (e Env) withDefaults() Env {
	if e.Rand == nil {
		e.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	return e
}

// Factory builds a generator from a field configuration.
type Factory func(cfg Config, env Env) (Generator, error)

var registry = map[string]Factory{
	"literal":   newLiteral,
	"choice":    newChoice,
	"int":       newInt,
	"float":     newFloat,
	"sequence":  newSequence,
	"string":    newString,
	"uuid":      newUUID,
	"ip":        newIP,
	"timestamp": newTimestamp,
	"data":      newData,
}

// Register adds a field type. Registering an existing name replaces it.
func Register(typ string, f Factory) {
	registry[typ] = f
}

// Types lists the registered field types, sorted.
func Types() []string {
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Known reports whether typ is registered.
func Known(typ string) bool {
	_, ok := registry[typ]
	return ok
}

// New builds a generator of the given type.
func New(typ string, cfg Config, env Env) (Generator, error) {
	factory, ok := registry[typ]
	if !ok {
		return nil, fmt.Errorf("unknown field type %q, available: %s", typ, strings.Join(Types(), ", "))
	}
	return factory(cfg, env.withDefaults())
}
