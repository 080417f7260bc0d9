// Package format renders one set of field values as a log line.
package format

import (
	"fmt"
	"sort"
	"strings"
)

// Value is one named field value. Formatters keep slice order.
type Value struct {
	Name  string
	Value any
}

// Formatter renders values into a single line without a trailing newline.
type Formatter interface {
	Format(pattern string, values []Value) string
}

// Options tunes the formatters that support it.
type Options struct {
	// IncludeMessage adds the rendered pattern as "message" (json only).
	IncludeMessage bool
}

var formatters = map[string]func(Options) Formatter{
	"plain":  func(Options) Formatter { return Plain{} },
	"json":   func(o Options) Formatter { return JSON{IncludeMessage: o.IncludeMessage} },
	"logfmt": func(Options) Formatter { return Logfmt{} },
}

// Names lists the known formats, sorted.
func Names() []string {
	names := make([]string, 0, len(formatters))
	for n := range formatters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New returns the formatter registered under name.
func New(name string, opts Options) (Formatter, error) {
	f, ok := formatters[name]
	if !ok {
		return nil, fmt.Errorf("unknown format %q, available: %s", name, strings.Join(Names(), ", "))
	}
	return f(opts), nil
}
