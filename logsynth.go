// Package logsynth generates synthetic log lines from YAML templates.
//
// A template source is a preset name ("nginx", "syslog", "app-json"), the
// path to a template file, or inline template YAML.
package logsynth

import (
	"context"
	"fmt"
	"io"

	"logsynth/internal/core"
	"logsynth/internal/corrupt"
	"logsynth/internal/generator"
	"logsynth/internal/runner"
	"logsynth/internal/sink"
	"logsynth/internal/template"
)

// Options tunes line generation.
type Options struct {
	// Format overrides the template's output format: plain, json or logfmt.
	Format string
	// Seed makes output reproducible. Nil seeds from the clock.
	Seed *int64
	// Corrupt is the percentage of lines to corrupt, 0 to 100.
	Corrupt float64
}

// Presets lists the built-in template names.
func Presets() []string {
	return template.Presets()
}

// Lines renders n lines from source as fast as possible.
func Lines(source string, n int, opts Options) ([]string, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: n must be >= 0, got %d", core.ErrInvalidConfig, n)
	}
	gen, mutator, err := build(source, opts)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		line, err := gen.Generate()
		if err != nil {
			return lines, err
		}
		if mutator != nil {
			line = mutator.Mutate(line)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Stream writes count newline-terminated lines from source to w, paced at
// perSecond lines per second. It returns the number of lines written;
// cancelling ctx stops early without an error.
func Stream(ctx context.Context, source string, w io.Writer, perSecond float64, count int, opts Options) (int, error) {
	gen, mutator, err := build(source, opts)
	if err != nil {
		return 0, err
	}
	out := sink.FromWriter("writer", w)
	defer out.Close()

	r := runner.NewRunner(gen, out, runner.Config{Mutator: mutator})
	return r.RunCount(ctx, perSecond, count)
}

func build(source string, opts Options) (*generator.Generator, core.Mutator, error) {
	tmpl, err := template.Load(source)
	if err != nil {
		return nil, nil, err
	}
	gen, err := generator.New(tmpl, generator.Options{Format: opts.Format, Seed: opts.Seed})
	if err != nil {
		return nil, nil, err
	}
	c, err := corrupt.New(opts.Corrupt, opts.Seed)
	if err != nil {
		return nil, nil, err
	}
	if c == nil {
		return gen, nil, nil
	}
	return gen, c, nil
}
