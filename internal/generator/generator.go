// Package generator turns a template into a stream of rendered log lines.
package generator

import (
	"fmt"
	"math/rand"
	"time"

	"logsynth/internal/fields"
	"logsynth/internal/format"
	"logsynth/internal/template"
)

// Options tunes a Generator.
type Options struct {
	// Format overrides the template's format when set.
	Format string
	// Seed makes every random draw reproducible. Nil seeds from the clock.
	Seed *int64
	// Now is the start time of timestamp fields. Defaults to time.Now.
	Now func() time.Time
}

// Generator renders one line per call. It is not safe for concurrent use;
// parallel streams each build their own.
type Generator struct {
	tmpl      *template.Template
	opts      Options
	formatter format.Formatter
	names     []string
	fields    []fields.Generator
	rngs      []*rand.Rand
	seeds     []int64
	values    []format.Value
}

// New builds the field generators and formatter for tmpl.
func New(tmpl *template.Template, opts Options) (*Generator, error) {
	name := opts.Format
	if name == "" {
		name = tmpl.Format
	}
	formatter, err := format.New(name, format.Options{IncludeMessage: tmpl.IncludeMessage})
	if err != nil {
		return nil, err
	}

	master := time.Now().UnixNano()
	if opts.Seed != nil {
		master = *opts.Seed
	}
	seeder := rand.New(rand.NewSource(master))

	g := &Generator{
		tmpl:      tmpl,
		opts:      opts,
		formatter: formatter,
		values:    make([]format.Value, len(tmpl.Fields)),
	}
	for i, f := range tmpl.Fields {
		seed := seeder.Int63()
		rng := rand.New(rand.NewSource(seed))
		gen, err := fields.New(f.Type, f.Config, fields.Env{
			Rand:    rng,
			BaseDir: tmpl.Dir,
			Now:     opts.Now,
		})
		if err != nil {
			return nil, fmt.Errorf("field '%s': %w", f.Name, err)
		}
		g.names = append(g.names, f.Name)
		g.fields = append(g.fields, gen)
		g.rngs = append(g.rngs, rng)
		g.seeds = append(g.seeds, seed)
		g.values[i].Name = f.Name
	}
	return g, nil
}

// Template returns the template the generator renders.
func (g *Generator) Template() *template.Template { return g.tmpl }

// Values draws one value per field, in field order. The returned slice is
// reused by the next call.
func (g *Generator) Values() []format.Value {
	for i, f := range g.fields {
		g.values[i].Value = f.Generate()
	}
	return g.values
}

// Generate renders the next line.
func (g *Generator) Generate() (string, error) {
	return g.formatter.Format(g.tmpl.Pattern, g.Values()), nil
}

// Preview renders one line from a fresh copy, leaving g untouched. With a
// seed it equals the first line a fresh generator would emit.
func (g *Generator) Preview() (string, error) {
	clone, err := New(g.tmpl, g.opts)
	if err != nil {
		return "", err
	}
	return clone.Generate()
}

// Reset rewinds every field and, when seeded, every random source, so the
// generator replays its output from the start.
func (g *Generator) Reset() {
	for i, f := range g.fields {
		if g.opts.Seed != nil {
			g.rngs[i].Seed(g.seeds[i])
		}
		f.Reset()
	}
}
