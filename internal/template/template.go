// Package template loads and validates YAML log templates: a pattern, an
// output format and an ordered set of typed fields.
package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"logsynth/internal/fields"
)

// Formats are the output formats a template may declare.
var Formats = []string{"json", "logfmt", "plain"}

const defaultFormat = "plain"

// Field is one named field with its raw configuration ("type" included).
type Field struct {
	Name   string
	Type   string
	Config fields.Config
}

// Template is a parsed, validated template.
type Template struct {
	Name    string
	Format  string
	Pattern string
	// IncludeMessage adds the rendered pattern as "message" in json output.
	IncludeMessage bool
	Fields         []Field
	// Dir is the directory relative data files resolve against. Empty for
	// presets and inline text.
	Dir string
}

// FieldNames returns the field names in declaration order.
func (t *Template) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

// ValidationError lists every problem found in a template.
type ValidationError struct {
	Message string
	Errors  []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Errors, "; ")
}

// refPattern matches $name and ${name} references.
var refPattern = regexp.MustCompile(`\$\{(\w+)\}|\$(\w+)`)

// References returns the distinct field names pattern refers to, in order
// of first appearance.
func References(pattern string) []string {
	var refs []string
	seen := make(map[string]bool)
	for _, m := range refPattern.FindAllStringSubmatch(pattern, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if !seen[name] {
			seen[name] = true
			refs = append(refs, name)
		}
	}
	return refs
}

// validate checks the format and that every pattern reference names a
// declared field. declared is nil when no field mapping was parsed.
func (t *Template) validate(declared map[string]bool) []string {
	var errs []string
	if !isFormat(t.Format) {
		errs = append(errs, fmt.Sprintf("invalid format %q, must be one of: %s", t.Format, strings.Join(Formats, ", ")))
	}

	if len(declared) == 0 {
		return errs
	}
	var undefined []string
	for _, ref := range References(t.Pattern) {
		if !declared[ref] {
			undefined = append(undefined, ref)
		}
	}
	if len(undefined) > 0 {
		sort.Strings(undefined)
		errs = append(errs, "pattern references undefined fields: "+strings.Join(undefined, ", "))
	}
	return errs
}

func isFormat(name string) bool {
	for _, f := range Formats {
		if f == name {
			return true
		}
	}
	return false
}
