package template

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"logsynth/internal/fields"
)

// Parse decodes and validates a template from YAML text. All problems are
// reported together in a *ValidationError.
func Parse(raw []byte) (*Template, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, &ValidationError{Message: "invalid YAML", Errors: []string{err.Error()}}
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, &ValidationError{Message: "template must be a YAML mapping"}
	}
	root := doc.Content[0]

	t := &Template{Format: defaultFormat}
	var errs []string
	seen := map[string]bool{}
	var fieldsNode *yaml.Node

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i].Value, root.Content[i+1]
		seen[key] = true
		switch key {
		case "name":
			t.Name = val.Value
		case "format":
			t.Format = val.Value
		case "pattern":
			t.Pattern = val.Value
		case "include_message":
			if err := val.Decode(&t.IncludeMessage); err != nil {
				errs = append(errs, "'include_message' must be a boolean")
			}
		case "fields":
			fieldsNode = val
		}
	}

	for _, req := range []string{"name", "pattern", "fields"} {
		if !seen[req] {
			errs = append(errs, fmt.Sprintf("missing required field: '%s'", req))
		}
	}

	var declared map[string]bool
	if fieldsNode != nil {
		var fieldErrs []string
		declared, fieldErrs = t.parseFields(fieldsNode)
		errs = append(errs, fieldErrs...)
	}
	errs = append(errs, t.validate(declared)...)

	if len(errs) > 0 {
		return nil, &ValidationError{
			Message: fmt.Sprintf("template validation failed with %d error(s)", len(errs)),
			Errors:  errs,
		}
	}
	return t, nil
}

// parseFields decodes the field mapping in document order. It returns every
// declared name, valid or not, plus the problems found.
func (t *Template) parseFields(node *yaml.Node) (map[string]bool, []string) {
	if node.Kind != yaml.MappingNode {
		return nil, []string{"'fields' must be a mapping"}
	}
	if len(node.Content) == 0 {
		return nil, []string{"'fields' cannot be empty"}
	}

	declared := make(map[string]bool, len(node.Content)/2)
	var errs []string
	for i := 0; i+1 < len(node.Content); i += 2 {
		name, val := node.Content[i].Value, node.Content[i+1]
		if declared[name] {
			errs = append(errs, fmt.Sprintf("field '%s': declared more than once", name))
			continue
		}
		declared[name] = true
		if val.Kind != yaml.MappingNode {
			errs = append(errs, fmt.Sprintf("field '%s': configuration must be a mapping", name))
			continue
		}
		var cfg fields.Config
		if err := val.Decode(&cfg); err != nil {
			errs = append(errs, fmt.Sprintf("field '%s': %v", name, err))
			continue
		}
		typ, ok := cfg["type"].(string)
		if !ok {
			errs = append(errs, fmt.Sprintf("field '%s': missing required 'type'", name))
			continue
		}
		if !fields.Known(typ) {
			errs = append(errs, fmt.Sprintf("field '%s': unknown type '%s', valid types: %s",
				name, typ, strings.Join(fields.Types(), ", ")))
			continue
		}
		t.Fields = append(t.Fields, Field{Name: name, Type: typ, Config: cfg})
	}
	return declared, errs
}

// LoadFile reads and parses a template file.
func LoadFile(path string) (*Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Dir = filepath.Dir(path)
	return t, nil
}

// ErrNotFound is returned by Load when source is neither a file, a preset
// nor inline YAML.
var ErrNotFound = errors.New("template not found")

// Load resolves source as an existing file path, then a preset name, then
// inline YAML text.
func Load(source string) (*Template, error) {
	if info, err := os.Stat(source); err == nil && !info.IsDir() {
		return LoadFile(source)
	}
	if raw, ok := presetSource(source); ok {
		return Parse(raw)
	}
	if strings.Contains(source, ":") && strings.Contains(source, "\n") {
		return Parse([]byte(source))
	}
	return nil, fmt.Errorf("%w: %q is not a preset name or existing file path", ErrNotFound, source)
}
