package template

import (
	"embed"
	"path"
	"sort"
	"strings"
)

//go:embed presets/*.yaml
var presetFS embed.FS

// Presets lists the built-in template names, sorted.
func Presets() []string {
	entries, err := presetFS.ReadDir("presets")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// PresetSource returns the YAML text of a built-in template.
func PresetSource(name string) (string, bool) {
	raw, ok := presetSource(name)
	return string(raw), ok
}

func presetSource(name string) ([]byte, bool) {
	if name == "" || strings.ContainsAny(name, "/\\") {
		return nil, false
	}
	raw, err := presetFS.ReadFile(path.Join("presets", name+".yaml"))
	if err != nil {
		return nil, false
	}
	return raw, true
}
