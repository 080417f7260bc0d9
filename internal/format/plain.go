package format

import (
	"strings"

	"logsynth/internal/fields"
)

// Plain substitutes field references in the pattern. Every ${name} is
// replaced first, then every $name not followed by a word character. The
// result is trimmed.
type Plain struct{}

func (Plain) Format(pattern string, values []Value) string {
	out := pattern
	rendered := make([]string, len(values))
	for i, v := range values {
		rendered[i] = fields.Stringify(v.Value)
		out = strings.ReplaceAll(out, "${"+v.Name+"}", rendered[i])
	}
	for i, v := range values {
		out = replaceBare(out, "$"+v.Name, rendered[i])
	}
	return strings.TrimSpace(out)
}

// replaceBare replaces ref wherever the next byte is not a word character.
func replaceBare(s, ref, with string) string {
	if !strings.Contains(s, ref) {
		return s
	}
	var b strings.Builder
	for {
		i := strings.Index(s, ref)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := i + len(ref)
		b.WriteString(s[:i])
		if end < len(s) && isWordByte(s[end]) {
			b.WriteString(ref)
		} else {
			b.WriteString(with)
		}
		s = s[end:]
	}
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
