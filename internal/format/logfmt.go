package format

import (
	"strings"

	"logsynth/internal/fields"
)

// Logfmt renders key=value pairs separated by spaces. The pattern is
// ignored. Values containing a space, a quote or '=' are double quoted.
type Logfmt struct{}

func (Logfmt) Format(_ string, values []Value) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(v.Name)
		b.WriteByte('=')
		s := fields.Stringify(v.Value)
		if strings.ContainsAny(s, ` "=`) {
			s = `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
		}
		b.WriteString(s)
	}
	return b.String()
}
