package format

import (
	"bytes"
	"encoding/json"

	"logsynth/internal/fields"
)

// JSON renders one compact object per line with keys in field order.
type JSON struct {
	IncludeMessage bool
}

func (j JSON) Format(pattern string, values []Value) string {
	if j.IncludeMessage {
		values = withMessage(values, Plain{}.Format(pattern, values))
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range values {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSON(&buf, v.Name)
		buf.WriteByte(':')
		writeJSON(&buf, v.Value)
	}
	buf.WriteByte('}')
	return buf.String()
}

// withMessage sets "message", replacing an existing field of that name in
// place.
func withMessage(values []Value, msg string) []Value {
	out := make([]Value, len(values), len(values)+1)
	copy(out, values)
	for i := range out {
		if out[i].Name == "message" {
			out[i].Value = msg
			return out
		}
	}
	return append(out, Value{Name: "message", Value: msg})
}

func writeJSON(buf *bytes.Buffer, v any) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		// Values JSON cannot represent are written as their string form.
		_ = enc.Encode(fields.Stringify(v))
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
}
