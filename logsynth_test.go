package logsynth_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logsynth"
)

const inline = `name: inline
format: logfmt
pattern: "$level $n"
fields:
  level:
    type: literal
    value: INFO
  n:
    type: sequence
    start: 1
`

func TestLines_Inline(t *testing.T) {
	lines, err := logsynth.Lines(inline, 3, logsynth.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"level=INFO n=1", "level=INFO n=2", "level=INFO n=3"}, lines)
}

func TestLines_SeededPresetIsStable(t *testing.T) {
	seed := int64(7)
	a, err := logsynth.Lines("app-json", 5, logsynth.Options{Seed: &seed})
	require.NoError(t, err)
	b, err := logsynth.Lines("app-json", 5, logsynth.Options{Seed: &seed})
	require.NoError(t, err)
	assert.Equal(t, len(a), len(b))
	for i := range a {
		// Timestamps follow the wall clock; everything after them is seeded.
		assert.Equal(t, a[i][strings.Index(a[i], `"level"`):], b[i][strings.Index(b[i], `"level"`):])
	}
}

func TestLines_Errors(t *testing.T) {
	_, err := logsynth.Lines("no-such-preset", 1, logsynth.Options{})
	assert.Error(t, err)

	_, err = logsynth.Lines(inline, -1, logsynth.Options{})
	assert.Error(t, err)

	_, err = logsynth.Lines(inline, 1, logsynth.Options{Corrupt: 101})
	assert.Error(t, err)
}

func TestStream(t *testing.T) {
	var buf bytes.Buffer
	n, err := logsynth.Stream(context.Background(), inline, &buf, 1000, 4, logsynth.Options{Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, `{"level":"INFO","n":4}`, strings.Split(strings.TrimSpace(buf.String()), "\n")[3])
}

func TestStream_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := logsynth.Stream(ctx, inline, &bytes.Buffer{}, 10, 100, logsynth.Options{})
	require.NoError(t, err)
	assert.Less(t, n, 100)
}

func ExampleLines() {
	lines, err := logsynth.Lines(inline, 2, logsynth.Options{})
	if err != nil {
		panic(err)
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	// Output:
	// level=INFO n=1
	// level=INFO n=2
}
