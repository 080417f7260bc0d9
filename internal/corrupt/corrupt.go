// Package corrupt damages a configurable share of log lines so consumers
// can be tested against malformed input.
package corrupt

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"logsynth/internal/core"
)

// Mutation damages one line.
type Mutation struct {
	Name  string
	Apply func(line []rune, rng *rand.Rand) []rune
}

// Mutations are the available kinds of damage. One is picked uniformly per
// corrupted line.
var Mutations = []Mutation{
	{"truncate", truncate},
	{"duplicate", duplicateChar},
	{"swap", swapAdjacent},
	{"garbage", injectGarbage},
	{"drop_token", dropToken},
	{"flip_case", flipCase},
}

// Corruptor applies a random Mutation to roughly percent% of lines. It is
// not safe for concurrent use; give each stream its own.
type Corruptor struct {
	percent float64
	rng     *rand.Rand
	applied int
}

// New returns a Corruptor, or nil when percent is 0. A nil *Corruptor is a
// valid identity mutator.
func New(percent float64, seed *int64) (*Corruptor, error) {
	if math.IsNaN(percent) || percent < 0 || percent > 100 {
		return nil, fmt.Errorf("%w: corruption percentage must be between 0 and 100, got %v", core.ErrInvalidConfig, percent)
	}
	if percent == 0 {
		return nil, nil
	}
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	return &Corruptor{percent: percent, rng: rand.New(rand.NewSource(s))}, nil
}

// Mutate implements core.Mutator.
func (c *Corruptor) Mutate(line string) string {
	if c == nil || c.rng.Float64()*100 >= c.percent {
		return line
	}
	c.applied++
	m := Mutations[c.rng.Intn(len(Mutations))]
	return string(m.Apply([]rune(line), c.rng))
}

// Applied reports how many lines were picked for corruption.
func (c *Corruptor) Applied() int {
	if c == nil {
		return 0
	}
	return c.applied
}

func truncate(line []rune, rng *rand.Rand) []rune {
	if len(line) < 2 {
		return line
	}
	// Keep at least half of the line.
	keep := len(line)/2 + rng.Intn(len(line)-len(line)/2)
	return line[:keep]
}

func duplicateChar(line []rune, rng *rand.Rand) []rune {
	if len(line) == 0 {
		return line
	}
	i := rng.Intn(len(line))
	out := make([]rune, 0, len(line)+1)
	out = append(out, line[:i+1]...)
	return append(out, line[i:]...)
}

func swapAdjacent(line []rune, rng *rand.Rand) []rune {
	if len(line) < 2 {
		return line
	}
	i := rng.Intn(len(line) - 1)
	line[i], line[i+1] = line[i+1], line[i]
	return line
}

var garbage = []rune("\x00\x1b�#@!~^|{}\\")

func injectGarbage(line []rune, rng *rand.Rand) []rune {
	n := 1 + rng.Intn(4)
	junk := make([]rune, n)
	for i := range junk {
		junk[i] = garbage[rng.Intn(len(garbage))]
	}
	at := rng.Intn(len(line) + 1)
	out := make([]rune, 0, len(line)+n)
	out = append(out, line[:at]...)
	out = append(out, junk...)
	return append(out, line[at:]...)
}

func dropToken(line []rune, rng *rand.Rand) []rune {
	tokens := strings.Fields(string(line))
	if len(tokens) < 2 {
		return line
	}
	i := rng.Intn(len(tokens))
	tokens = append(tokens[:i], tokens[i+1:]...)
	return []rune(strings.Join(tokens, " "))
}

// flipCase inverts the case of up to 8 runes starting at a random offset.
func flipCase(line []rune, rng *rand.Rand) []rune {
	if len(line) == 0 {
		return line
	}
	start := rng.Intn(len(line))
	end := start + 1 + rng.Intn(8)
	if end > len(line) {
		end = len(line)
	}
	for i := start; i < end; i++ {
		r := line[i]
		switch {
		case unicode.IsUpper(r):
			line[i] = unicode.ToLower(r)
		case unicode.IsLower(r):
			line[i] = unicode.ToUpper(r)
		}
	}
	return line
}
