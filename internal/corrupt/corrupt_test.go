package corrupt

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logsynth/internal/core"
)

const sample = `192.168.1.10 - - [09/Mar/2024:14:05:07 +0000] "GET /api/users HTTP/1.1" 200 512`

func seed(n int64) *int64 { return &n }

var _ core.Mutator = (*Corruptor)(nil)

func TestNew_ZeroIsIdentity(t *testing.T) {
	c, err := New(0, nil)
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Equal(t, sample, c.Mutate(sample), "nil corruptor leaves lines alone")
	assert.Zero(t, c.Applied())
}

func TestNew_RejectsOutOfRange(t *testing.T) {
	for _, pct := range []float64{-1, 100.5} {
		_, err := New(pct, nil)
		assert.ErrorIs(t, err, core.ErrInvalidConfig, "%v", pct)
	}
}

func TestMutate_HundredPercentAlwaysChanges(t *testing.T) {
	c, err := New(100, seed(1))
	require.NoError(t, err)

	changed := 0
	for i := 0; i < 200; i++ {
		if c.Mutate(sample) != sample {
			changed++
		}
	}
	assert.Equal(t, 200, c.Applied())
	// A swap of two equal runes or a case flip over digits can be a no-op.
	assert.Greater(t, changed, 150)
}

func TestMutate_RateIsApproximate(t *testing.T) {
	c, err := New(25, seed(2))
	require.NoError(t, err)

	for i := 0; i < 4000; i++ {
		c.Mutate(sample)
	}
	assert.InDelta(t, 1000, c.Applied(), 150)
}

func TestMutate_SeededIsReproducible(t *testing.T) {
	run := func() []string {
		c, err := New(50, seed(7))
		require.NoError(t, err)
		out := make([]string, 50)
		for i := range out {
			out[i] = c.Mutate(sample)
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestMutations(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	line := []rune("alpha beta gamma")

	t.Run("truncate", func(t *testing.T) {
		out := string(truncate(append([]rune(nil), line...), rng))
		assert.True(t, strings.HasPrefix(string(line), out))
		assert.GreaterOrEqual(t, len(out), len(line)/2)
		assert.Less(t, len(out), len(line))
	})

	t.Run("duplicate", func(t *testing.T) {
		out := duplicateChar(append([]rune(nil), line...), rng)
		assert.Len(t, out, len(line)+1)
	})

	t.Run("swap", func(t *testing.T) {
		out := swapAdjacent([]rune("ab"), rng)
		assert.Equal(t, "ba", string(out))
	})

	t.Run("garbage", func(t *testing.T) {
		out := injectGarbage(append([]rune(nil), line...), rng)
		assert.Greater(t, len(out), len(line))
		assert.LessOrEqual(t, len(out), len(line)+4)
	})

	t.Run("drop_token", func(t *testing.T) {
		out := string(dropToken(append([]rune(nil), line...), rng))
		assert.Len(t, strings.Fields(out), 2)
	})

	t.Run("flip_case", func(t *testing.T) {
		out := string(flipCase([]rune("abc"), rng))
		assert.Equal(t, "abc", strings.ToLower(out))
		assert.NotEqual(t, "abc", out)
	})

	t.Run("short lines survive", func(t *testing.T) {
		for _, m := range Mutations {
			assert.NotPanics(t, func() { m.Apply(nil, rng) }, m.Name)
			assert.NotPanics(t, func() { m.Apply([]rune("x"), rng) }, m.Name)
		}
	})
}
