package ta

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Variance non-negativity (spec.md §8 property 7): the max(0, ...) guard
// must prevent a negative radicand regardless of input, including
// adversarial near-constant series that stress catastrophic cancellation.
func Test_BB_varianceNeverNegative(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	bb := NewBB(DefaultConfig)
	for i := 0; i < 3000; i++ {
		// a large constant offset plus a tiny perturbation is the classic
		// case that drives naive sum-of-squares variance negative.
		v := 1e9 + r.Float64()*1e-3
		mean, upper, lower := bb.Update(v, 20, 2)
		if math.IsNaN(mean) {
			continue
		}
		require.GreaterOrEqual(t, upper, mean)
		require.GreaterOrEqual(t, mean, lower)
		assert.False(t, math.IsNaN(upper))
		assert.False(t, math.IsNaN(lower))
	}
}

func Test_BB_matchesNaiveOverWindow(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	series := make([]float64, 1500)
	for i := range series {
		series[i] = r.Float64() * 10
	}

	const length = 15
	bb := NewBB(DefaultConfig)
	for i, v := range series {
		mean, _, _ := bb.Update(v, length, 2)
		if i+1 < length {
			assert.Truef(t, math.IsNaN(mean), "bar %d", i)
			continue
		}
		window := series[i+1-length : i+1]
		var sum float64
		for _, x := range window {
			sum += x
		}
		want := sum / float64(length)
		assert.InDeltaf(t, want, mean, 1e-6, "bar %d", i)
	}
}
