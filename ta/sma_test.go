package ta

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func naiveSMA(series []float64, i, length int) float64 {
	if i+1 < length {
		return math.NaN()
	}
	var sum float64
	for _, v := range series[i+1-length : i+1] {
		sum += v
	}
	return sum / float64(length)
}

// SMA equivalence law (spec.md §8 property 4): streaming SMA matches the
// naive O(N) mean within 1e-6, for a fixed length.
func Test_SMA_matchesNaiveMean(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	series := make([]float64, 2000)
	for i := range series {
		series[i] = r.Float64() * 100
	}

	const length = 20
	sma := NewSMA(DefaultConfig)
	for i, v := range series {
		got := sma.Update(v, length)
		want := naiveSMA(series, i, length)
		if math.IsNaN(want) {
			assert.Truef(t, math.IsNaN(got), "bar %d: want NaN, got %v", i, got)
			continue
		}
		assert.InDeltaf(t, want, got, 1e-6, "bar %d", i)
	}
}

// Dynamic-length equivalence (spec.md §8 property 5), restricted to SMA: a
// monotone-increasing length schedule over several thousand bars, checked
// after a 100-bar warm-up.
func Test_SMA_dynamicLengthMatchesNaive(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	const n = 5200
	series := make([]float64, n)
	lengths := make([]int, n)
	for i := range series {
		series[i] = r.Float64()*50 - 25
		lengths[i] = 2 + (i % 44) // cycles through [2, 45]
	}

	sma := NewSMA(DefaultConfig)
	for i := 0; i < n; i++ {
		got := sma.Update(series[i], lengths[i])
		if i < 100 {
			continue
		}
		want := naiveSMA(series, i, lengths[i])
		if math.IsNaN(want) {
			assert.Truef(t, math.IsNaN(got), "bar %d: want NaN, got %v", i, got)
			continue
		}
		assert.InDeltaf(t, want, got, 1e-6, "bar %d (length %d)", i, lengths[i])
	}
}

func Test_SMA_degenerateWindowOfOne(t *testing.T) {
	sma := NewSMA(DefaultConfig)
	for i, v := range []float64{5, 7, 9} {
		got := sma.Update(v, 1)
		assert.InDeltaf(t, v, got, 1e-9, "bar %d", i)
	}
}

func Test_SMA_lengthLargerThanHistoryStaysNaN(t *testing.T) {
	sma := NewSMA(DefaultConfig)
	for i := 0; i < 5; i++ {
		got := sma.Update(float64(i), 100)
		assert.True(t, math.IsNaN(got))
	}
}
