package ta

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_EMA_seedsOnFirstSample(t *testing.T) {
	ema := NewEMA()
	got := ema.Update(42, 10)
	assert.InDelta(t, 42, got, 1e-9)
}

func Test_EMA_matchesClosedFormRecurrence(t *testing.T) {
	series := []float64{10, 11, 12, 11, 13, 14, 12, 15}
	const length = 5
	alpha := 2.0 / float64(length+1)

	ema := NewEMA()
	var want float64
	for i, v := range series {
		got := ema.Update(v, length)
		if i == 0 {
			want = v
		} else {
			want = alpha*v + (1-alpha)*want
		}
		assert.InDeltaf(t, want, got, 1e-9, "bar %d", i)
	}
}

func Test_RMA_matchesClosedFormRecurrence(t *testing.T) {
	series := []float64{10, 11, 12, 11, 13, 14, 12, 15}
	const length = 4
	alpha := 1.0 / float64(length)

	rma := NewRMA()
	var want float64
	for i, v := range series {
		got := rma.Update(v, length)
		if i == 0 {
			want = v
		} else {
			want = alpha*v + (1-alpha)*want
		}
		assert.InDeltaf(t, want, got, 1e-9, "bar %d", i)
	}
}

func Test_RMA_nonPositiveLengthAfterSeedIsNaN(t *testing.T) {
	rma := NewRMA()
	rma.Update(10, 4)
	got := rma.Update(11, 0)
	assert.True(t, math.IsNaN(got))
}
