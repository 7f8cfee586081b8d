package ta

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_VWMA_equalsRatioOfTwoSMAs(t *testing.T) {
	sources := []float64{10, 11, 12, 13, 14, 15}
	volumes := []float64{100, 110, 90, 120, 80, 130}
	const length = 3

	vwma := NewVWMA(DefaultConfig)
	pv, vv := NewSMA(DefaultConfig), NewSMA(DefaultConfig)
	for i := range sources {
		got := vwma.Update(sources[i], volumes[i], length)
		wantPV := pv.Update(sources[i]*volumes[i], length)
		wantVV := vv.Update(volumes[i], length)
		if math.IsNaN(wantPV) || wantVV == 0 {
			assert.Truef(t, math.IsNaN(got), "bar %d", i)
			continue
		}
		assert.InDeltaf(t, wantPV/wantVV, got, 1e-9, "bar %d", i)
	}
}

func Test_SWMA_fixedFourTapWindowIgnoresLength(t *testing.T) {
	swma := NewSWMA()
	series := []float64{1, 2, 3, 4, 5}
	var last float64
	for i, v := range series {
		got := swma.Update(v)
		if i < 3 {
			assert.Truef(t, math.IsNaN(got), "bar %d", i)
			continue
		}
		last = got
	}
	// last window is (2,3,4,5): (2*1+3*2+4*2+5*1)/6
	assert.InDelta(t, (2.0+6.0+8.0+5.0)/6.0, last, 1e-9)
}

func Test_RSI_zeroAverageLossIsOneHundred(t *testing.T) {
	rsi := NewRSI()
	rsi.Update(10, 3)
	for i := 0; i < 10; i++ {
		got := rsi.Update(11+float64(i), 3) // strictly increasing, no losses
		assert.InDelta(t, 100, got, 1e-9)
	}
}

func Test_RSI_flatSeriesIsMidpoint(t *testing.T) {
	rsi := NewRSI()
	rsi.Update(10, 3)
	var got float64
	for i := 0; i < 20; i++ {
		got = rsi.Update(10, 3) // no change at all: gain == loss == 0
	}
	assert.InDelta(t, 100, got, 1e-9, "zero avg loss short-circuits to 100 even with zero gain")
}

func Test_MACD_histogramIsMACDLineMinusSignalLine(t *testing.T) {
	macd := NewMACD()
	series := []float64{10, 11, 9, 12, 14, 13, 15, 16, 14, 18}
	for _, v := range series {
		line, signal, hist := macd.Update(v, 3, 6, 4)
		assert.InDeltaf(t, line-signal, hist, 1e-9, "histogram must equal line-signal")
	}
}

func Test_MOM_isDifferenceFromLengthBarsAgo(t *testing.T) {
	mom := NewMOM(DefaultConfig)
	series := []float64{10, 12, 15, 11, 9, 20}
	const length = 2
	for i, v := range series {
		got := mom.Update(v, length)
		if i < length {
			assert.Truef(t, math.IsNaN(got), "bar %d", i)
			continue
		}
		assert.InDeltaf(t, v-series[i-length], got, 1e-9, "bar %d", i)
	}
}

func Test_CCI_zeroDeviationIsZero(t *testing.T) {
	cci := NewCCI(DefaultConfig)
	var got float64
	for i := 0; i < 10; i++ {
		got = cci.Update(5, 3) // flat series: mean abs deviation is 0
	}
	assert.InDelta(t, 0, got, 1e-9)
}

func Test_Stoch_flatHighLowIsZero(t *testing.T) {
	stoch := NewStoch(DefaultConfig)
	var got float64
	for i := 0; i < 10; i++ {
		got = stoch.Update(5, 5, 5, 3) // high == low over the whole window
	}
	assert.InDelta(t, 0, got, 1e-9)
}

func Test_Stoch_matchesIndependentHighLowExtremes(t *testing.T) {
	sources := []float64{9, 11, 14, 10, 8}
	highs := []float64{10, 12, 15, 11, 9}
	lows := []float64{8, 9, 10, 8, 7}
	const length = 3

	stoch := NewStoch(DefaultConfig)
	hh, ll := NewExtreme(DefaultConfig, true), NewExtreme(DefaultConfig, false)
	for i := range sources {
		got := stoch.Update(sources[i], highs[i], lows[i], length)
		wantHH := hh.Update(highs[i], length)
		wantLL := ll.Update(lows[i], length)
		if math.IsNaN(wantHH) || math.IsNaN(wantLL) {
			assert.Truef(t, math.IsNaN(got), "bar %d", i)
			continue
		}
		var want float64
		if wantHH == wantLL {
			want = 0
		} else {
			want = 100 * (sources[i] - wantLL) / (wantHH - wantLL)
		}
		assert.InDeltaf(t, want, got, 1e-9, "bar %d", i)
	}
}
