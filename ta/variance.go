package ta

import "math"

// BB is the running-variance / Bollinger-bands indicator of spec.md
// §4.6.2: a sum and a sum-of-squares over the trailing window, healed
// every 50 updates (more often than SMA's 200, since variance is more
// sensitive to drift), with the max(0, …) guard against catastrophic
// cancellation producing a negative variance.
type BB struct {
	cfg         Config
	history     []float64
	sum, sumSq  float64
	prevLength  int
	healCounter int
}

func NewBB(cfg Config) *BB {
	return &BB{cfg: cfg}
}

// Update returns (mean, upperBand, lowerBand) for the trailing length
// window using multiplier mult, or (NaN, NaN, NaN) during warm-up.
func (v *BB) Update(source float64, length int, mult float64) (mean, upper, lower float64) {
	v.history = append(v.history, source)

	if length != v.prevLength {
		v.recompute(length)
		v.prevLength = length
		v.healCounter = 0
	} else {
		v.sum += source
		v.sumSq += source * source
		if len(v.history) > length {
			exiting := v.history[len(v.history)-1-length]
			v.sum -= exiting
			v.sumSq -= exiting * exiting
		}
		v.healCounter++
		if v.healCounter >= v.cfg.HealIntervalVariance {
			v.recompute(length)
			v.healCounter = 0
		}
	}

	v.history = trimHistory(v.history, length, v.cfg.HistoryCap, v.cfg.HistoryTrimMargin)

	if length <= 0 || len(v.history) < length {
		nan := math.NaN()
		return nan, nan, nan
	}

	mean = v.sum / float64(length)
	variance := v.sumSq/float64(length) - mean*mean
	if variance < 0 {
		variance = 0
	}
	stddev := math.Sqrt(variance)
	return mean, mean + mult*stddev, mean - mult*stddev
}

func (v *BB) recompute(length int) {
	if length <= 0 {
		v.sum, v.sumSq = 0, 0
		return
	}
	start := len(v.history) - length
	if start < 0 {
		start = 0
	}
	var sum, sumSq float64
	for _, x := range v.history[start:] {
		sum += x
		sumSq += x * x
	}
	v.sum, v.sumSq = sum, sumSq
}
