package ta

import "math"

// WMA is the weighted moving average of spec.md §4.6.3: weights 1..length
// (oldest to newest), normalized by length*(length+1)/2. The O(1)
// recurrence is only valid when the window is already full and the length
// hasn't changed since the previous update; otherwise a full O(N) recompute
// is required, because the recurrence's notion of "the value leaving the
// window" is undefined during warm-up or right after a length change.
type WMA struct {
	cfg                Config
	history            []float64
	sum, numerator     float64
	prevLength         int
	healCounter        int
}

func NewWMA(cfg Config) *WMA {
	return &WMA{cfg: cfg}
}

func (w *WMA) Update(source float64, length int) float64 {
	hadFullWindow := length == w.prevLength && len(w.history) > length
	w.history = append(w.history, source)

	if hadFullWindow {
		exiting := w.history[len(w.history)-1-length]
		w.numerator = w.numerator + float64(length)*source - w.sum
		w.sum = w.sum + source - exiting
		w.healCounter++
		if w.healCounter >= w.cfg.HealIntervalSum {
			w.recompute(length)
			w.healCounter = 0
		}
	} else {
		w.recompute(length)
		w.healCounter = 0
	}
	w.prevLength = length

	w.history = trimHistory(w.history, length, w.cfg.HistoryCap, w.cfg.HistoryTrimMargin)

	if length <= 0 || len(w.history) < length {
		return math.NaN()
	}
	normalizer := float64(length) * float64(length+1) / 2
	return w.numerator / normalizer
}

func (w *WMA) recompute(length int) {
	if length <= 0 {
		w.sum, w.numerator = 0, 0
		return
	}
	start := len(w.history) - length
	if start < 0 {
		start = 0
	}
	window := w.history[start:]
	var sum, num float64
	for i, v := range window {
		weight := float64(i + 1) // oldest in window = 1, newest = length
		sum += v
		num += weight * v
	}
	w.sum, w.numerator = sum, num
}
