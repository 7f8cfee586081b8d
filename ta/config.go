// Package ta implements the streaming technical-analysis indicator library
// (spec.md C6, §4.6) — the hardest subsystem in the repo. Every indicator
// here is a small stateful struct with an Update method, grounded in style
// on tunascript/syntax/value.go's struct-with-private-fields-and-method-API
// shape; there is no teacher analog for the algorithms themselves, which
// follow spec.md §4.6's numbered steps directly.
package ta

// Config holds the numerical-stability thresholds design note 9 calls out
// as "should be configurable": healing intervals and history memory caps.
// Populated from config.Config (BurntSushi/toml) at startup and threaded
// into every indicator constructor.
type Config struct {
	// HealIntervalSum is how many incremental updates a sum-based
	// aggregate (SMA, WMA, VWMA) tolerates before a full recompute.
	HealIntervalSum int
	// HealIntervalVariance is the same, but for the more sensitive
	// variance/Bollinger-band aggregate.
	HealIntervalVariance int
	// HistoryCap is the maximum number of trailing samples a rolling
	// history buffer retains before trimming.
	HistoryCap int
	// HistoryTrimMargin is how far past the current window length a
	// trimmed history buffer keeps, so a subsequent length increase
	// doesn't immediately force a cold recompute.
	HistoryTrimMargin int
}

// DefaultConfig matches the literal thresholds spec.md §4.6 specifies.
var DefaultConfig = Config{
	HealIntervalSum:      200,
	HealIntervalVariance: 50,
	HistoryCap:           5000,
	HistoryTrimMargin:    500,
}

// trimHistory enforces spec.md §4.6.1 step 5 (and its analogs elsewhere):
// once history exceeds cap samples, trim to the trailing length+margin.
func trimHistory(h []float64, length, cap, margin int) []float64 {
	if len(h) <= cap {
		return h
	}
	keep := length + margin
	if keep > len(h) {
		keep = len(h)
	}
	if keep < 1 {
		keep = 1
	}
	trimmed := make([]float64, keep)
	copy(trimmed, h[len(h)-keep:])
	return trimmed
}
