package ta

import "math"

type dequeEntry struct {
	globalIdx int
	val       float64
}

// Extreme implements the rolling highest/lowest family of spec.md §4.6.5
// via a monotonic deque keyed by global bar index. When the window length
// changes, the deque is rebuilt from the trailing history rather than
// patched incrementally — shortening the window can require
// re-introducing values the deque had already evicted as dominated, which
// is only safe to do from scratch.
type Extreme struct {
	cfg        Config
	findMax    bool // true = highest, false = lowest
	history    []float64
	globalIdx  int // count of samples processed so far (0-based index of the next sample)
	deque      []dequeEntry
	prevLength int
}

func NewExtreme(cfg Config, findMax bool) *Extreme {
	return &Extreme{cfg: cfg, findMax: findMax}
}

// Update returns the extreme value over the trailing length window, or
// NaN during warm-up.
func (e *Extreme) Update(source float64, length int) float64 {
	v, _ := e.step(source, length)
	return v
}

// UpdateBars returns the non-positive offset of the extreme sample from
// the current bar (0 = the current bar holds the extreme).
func (e *Extreme) UpdateBars(source float64, length int) float64 {
	_, bars := e.step(source, length)
	return bars
}

func (e *Extreme) step(source float64, length int) (value, bars float64) {
	idx := e.globalIdx
	e.history = append(e.history, source)

	if length != e.prevLength {
		e.rebuild(length, idx)
		e.prevLength = length
	} else {
		e.push(idx, source)
	}

	for len(e.deque) > 0 && e.deque[0].globalIdx <= idx-length {
		e.deque = e.deque[1:]
	}

	e.history = trimHistory(e.history, length, e.cfg.HistoryCap, e.cfg.HistoryTrimMargin)
	e.globalIdx++

	if length <= 0 || idx+1 < length || len(e.deque) == 0 {
		return math.NaN(), math.NaN()
	}
	front := e.deque[0]
	return front.val, float64(front.globalIdx - idx)
}

// rebuild reconstructs the deque from the trailing `length` history
// entries (the current sample, at global index idx, is already the last
// element of e.history at this point).
func (e *Extreme) rebuild(length, idx int) {
	e.deque = e.deque[:0]
	start := len(e.history) - length
	if start < 0 {
		start = 0
	}
	for i := start; i < len(e.history); i++ {
		gIdx := idx - (len(e.history) - 1 - i)
		e.push(gIdx, e.history[i])
	}
}

func (e *Extreme) push(globalIdx int, val float64) {
	for len(e.deque) > 0 {
		back := e.deque[len(e.deque)-1]
		if (e.findMax && back.val <= val) || (!e.findMax && back.val >= val) {
			e.deque = e.deque[:len(e.deque)-1]
		} else {
			break
		}
	}
	e.deque = append(e.deque, dequeEntry{globalIdx: globalIdx, val: val})
}
