package runtime

import "math"

// PlotRegistry holds one dense, ordered series per plot title, each of
// length exactly the number of finalized bars (spec.md §3, §4.7). A new
// title is back-filled with the not-a-number sentinel from bar 0 — the
// open question spec.md §9 resolves in favor of "from bar 0" rather than
// "from first-observed bar minus one".
type PlotRegistry struct {
	order  []string
	series map[string][]float64
	colors map[string]int64
}

func NewPlotRegistry() *PlotRegistry {
	return &PlotRegistry{
		series: make(map[string][]float64),
		colors: make(map[string]int64),
	}
}

// Register sets the series value at the current bar index for title,
// creating and back-filling the series on first use, and overwriting a
// value already written for this bar rather than appending a second time.
func (p *PlotRegistry) Register(barIndex int, value float64, title string, color int64) {
	series, ok := p.series[title]
	if !ok {
		series = make([]float64, barIndex)
		for i := range series {
			series[i] = math.NaN()
		}
		p.order = append(p.order, title)
		p.colors[title] = color
	}

	if len(series) > barIndex {
		series[barIndex] = value
	} else {
		for len(series) < barIndex {
			series = append(series, math.NaN())
		}
		series = append(series, value)
	}
	p.series[title] = series
}

// FinalizeBar pads every series that wasn't written to on this bar with
// the not-a-number sentinel, so every registered series has length exactly
// barIndex+1 after finalization (spec.md §4.7, tested as the plot
// alignment law in §8). A series Register already wrote to this bar is
// already at length barIndex+1, so the pad loop below is a no-op for it.
func (p *PlotRegistry) FinalizeBar(barIndex int) {
	for _, title := range p.order {
		series := p.series[title]
		for len(series) <= barIndex {
			series = append(series, math.NaN())
		}
		p.series[title] = series
	}
}

// Titles returns plot titles in first-registration order.
func (p *PlotRegistry) Titles() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

func (p *PlotRegistry) Series(title string) []float64 {
	return p.series[title]
}

func (p *PlotRegistry) Color(title string) int64 {
	return p.colors[title]
}
