package runtime

import "github.com/google/uuid"

// Context is the market-plus-engine state spec.md §3 describes: the
// current bar's OHLCV fields, the persistent state table, the plot
// registry, and the strategy book. It is the single mutable resource of a
// run (§5) — owned by whoever calls Feed, passed by reference into every
// subsystem, never shared across goroutines.
type Context struct {
	RunID uuid.UUID

	Open, High, Low, Close, Volume float64
	Time                           int64 // milliseconds since epoch
	BarIndex                       int   // monotone, starts at 0

	State *StateTable
	Plots *PlotRegistry
	Book  *Book
}

// NewContext creates a fresh Context with an empty state table, plot
// registry, and strategy book, ready to be driven bar-by-bar by Engine.Feed.
func NewContext() *Context {
	return &Context{
		RunID: uuid.New(),
		State: NewStateTable(),
		Plots: NewPlotRegistry(),
		Book:  NewBook(),
	}
}

// Row is one OHLCV sample as described by spec.md §6's external row feed:
// (time_ms, open, high, low, close, volume). Decoding CSV or any other
// source into Rows is an external collaborator's job, not the engine's.
type Row struct {
	TimeMs                         int64
	Open, High, Low, Close, Volume float64
}

func (c *Context) applyRow(r Row) {
	c.Time = r.TimeMs
	c.Open = r.Open
	c.High = r.High
	c.Low = r.Low
	c.Close = r.Close
	c.Volume = r.Volume
}
