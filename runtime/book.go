package runtime

import "github.com/google/uuid"

// Direction is a trade's side.
type Direction int

const (
	Long Direction = iota
	Short
)

func (d Direction) String() string {
	if d == Short {
		return "short"
	}
	return "long"
}

// Position is the strategy book's open exposure: size is signed (positive
// for long, negative for short — entry()/close() below always normalize
// it through |size|, matching spec.md §4.7's PnL formulas).
type Position struct {
	Size         float64
	AveragePrice float64
	Direction    Direction
	Open         bool
}

// Trade is one closed position, per spec.md §3.
type Trade struct {
	ID         uuid.UUID
	EntryTime  int64
	EntryPrice float64
	ExitTime   int64
	ExitPrice  float64
	Quantity   float64
	PnL        float64
	Direction  Direction
}

// Book is the strategy state spec.md §4.7 describes: current position,
// cash balance, and the ordered trade ledger.
type Book struct {
	Position Position
	Cash     float64
	Trades   []Trade

	entryTime int64 // stamped when the current position was opened
}

func NewBook() *Book {
	return &Book{}
}

// Entry opens or extends a position in direction dir by quantity at the
// current bar's close price. If a position is currently open in the
// opposite direction, it is closed first (recording a trade) before the
// new position is established, per spec.md §4.7.
func (b *Book) Entry(ctx *Context, dir Direction, quantity float64) {
	if b.Position.Open && b.Position.Direction != dir {
		b.closeAt(ctx.Time, ctx.Close)
	}

	if !b.Position.Open {
		b.Position = Position{Size: quantity, AveragePrice: ctx.Close, Direction: dir, Open: true}
		b.entryTime = ctx.Time
		return
	}

	oldSize := b.Position.Size
	newSize := oldSize + quantity
	b.Position.AveragePrice = (oldSize*b.Position.AveragePrice + quantity*ctx.Close) / newSize
	b.Position.Size = newSize
}

// Close closes the current position (if any) at the current bar's close
// price, recording a trade and adding its PnL to cash.
func (b *Book) Close(ctx *Context) {
	if !b.Position.Open {
		return
	}
	b.closeAt(ctx.Time, ctx.Close)
}

// CloseAll is an alias for Close kept distinct to mirror spec.md §4.7's
// naming of both entry points; there is only ever one open position in
// this model so the two operations are equivalent.
func (b *Book) CloseAll(ctx *Context) {
	b.Close(ctx)
}

func (b *Book) closeAt(exitTime int64, exitPrice float64) {
	size := b.Position.Size
	entry := b.Position.AveragePrice

	var pnl float64
	if b.Position.Direction == Long {
		pnl = (exitPrice - entry) * absF(size)
	} else {
		pnl = (entry - exitPrice) * absF(size)
	}

	b.Trades = append(b.Trades, Trade{
		ID:         uuid.New(),
		EntryTime:  b.entryTime,
		EntryPrice: entry,
		ExitTime:   exitTime,
		ExitPrice:  exitPrice,
		Quantity:   absF(size),
		PnL:        pnl,
		Direction:  b.Position.Direction,
	})

	b.Cash += pnl
	b.Position = Position{}
}

func absF(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
