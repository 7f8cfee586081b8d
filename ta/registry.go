package ta

import (
	"strings"

	"golang.org/x/text/cases"
)

// Arity describes the positional-argument count a standard-library
// operation accepts, used by transpile's semantic pass to flag fixed-arity
// mismatches per spec.md §4.3/§7. Keyword arguments (e.g. plot's `color=`)
// are not counted here.
type Arity struct {
	Name    string
	MinArgs int
	MaxArgs int
}

// Stdlib enumerates every indicator and engine-builtin operation the
// language exposes, keyed by its canonical lower-case name.
var Stdlib = map[string]Arity{
	"sma":         {"sma", 2, 2},
	"ema":         {"ema", 2, 2},
	"rma":         {"rma", 2, 2},
	"wma":         {"wma", 2, 2},
	"bb":          {"bb", 3, 3},
	"vwma":        {"vwma", 3, 3},
	"swma":        {"swma", 1, 1},
	"rsi":         {"rsi", 2, 2},
	"macd":        {"macd", 4, 4},
	"mom":         {"mom", 2, 2},
	"cci":         {"cci", 2, 2},
	"stoch":       {"stoch", 4, 4},
	"highest":     {"highest", 2, 2},
	"lowest":      {"lowest", 2, 2},
	"highestbars": {"highestbars", 2, 2},
	"lowestbars":  {"lowestbars", 2, 2},
	"cross":       {"cross", 2, 2},
	"crossover":   {"crossover", 2, 2},
	"crossunder":  {"crossunder", 2, 2},
	"plot":        {"plot", 2, 3},
	"entry":       {"entry", 3, 3},
	"close":       {"close", 1, 1},
	"close_all":   {"close_all", 0, 0},
}

var folder = cases.Fold()

// Normalize resolves a (possibly dotted, possibly mixed-case) identifier
// to its canonical stdlib key: `ta.SMA`, `ta.sma`, and `TA.Sma` all
// resolve to "sma", using Unicode case folding rather than ASCII-only
// upper/lower-casing (the teacher's tunascript.go upper-cases flag and
// function names with strings.ToUpper; this generalizes that idea).
func Normalize(name string) string {
	folded := folder.String(name)
	if idx := strings.IndexByte(folded, '.'); idx >= 0 {
		ns, rest := folded[:idx], folded[idx+1:]
		if ns == "ta" {
			folded = rest
		}
	}
	return folded
}

// Lookup resolves name (namespaced or not, any case) to its Arity entry.
func Lookup(name string) (Arity, bool) {
	a, ok := Stdlib[Normalize(name)]
	return a, ok
}
