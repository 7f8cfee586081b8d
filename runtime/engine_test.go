package runtime

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompileEngine(t *testing.T, src string) *Engine {
	t.Helper()
	eng, diags := Compile(src)
	require.False(t, diags.HasErrors(), "compile diagnostics: %s", diags.Error())
	require.NotNil(t, eng)
	return eng
}

func oneBar(t *testing.T, eng *Engine, close float64) *Context {
	t.Helper()
	ctx := NewContext()
	err := eng.Feed(ctx, Row{TimeMs: 0, Open: close, High: close, Low: close, Close: close, Volume: 1})
	require.NoError(t, err)
	return ctx
}

// S1: x = 1 + 2 * 3, read x.
func Test_Scenario_S1_arithmeticPrecedence(t *testing.T) {
	eng := mustCompileEngine(t, "x = 1 + 2 * 3\nplot(x, \"x\")\n")
	ctx := oneBar(t, eng, 0)
	assert.Equal(t, []float64{7}, ctx.Plots.Series("x"))
}

// S2: double(n) => n * 2, then y = double(10).
func Test_Scenario_S2_singleLineFunction(t *testing.T) {
	eng := mustCompileEngine(t, "double(n) => n * 2\ny = double(10)\nplot(y, \"y\")\n")
	ctx := oneBar(t, eng, 0)
	assert.Equal(t, []float64{20}, ctx.Plots.Series("y"))
}

// S3: [a, b] = pair() where pair() returns [1, 2].
func Test_Scenario_S3_destructureFromFunction(t *testing.T) {
	src := "pair() => [1, 2]\n[a, b] = pair()\nplot(a, \"a\")\nplot(b, \"b\")\n"
	eng := mustCompileEngine(t, src)
	ctx := oneBar(t, eng, 0)
	assert.Equal(t, []float64{1}, ctx.Plots.Series("a"))
	assert.Equal(t, []float64{2}, ctx.Plots.Series("b"))
}

// S4: 200 bars of constant close=100, plot(sma(close, 14), "s").
func Test_Scenario_S4_smaWarmupAndSteadyState(t *testing.T) {
	eng := mustCompileEngine(t, "plot(sma(close, 14), \"s\")\n")
	ctx := NewContext()
	for i := 0; i < 200; i++ {
		err := eng.Feed(ctx, Row{TimeMs: int64(i), Open: 100, High: 100, Low: 100, Close: 100, Volume: 1})
		require.NoError(t, err)
	}

	series := ctx.Plots.Series("s")
	require.Len(t, series, 200)
	for i := 0; i < 13; i++ {
		assert.Truef(t, math.IsNaN(series[i]), "bar %d should be NaN during warm-up", i)
	}
	for i := 13; i < 200; i++ {
		assert.InDeltaf(t, 100, series[i], 1e-9, "bar %d", i)
	}
}

// S5: close = 1, 2, ..., 50; plot(highest(close, 5), "h").
func Test_Scenario_S5_highestOverWindow(t *testing.T) {
	eng := mustCompileEngine(t, "plot(highest(close, 5), \"h\")\n")
	ctx := NewContext()
	for i := 0; i < 50; i++ {
		close := float64(i + 1)
		err := eng.Feed(ctx, Row{TimeMs: int64(i), Open: close, High: close, Low: close, Close: close, Volume: 1})
		require.NoError(t, err)
	}

	series := ctx.Plots.Series("h")
	require.Len(t, series, 50)
	for i := 0; i < 4; i++ {
		assert.Truef(t, math.IsNaN(series[i]), "bar %d should be NaN during warm-up", i)
	}
	for i := 4; i < 50; i++ {
		assert.InDeltaf(t, float64(i+1), series[i], 1e-9, "bar %d", i)
	}
}

// S6: if close > 100 <block> plot(1, "signal") <endblock>, close alternating 99/101.
func Test_Scenario_S6_conditionalPlotAlignment(t *testing.T) {
	eng := mustCompileEngine(t, "if close > 100\n    plot(1, \"signal\")\n")
	ctx := NewContext()
	for i := 0; i < 6; i++ {
		close := 99.0
		if i%2 == 1 {
			close = 101.0
		}
		err := eng.Feed(ctx, Row{TimeMs: int64(i), Open: close, High: close, Low: close, Close: close, Volume: 1})
		require.NoError(t, err)
	}

	series := ctx.Plots.Series("signal")
	require.Len(t, series, 6)
	for i := 0; i < 6; i++ {
		if i%2 == 0 {
			assert.Truef(t, math.IsNaN(series[i]), "bar %d should be NaN", i)
		} else {
			assert.Equalf(t, 1.0, series[i], "bar %d should be 1", i)
		}
	}
}

func Test_Engine_strategyEntryAndClose(t *testing.T) {
	src := "if close > 100\n    entry(\"t\", \"long\", 2)\nif close < 100\n    close_all()\n"
	eng := mustCompileEngine(t, src)
	ctx := NewContext()

	closes := []float64{101, 102, 99}
	for i, c := range closes {
		err := eng.Feed(ctx, Row{TimeMs: int64(i), Open: c, High: c, Low: c, Close: c, Volume: 1})
		require.NoError(t, err)
	}

	require.Len(t, ctx.Book.Trades, 1)
	trade := ctx.Book.Trades[0]
	assert.Equal(t, Long, trade.Direction)
	// bar0 opens 2 @ 101, bar1 extends by 2 @ 102: avg = (2*101+2*102)/4 = 101.5
	assert.InDelta(t, 101.5, trade.EntryPrice, 1e-9)
	assert.InDelta(t, 99, trade.ExitPrice, 1e-9)
	assert.InDelta(t, (99-101.5)*4, trade.PnL, 1e-9)
}

func Test_Engine_compileFailureReturnsNoEngine(t *testing.T) {
	eng, diags := Compile("y = undefined_name\n")
	assert.Nil(t, eng)
	assert.True(t, diags.HasErrors())
}
