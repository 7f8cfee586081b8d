/*
Barrun compiles a BarScript file and feeds it a CSV bar feed, printing the
resulting plot series and any strategy trades to stdout.

Usage:

	barrun [flags] SCRIPT.bar

The flags are:

	-v, --version
		Give the current version of BarScript and then exit.

	-d, --data FILE
		Read the bar feed from the given CSV file instead of stdin. The CSV
		must have a header row with columns time_ms,open,high,low,close,volume
		(in any order).

	-i, --indicators FILE
		Load indicator engine tuning (healing intervals, history caps) from
		the given TOML config file instead of using the built-in defaults.
*/
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/barscript/barscript/config"
	"github.com/barscript/barscript/internal/version"
	"github.com/barscript/barscript/runtime"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitCompileError indicates the script failed to compile.
	ExitCompileError

	// ExitRunError indicates a fatal error occurred while feeding bars.
	ExitRunError

	// ExitInitError indicates an issue loading the script, data, or config.
	ExitInitError
)

var (
	flagVersion    = pflag.BoolP("version", "v", false, "Give the current version of BarScript and then exit.")
	flagData       = pflag.StringP("data", "d", "", "Read the bar feed from the given CSV file instead of stdin.")
	flagIndicators = pflag.StringP("indicators", "i", "", "Load indicator tuning from the given TOML file.")
)

var returnCode = ExitSuccess

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		}
		os.Exit(returnCode)
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	args := pflag.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: barrun [flags] SCRIPT.bar\nDo -h for help.\n")
		returnCode = ExitInitError
		return
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not read script: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	var dataReader io.Reader = os.Stdin
	if *flagData != "" {
		f, err := os.Open(*flagData)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not open data file: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
		defer f.Close()
		dataReader = f
	}

	rows, err := readRows(dataReader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not read bar feed: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	eng, diags := runtime.Compile(string(src))
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "%s\n", d.Render())
	}
	if diags.HasErrors() {
		returnCode = ExitCompileError
		return
	}

	if *flagIndicators != "" {
		// indicator tuning currently requires building the engine with a
		// custom ta.Config, which Compile does not yet expose a hook for;
		// loading here at least validates the file early and surfaces typos
		// before a long run starts.
		if _, err := config.Load(*flagIndicators); err != nil {
			fmt.Fprintf(os.Stderr, "Could not load indicator config: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
	}

	ctx := runtime.NewContext()
	if err := eng.Run(ctx, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Run failed: %s\n", err.Error())
		returnCode = ExitRunError
	}

	printResults(ctx)
}

func readRows(r io.Reader) ([]runtime.Row, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"time_ms", "open", "high", "low", "close", "volume"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var rows []runtime.Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row, err := parseRow(rec, col)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string, col map[string]int) (runtime.Row, error) {
	timeMs, err := strconv.ParseInt(rec[col["time_ms"]], 10, 64)
	if err != nil {
		return runtime.Row{}, fmt.Errorf("time_ms: %w", err)
	}

	field := func(name string) (float64, error) {
		v, err := strconv.ParseFloat(rec[col[name]], 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		return v, nil
	}

	open, err := field("open")
	if err != nil {
		return runtime.Row{}, err
	}
	high, err := field("high")
	if err != nil {
		return runtime.Row{}, err
	}
	low, err := field("low")
	if err != nil {
		return runtime.Row{}, err
	}
	close, err := field("close")
	if err != nil {
		return runtime.Row{}, err
	}
	volume, err := field("volume")
	if err != nil {
		return runtime.Row{}, err
	}

	return runtime.Row{TimeMs: timeMs, Open: open, High: high, Low: low, Close: close, Volume: volume}, nil
}

func printResults(ctx *runtime.Context) {
	for _, title := range ctx.Plots.Titles() {
		series := ctx.Plots.Series(title)
		fmt.Printf("plot %s:\n", title)
		for i, v := range series {
			fmt.Printf("  [%d] %v\n", i, v)
		}
	}

	if len(ctx.Book.Trades) > 0 {
		fmt.Printf("trades:\n")
		for _, t := range ctx.Book.Trades {
			fmt.Printf("  %s qty=%v entry=%v@%d exit=%v@%d pnl=%v\n",
				t.Direction, t.Quantity, t.EntryPrice, t.EntryTime, t.ExitPrice, t.ExitTime, t.PnL)
		}
	}
}
