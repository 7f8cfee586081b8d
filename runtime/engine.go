package runtime

import (
	"github.com/barscript/barscript/diag"
	"github.com/barscript/barscript/lex"
	"github.com/barscript/barscript/parse"
	"github.com/barscript/barscript/transpile"
)

// Engine is the compile/run surface spec.md §6 describes for CLI, REPL,
// and embedder callers: Compile once, then drive any number of Contexts
// bar by bar through ExecuteBar/FinalizeBar (or the Feed/Run shortcuts).
type Engine struct {
	proc *transpile.Procedure
	eval *Evaluator
}

// Compile tokenizes, parses, and semantically validates source. A non-nil
// diags containing only warnings does not prevent a usable Engine; any
// Error-severity diagnostic at any phase does, per spec.md §7's "no
// partial outputs are committed for a failed compile."
func Compile(source string) (*Engine, diag.List) {
	var diags diag.List

	toks, lexDiags := lex.Tokenize(source)
	diags = append(diags, lexDiags...)
	if lexDiags.HasErrors() {
		return nil, diags
	}

	script, parseDiags := parse.Parse(toks)
	diags = append(diags, parseDiags...)
	if parseDiags.HasErrors() {
		return nil, diags
	}

	proc, checkDiags := transpile.Compile(script)
	diags = append(diags, checkDiags...)
	if checkDiags.HasErrors() {
		return nil, diags
	}

	return &Engine{proc: proc, eval: NewEvaluator(proc)}, diags
}

// ExecuteBar runs the compiled procedure once against ctx's current bar.
// A state-slot type-mismatch panic raised anywhere in the tree walk (the
// one condition spec.md §7 calls fatal) is recovered here and surfaced as
// an error instead of crashing the host.
func (e *Engine) ExecuteBar(ctx *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if fe, ok := AsFatalError(r, ctx.BarIndex); ok {
				err = fe
				return
			}
			panic(r)
		}
	}()

	e.eval.ExecuteBar(ctx)
	return nil
}

// FinalizeBar pads every plot series up to the current bar and advances
// ctx.BarIndex, per spec.md §4.7.
func (e *Engine) FinalizeBar(ctx *Context) {
	ctx.Plots.FinalizeBar(ctx.BarIndex)
	ctx.BarIndex++
}

// Feed applies one input row to ctx, executes the bar, and finalizes it.
// If ExecuteBar reports a fatal error the bar is not finalized, matching
// §7's "aborts the run."
func (e *Engine) Feed(ctx *Context, row Row) error {
	ctx.applyRow(row)
	if err := e.ExecuteBar(ctx); err != nil {
		return err
	}
	e.FinalizeBar(ctx)
	return nil
}

// Run feeds every row in order, stopping at the first fatal error.
func (e *Engine) Run(ctx *Context, rows []Row) error {
	for _, row := range rows {
		if err := e.Feed(ctx, row); err != nil {
			return err
		}
	}
	return nil
}
