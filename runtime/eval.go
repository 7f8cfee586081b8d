package runtime

import (
	"strings"

	"github.com/barscript/barscript/ast"
	"github.com/barscript/barscript/ta"
	"github.com/barscript/barscript/transpile"
)

// ctrlKind signals break/continue propagating out of a block back to the
// nearest enclosing for-loop, the way execBlock/execFor below thread it
// through nested if statements without a separate exception mechanism.
type ctrlKind int

const (
	ctrlNone ctrlKind = iota
	ctrlBreak
	ctrlContinue
)

// Evaluator tree-walks a validated transpile.Procedure directly against a
// Context, once per bar. There is no separate bytecode or IR: design note 9
// prefers direct tree-walk evaluation over string-level code generation,
// and the persistent state lives in Context.State rather than in the
// evaluator itself, so re-walking the same tree every bar is cheap and
// correct as long as call-site order is stable (§5).
type Evaluator struct {
	proc *transpile.Procedure
	ctx  *Context
}

func NewEvaluator(proc *transpile.Procedure) *Evaluator {
	return &Evaluator{proc: proc}
}

// ExecuteBar runs every top-level statement once against ctx. The state
// table's call counter is reset first so indicator calls line up with the
// same slot on every bar (§4.4).
func (e *Evaluator) ExecuteBar(ctx *Context) {
	e.ctx = ctx
	ctx.State.ResetCallCounter()

	top := NewScope(nil)
	top.Define("open", Num(ctx.Open))
	top.Define("high", Num(ctx.High))
	top.Define("low", Num(ctx.Low))
	top.Define("close", Num(ctx.Close))
	top.Define("volume", Num(ctx.Volume))
	top.Define("time", Num(float64(ctx.Time)))
	top.Define("bar_index", Num(float64(ctx.BarIndex)))

	e.execBlock(e.proc.Script.Statements, top)
}

// execBlock runs stmts in sc, returning the value of the last executed
// statement (so an if/for used in expression position has a result) and
// any break/continue signal that should propagate to an enclosing loop.
func (e *Evaluator) execBlock(stmts []ast.Node, sc *Scope) (Value, ctrlKind) {
	last := NaN()
	for _, stmt := range stmts {
		v, ctrl := e.execStatement(stmt, sc)
		last = v
		if ctrl != ctrlNone {
			return last, ctrl
		}
	}
	return last, ctrlNone
}

func (e *Evaluator) execStatement(node ast.Node, sc *Scope) (Value, ctrlKind) {
	switch node.Kind() {
	case ast.KVarDef:
		d := node.AsVarDefNode()
		v := e.evalExpr(d.Value, sc)
		sc.Define(d.Name, v)
		return v, ctrlNone

	case ast.KVarAssign:
		a := node.AsVarAssignNode()
		v := e.evalExpr(a.Value, sc)
		sc.Assign(a.Name, v)
		return v, ctrlNone

	case ast.KDestructure:
		d := node.AsDestructureNode()
		v := e.evalExpr(d.Value, sc)
		elems := v.Array()
		for i, name := range d.Names {
			if i < len(elems) {
				sc.Define(name, elems[i])
			} else {
				sc.Define(name, NaN())
			}
		}
		return v, ctrlNone

	case ast.KFuncDef:
		// function bodies are invoked directly from evalCall; the
		// definition statement itself has nothing to do at execution time.
		return NaN(), ctrlNone

	case ast.KIf:
		n := node.AsIfNode()
		if e.evalExpr(n.Cond, sc).Bool() {
			return e.execBlock(n.Then, NewScope(sc))
		}
		if n.Else != nil {
			return e.execBlock(n.Else, NewScope(sc))
		}
		return NaN(), ctrlNone

	case ast.KFor:
		return e.execFor(node.AsForNode(), sc)

	case ast.KBreak:
		return NaN(), ctrlBreak

	case ast.KContinue:
		return NaN(), ctrlContinue

	default:
		return e.evalExpr(node, sc), ctrlNone
	}
}

func (e *Evaluator) execFor(n ast.ForNode, sc *Scope) (Value, ctrlKind) {
	start := e.evalExpr(n.Start, sc).Float()
	end := e.evalExpr(n.End, sc).Float()
	step := 1.0
	if n.Step != nil {
		step = e.evalExpr(n.Step, sc).Float()
	}
	if step == 0 {
		step = 1
	}

	loopScope := NewScope(sc)
	last := NaN()

	if step > 0 {
		for i := start; i <= end; i += step {
			loopScope.Define(n.VarName, Num(i))
			v, ctrl := e.execBlock(n.Body, NewScope(loopScope))
			last = v
			if ctrl == ctrlBreak {
				break
			}
		}
	} else {
		for i := start; i >= end; i += step {
			loopScope.Define(n.VarName, Num(i))
			v, ctrl := e.execBlock(n.Body, NewScope(loopScope))
			last = v
			if ctrl == ctrlBreak {
				break
			}
		}
	}

	// break/continue never escape the loop that consumed them.
	return last, ctrlNone
}

func (e *Evaluator) evalExpr(node ast.Node, sc *Scope) Value {
	if node == nil {
		return NaN()
	}

	switch node.Kind() {
	case ast.KLiteral:
		return valueFromLiteral(node.AsLiteralNode().Value)

	case ast.KIdentifier:
		id := node.AsIdentifierNode()
		if v, ok := sc.Lookup(id.Name); ok {
			return v
		}
		return NaN()

	case ast.KBinaryOp:
		return e.evalBinary(node.AsBinaryOpNode(), sc)

	case ast.KUnaryOp:
		return e.evalUnary(node.AsUnaryOpNode(), sc)

	case ast.KTernary:
		t := node.AsTernaryNode()
		if e.evalExpr(t.Cond, sc).Bool() {
			return e.evalExpr(t.Then, sc)
		}
		return e.evalExpr(t.Else, sc)

	case ast.KSubscript:
		s := node.AsSubscriptNode()
		target := e.evalExpr(s.Target, sc)
		idx := int(e.evalExpr(s.Index, sc).Float())
		elems := target.Array()
		if idx < 0 || idx >= len(elems) {
			return NaN()
		}
		return elems[idx]

	case ast.KCall:
		return e.evalCall(node.AsCallNode(), sc)

	case ast.KArrayLiteral:
		elems := node.AsArrayLiteralNode().Elements
		vals := make([]Value, len(elems))
		for i, el := range elems {
			vals[i] = e.evalExpr(el, sc)
		}
		return Arr(vals)

	case ast.KIf, ast.KFor:
		v, _ := e.execStatement(node, sc)
		return v

	default:
		return NaN()
	}
}

func (e *Evaluator) evalBinary(n ast.BinaryOpNode, sc *Scope) Value {
	if n.Op == ast.OpOr {
		if e.evalExpr(n.Left, sc).Bool() {
			return Bln(true)
		}
		return Bln(e.evalExpr(n.Right, sc).Bool())
	}
	if n.Op == ast.OpAnd {
		if !e.evalExpr(n.Left, sc).Bool() {
			return Bln(false)
		}
		return Bln(e.evalExpr(n.Right, sc).Bool())
	}

	l := e.evalExpr(n.Left, sc)
	r := e.evalExpr(n.Right, sc)

	switch n.Op {
	case ast.OpEq:
		return Bln(valuesEqual(l, r))
	case ast.OpNeq:
		return Bln(!valuesEqual(l, r))
	case ast.OpLt:
		return Bln(l.Float() < r.Float())
	case ast.OpLte:
		return Bln(l.Float() <= r.Float())
	case ast.OpGt:
		return Bln(l.Float() > r.Float())
	case ast.OpGte:
		return Bln(l.Float() >= r.Float())
	case ast.OpAdd:
		if l.Kind() == String || r.Kind() == String {
			return Str(l.String() + r.String())
		}
		return Num(l.Float() + r.Float())
	case ast.OpSub:
		return Num(l.Float() - r.Float())
	case ast.OpMul:
		return Num(l.Float() * r.Float())
	case ast.OpDiv:
		return Num(l.Float() / r.Float())
	case ast.OpMod:
		lf, rf := l.Float(), r.Float()
		if rf == 0 {
			return NaN()
		}
		return Num(float64(int64(lf) % int64(rf)))
	default:
		return NaN()
	}
}

func valuesEqual(l, r Value) bool {
	if l.Kind() == String || r.Kind() == String {
		return l.String() == r.String()
	}
	if l.Kind() == Bool || r.Kind() == Bool {
		return l.Bool() == r.Bool()
	}
	return l.Float() == r.Float()
}

func (e *Evaluator) evalUnary(n ast.UnaryOpNode, sc *Scope) Value {
	v := e.evalExpr(n.Operand, sc)
	switch n.Op {
	case ast.OpNot:
		return Bln(!v.Bool())
	case ast.OpNeg:
		return Num(-v.Float())
	case ast.OpPos:
		return Num(v.Float())
	default:
		return NaN()
	}
}

func valueFromLiteral(v ast.Value) Value {
	switch v.Kind() {
	case ast.String:
		return Str(v.String())
	case ast.Bool:
		return Bln(v.Bool())
	default:
		// Int, Float, and Color literals are all represented as float64 at
		// runtime; a color's packed RRGGBBAA int is carried in the float
		// bits the same way any other integer literal is.
		return Num(v.Float())
	}
}

func (e *Evaluator) evalCall(call ast.CallNode, sc *Scope) Value {
	name := ""
	if call.Callee.Kind() == ast.KIdentifier {
		name = call.Callee.AsIdentifierNode().Name
	}

	args := make([]Value, len(call.Args))
	for i, a := range call.Args {
		args[i] = e.evalExpr(a, sc)
	}
	kwargs := make(map[string]Value, len(call.KwArgs))
	for _, kw := range call.KwArgs {
		kwargs[kw.Name] = e.evalExpr(kw.Value, sc)
	}

	if fn, ok := e.proc.Functions[name]; ok {
		return e.callUserFunc(fn, args)
	}
	if canon, ok := ta.Lookup(name); ok {
		return e.callStdlib(canon.Name, args, kwargs)
	}
	return NaN()
}

func (e *Evaluator) callUserFunc(fn ast.FuncDefNode, args []Value) Value {
	fnScope := NewScope(nil)
	for i, p := range fn.Params {
		if i < len(args) {
			fnScope.Define(p, args[i])
		} else {
			fnScope.Define(p, NaN())
		}
	}
	v, _ := e.execBlock(fn.Body, fnScope)
	return v
}

// slot addresses the persistent state table at the next call-counter
// position, creating the indicator's state on first use and reusing it on
// every later bar (§4.5).
func slot[T any](ctx *Context, factory func() T) *T {
	return GetOrInitSlot(ctx.State, factory)
}

func (e *Evaluator) callStdlib(name string, args []Value, kwargs map[string]Value) Value {
	arg := func(i int) float64 {
		if i < len(args) {
			return args[i].Float()
		}
		return 0
	}

	switch name {
	case "sma":
		ind := slot(e.ctx, func() ta.SMA { return *ta.NewSMA(ta.DefaultConfig) })
		return Num(ind.Update(arg(0), int(arg(1))))

	case "ema":
		ind := slot(e.ctx, func() ta.EMA { return *ta.NewEMA() })
		return Num(ind.Update(arg(0), int(arg(1))))

	case "rma":
		ind := slot(e.ctx, func() ta.EMA { return *ta.NewRMA() })
		return Num(ind.Update(arg(0), int(arg(1))))

	case "wma":
		ind := slot(e.ctx, func() ta.WMA { return *ta.NewWMA(ta.DefaultConfig) })
		return Num(ind.Update(arg(0), int(arg(1))))

	case "bb":
		ind := slot(e.ctx, func() ta.BB { return *ta.NewBB(ta.DefaultConfig) })
		mean, upper, lower := ind.Update(arg(0), int(arg(1)), arg(2))
		return Arr([]Value{Num(mean), Num(upper), Num(lower)})

	case "vwma":
		ind := slot(e.ctx, func() ta.VWMA { return *ta.NewVWMA(ta.DefaultConfig) })
		return Num(ind.Update(arg(0), arg(1), int(arg(2))))

	case "swma":
		ind := slot(e.ctx, func() ta.SWMA { return *ta.NewSWMA() })
		return Num(ind.Update(arg(0)))

	case "rsi":
		ind := slot(e.ctx, func() ta.RSI { return *ta.NewRSI() })
		return Num(ind.Update(arg(0), int(arg(1))))

	case "macd":
		ind := slot(e.ctx, func() ta.MACD { return *ta.NewMACD() })
		m, s, h := ind.Update(arg(0), int(arg(1)), int(arg(2)), int(arg(3)))
		return Arr([]Value{Num(m), Num(s), Num(h)})

	case "mom":
		ind := slot(e.ctx, func() ta.MOM { return *ta.NewMOM(ta.DefaultConfig) })
		return Num(ind.Update(arg(0), int(arg(1))))

	case "cci":
		ind := slot(e.ctx, func() ta.CCI { return *ta.NewCCI(ta.DefaultConfig) })
		return Num(ind.Update(arg(0), int(arg(1))))

	case "stoch":
		ind := slot(e.ctx, func() ta.Stoch { return *ta.NewStoch(ta.DefaultConfig) })
		return Num(ind.Update(arg(0), arg(1), arg(2), int(arg(3))))

	case "highest":
		ind := slot(e.ctx, func() ta.Extreme { return *ta.NewExtreme(ta.DefaultConfig, true) })
		return Num(ind.Update(arg(0), int(arg(1))))

	case "lowest":
		ind := slot(e.ctx, func() ta.Extreme { return *ta.NewExtreme(ta.DefaultConfig, false) })
		return Num(ind.Update(arg(0), int(arg(1))))

	case "highestbars":
		ind := slot(e.ctx, func() ta.Extreme { return *ta.NewExtreme(ta.DefaultConfig, true) })
		return Num(ind.UpdateBars(arg(0), int(arg(1))))

	case "lowestbars":
		ind := slot(e.ctx, func() ta.Extreme { return *ta.NewExtreme(ta.DefaultConfig, false) })
		return Num(ind.UpdateBars(arg(0), int(arg(1))))

	case "cross":
		ind := slot(e.ctx, func() ta.Cross { return *ta.NewCross(ta.CrossAny) })
		return Bln(ind.Update(arg(0), arg(1)))

	case "crossover":
		ind := slot(e.ctx, func() ta.Cross { return *ta.NewCross(ta.CrossOver) })
		return Bln(ind.Update(arg(0), arg(1)))

	case "crossunder":
		ind := slot(e.ctx, func() ta.Cross { return *ta.NewCross(ta.CrossUnder) })
		return Bln(ind.Update(arg(0), arg(1)))

	case "plot":
		value := arg(0)
		title := ""
		if len(args) >= 2 {
			title = args[1].String()
		} else if v, ok := kwargs["title"]; ok {
			title = v.String()
		}
		var color int64
		if v, ok := kwargs["color"]; ok {
			color = int64(v.Float())
		}
		e.ctx.Plots.Register(e.ctx.BarIndex, value, title, color)
		return NaN()

	case "entry":
		dir := Long
		if len(args) >= 2 && strings.EqualFold(args[1].String(), "short") {
			dir = Short
		}
		e.ctx.Book.Entry(e.ctx, dir, arg(2))
		return NaN()

	case "close":
		e.ctx.Book.Close(e.ctx)
		return NaN()

	case "close_all":
		e.ctx.Book.CloseAll(e.ctx)
		return NaN()

	default:
		return NaN()
	}
}
