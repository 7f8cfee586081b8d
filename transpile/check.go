// Package transpile performs the semantic validation pass spec.md §4.3
// describes: scope-stack duplicate-definition and undefined-identifier
// checks, and fixed-arity checks against both user function definitions
// and the ta stdlib registry. It does not lower the tree to a separate
// bytecode or intermediate form — runtime tree-walks the validated
// ast.ScriptNode directly, per design note 9's preference for direct
// tree-walk evaluation over string-level code generation. Grounded on
// internal/tunascript/interpreter.go's scope-stack walking style, adapted
// from an evaluator into a pure checker.
package transpile

import (
	"github.com/barscript/barscript/ast"
	"github.com/barscript/barscript/diag"
	"github.com/barscript/barscript/ta"
)

// Procedure is the output of a successful Compile: a script validated
// against its own static scoping and arity rules, ready for repeated
// per-bar execution by runtime.Engine.
type Procedure struct {
	Script    ast.ScriptNode
	Functions map[string]ast.FuncDefNode
}

// marketVariables are the bar-scoped names runtime.Evaluator.ExecuteBar
// binds into its top scope before running a script's statements; the
// checker must seed the same names here so references to them resolve.
var marketVariables = []string{"open", "high", "low", "close", "volume", "time", "bar_index"}

// Compile validates script and returns a Procedure ready for execution.
// A non-empty diags with HasErrors() true means the returned *Procedure
// is nil; a diags containing only warnings is returned alongside a valid
// Procedure.
func Compile(script ast.ScriptNode) (*Procedure, diag.List) {
	c := &checker{functions: make(map[string]ast.FuncDefNode)}
	c.collectFunctions(script)

	top := newScope(nil)
	for _, name := range marketVariables {
		top.defineLocal(name)
	}
	for _, stmt := range script.Statements {
		c.checkStatement(stmt, top)
	}

	if c.diags.HasErrors() {
		return nil, c.diags
	}
	return &Procedure{Script: script, Functions: c.functions}, c.diags
}

type checker struct {
	functions map[string]ast.FuncDefNode
	diags     diag.List
}

// scope is a lexical binding set used purely for duplicate/undefined
// checks; it never holds values, only names.
type scope struct {
	parent *scope
	names  map[string]bool
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: make(map[string]bool)}
}

// defineLocal introduces name in this scope only, returning false if it
// already exists here (a duplicate definition).
func (s *scope) defineLocal(name string) bool {
	if s.names[name] {
		return false
	}
	s.names[name] = true
	return true
}

// resolve walks outward through enclosing scopes looking for name.
func (s *scope) resolve(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.names[name] {
			return true
		}
	}
	return false
}

// collectFunctions registers every top-level function definition before
// the main walk, so forward references (a function calling one defined
// later in the script) resolve correctly.
func (c *checker) collectFunctions(script ast.ScriptNode) {
	for _, stmt := range script.Statements {
		if stmt.Kind() != ast.KFuncDef {
			continue
		}
		fn := stmt.AsFuncDefNode()
		if _, exists := c.functions[fn.Name]; exists {
			c.diags.Errorf(fn.Source().Pos, "duplicate definition of function %q", fn.Name)
			continue
		}
		c.functions[fn.Name] = fn
	}
}

func (c *checker) checkBlock(stmts []ast.Node, parent *scope) {
	sc := newScope(parent)
	for _, stmt := range stmts {
		c.checkStatement(stmt, sc)
	}
}

func (c *checker) checkStatement(node ast.Node, sc *scope) {
	switch node.Kind() {
	case ast.KVarDef:
		d := node.AsVarDefNode()
		c.checkExpr(d.Value, sc)
		if !sc.defineLocal(d.Name) {
			c.diags.Errorf(d.Source().Pos, "%q is already defined in this scope", d.Name)
		}

	case ast.KVarAssign:
		a := node.AsVarAssignNode()
		c.checkExpr(a.Value, sc)
		if !sc.resolve(a.Name) {
			c.diags.Errorf(a.Source().Pos, "assignment to undefined variable %q", a.Name)
		}

	case ast.KDestructure:
		d := node.AsDestructureNode()
		c.checkExpr(d.Value, sc)
		seen := make(map[string]bool, len(d.Names))
		for _, name := range d.Names {
			if seen[name] {
				c.diags.Errorf(d.Source().Pos, "%q appears more than once in destructuring target", name)
				continue
			}
			seen[name] = true
			if !sc.defineLocal(name) {
				c.diags.Errorf(d.Source().Pos, "%q is already defined in this scope", name)
			}
		}

	case ast.KFuncDef:
		fn := node.AsFuncDefNode()
		bodyScope := newScope(sc)
		seen := make(map[string]bool, len(fn.Params))
		for _, p := range fn.Params {
			if seen[p] {
				c.diags.Errorf(fn.Source().Pos, "duplicate parameter name %q in function %q", p, fn.Name)
				continue
			}
			seen[p] = true
			bodyScope.defineLocal(p)
		}
		for _, stmt := range fn.Body {
			c.checkStatement(stmt, bodyScope)
		}

	case ast.KIf:
		n := node.AsIfNode()
		c.checkExpr(n.Cond, sc)
		c.checkBlock(n.Then, sc)
		if n.Else != nil {
			c.checkBlock(n.Else, sc)
		}

	case ast.KFor:
		n := node.AsForNode()
		c.checkExpr(n.Start, sc)
		c.checkExpr(n.End, sc)
		if n.Step != nil {
			c.checkExpr(n.Step, sc)
		}
		bodyScope := newScope(sc)
		bodyScope.defineLocal(n.VarName)
		for _, stmt := range n.Body {
			c.checkStatement(stmt, bodyScope)
		}

	case ast.KBreak, ast.KContinue:
		// no bindings, nothing to check

	default:
		// an expression used as a statement (most commonly a bare call,
		// e.g. `plot(close)`)
		c.checkExpr(node, sc)
	}
}

func (c *checker) checkExpr(node ast.Node, sc *scope) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case ast.KLiteral:
		// nothing to check

	case ast.KIdentifier:
		id := node.AsIdentifierNode()
		if sc.resolve(id.Name) {
			return
		}
		if _, ok := c.functions[id.Name]; ok {
			return
		}
		if _, ok := ta.Lookup(id.Name); ok {
			return
		}
		c.diags.Errorf(id.Source().Pos, "undefined identifier %q", id.Name)

	case ast.KBinaryOp:
		b := node.AsBinaryOpNode()
		c.checkExpr(b.Left, sc)
		c.checkExpr(b.Right, sc)

	case ast.KUnaryOp:
		u := node.AsUnaryOpNode()
		c.checkExpr(u.Operand, sc)

	case ast.KTernary:
		t := node.AsTernaryNode()
		c.checkExpr(t.Cond, sc)
		c.checkExpr(t.Then, sc)
		c.checkExpr(t.Else, sc)

	case ast.KSubscript:
		s := node.AsSubscriptNode()
		c.checkExpr(s.Target, sc)
		c.checkExpr(s.Index, sc)

	case ast.KCall:
		c.checkCall(node.AsCallNode(), sc)

	case ast.KArrayLiteral:
		for _, el := range node.AsArrayLiteralNode().Elements {
			c.checkExpr(el, sc)
		}

	case ast.KIf, ast.KFor:
		// if/for used in expression position: same scoping rules as
		// statement position apply to their subtrees.
		c.checkStatement(node, sc)

	default:
		c.checkStatement(node, sc)
	}
}

func (c *checker) checkCall(call ast.CallNode, sc *scope) {
	for _, a := range call.Args {
		c.checkExpr(a, sc)
	}
	for _, kw := range call.KwArgs {
		c.checkExpr(kw.Value, sc)
	}

	if call.Callee.Kind() != ast.KIdentifier {
		c.checkExpr(call.Callee, sc)
		return
	}
	name := call.Callee.AsIdentifierNode().Name

	if fn, ok := c.functions[name]; ok {
		if len(call.Args) != len(fn.Params) {
			c.diags.Errorf(call.Source().Pos, "function %q expects %d argument(s), got %d", name, len(fn.Params), len(call.Args))
		}
		if len(call.KwArgs) != 0 {
			c.diags.Errorf(call.Source().Pos, "function %q does not accept keyword arguments", name)
		}
		return
	}

	if arity, ok := ta.Lookup(name); ok {
		total := len(call.Args) + len(call.KwArgs)
		if total < arity.MinArgs || total > arity.MaxArgs {
			c.diags.Errorf(call.Source().Pos, "%q expects %d argument(s), got %d", arity.Name, arity.MinArgs, total)
		}
		return
	}

	if !sc.resolve(name) {
		c.diags.Errorf(call.Source().Pos, "undefined function %q", name)
	}
}
