// Package parse implements the recursive-descent parser spec.md §4.2
// describes: precedence-climbing expression parsing over the layout-shaped
// token stream from lex, producing the ast.Node tree. Grounded in spirit on
// internal/tunascript/parser.go's hand-rolled descent (no grammar-compiler
// dependency, consistent with design note 9), adapted to the new grammar
// and to ast's node set instead of tunascript's ASTNode variant.
package parse

import (
	"strconv"
	"strings"

	"github.com/barscript/barscript/ast"
	"github.com/barscript/barscript/diag"
	"github.com/barscript/barscript/lex"
)

// Parse consumes a fully shaped token stream (as returned by lex.Tokenize)
// and returns the top-level script node plus any diagnostics. A non-empty
// diagnostic list containing an Error-severity entry means the tree should
// not be trusted for lowering; the tree is still returned so tooling (and
// tests) can inspect whatever was recovered.
func Parse(toks []lex.Token) (ast.ScriptNode, diag.List) {
	p := &parser{toks: toks}
	script := p.parseScript()
	return script, p.diags
}

type parser struct {
	toks  []lex.Token
	pos   int
	diags diag.List
}

func (p *parser) peek() lex.Token { return p.peekAt(0) }

func (p *parser) peekAt(offset int) lex.Token {
	i := p.pos + offset
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF sentinel
	}
	return p.toks[i]
}

func (p *parser) advance() lex.Token {
	tok := p.peek()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) isKeyword(tok lex.Token, word string) bool {
	return tok.Kind == lex.Keyword && tok.Lexeme == word
}

// expect consumes the next token if it matches kind, otherwise records a
// diagnostic and performs single-token panic-mode recovery to the next
// LEND or END (per spec.md §4.2's error policy), returning the zero Token
// and false.
func (p *parser) expect(kind lex.Kind) (lex.Token, bool) {
	if p.peek().Kind == kind {
		return p.advance(), true
	}
	tok := p.peek()
	p.diags.Errorf(tok.Pos, "expected %s, got %s %q", kind, tok.Kind, tok.Lexeme)
	p.recover()
	return lex.Token{}, false
}

func (p *parser) recover() {
	for {
		k := p.peek().Kind
		if k == lex.Lend || k == lex.End || k == lex.EOF {
			return
		}
		p.advance()
	}
}

// findMatchingParen returns the index of the RPAR matching the LPAR at
// openIdx, or -1 if the stream runs into a statement boundary first.
func (p *parser) findMatchingParen(openIdx int) int {
	depth := 0
	for i := openIdx; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case lex.LPAR:
			depth++
		case lex.RPAR:
			depth--
			if depth == 0 {
				return i
			}
		case lex.Lend, lex.End, lex.EOF:
			if depth == 0 {
				return -1
			}
		}
	}
	return -1
}

func (p *parser) parseScript() ast.ScriptNode {
	tok := p.peek()
	var stmts []ast.Node

	for p.peek().Kind != lex.EOF {
		if p.peek().Kind == lex.Lend {
			p.advance()
			continue
		}
		stmts = append(stmts, p.parseStatement())

		switch p.peek().Kind {
		case lex.Lend:
			p.advance()
		case lex.EOF:
		default:
			bad := p.peek()
			p.diags.Errorf(bad.Pos, "expected end of statement, got %s %q", bad.Kind, bad.Lexeme)
			p.recover()
		}
	}

	return ast.NewScriptNode(tok, stmts)
}

func (p *parser) parseBlock() []ast.Node {
	if _, ok := p.expect(lex.Begin); !ok {
		return nil
	}

	var stmts []ast.Node
	for p.peek().Kind != lex.End && p.peek().Kind != lex.EOF {
		if p.peek().Kind == lex.Lend {
			p.advance()
			continue
		}
		stmts = append(stmts, p.parseStatement())
		switch p.peek().Kind {
		case lex.Lend:
			p.advance()
		case lex.End:
		default:
			bad := p.peek()
			p.diags.Errorf(bad.Pos, "expected end of statement, got %s %q", bad.Kind, bad.Lexeme)
			p.recover()
		}
	}
	p.expect(lex.End)
	return stmts
}

func (p *parser) parseStatement() ast.Node {
	tok := p.peek()

	switch {
	case p.isKeyword(tok, "if"):
		return p.parseIf()
	case p.isKeyword(tok, "for"):
		return p.parseFor()
	case p.isKeyword(tok, "break"):
		p.advance()
		return ast.NewBreakNode(tok)
	case p.isKeyword(tok, "continue"):
		p.advance()
		return ast.NewContinueNode(tok)
	case tok.Kind == lex.LSQBR:
		return p.parseDestructure()
	case tok.Kind == lex.Identifier:
		if p.peekAt(1).Kind == lex.LPAR {
			if close := p.findMatchingParen(p.pos + 1); close >= 0 {
				after := p.toks[close+1].Kind
				if after == lex.ARROW || after == lex.Begin {
					return p.parseFuncDef()
				}
			}
		} else if p.peekAt(1).Kind == lex.DEFINE {
			return p.parseVarDef()
		} else if p.peekAt(1).Kind == lex.ASSIGN {
			return p.parseVarAssign()
		}
	}

	return p.parseExpr()
}

func (p *parser) parseDestructure() ast.Node {
	tok := p.advance() // [
	var names []string
	for p.peek().Kind != lex.RSQBR && p.peek().Kind != lex.EOF {
		if idTok, ok := p.expect(lex.Identifier); ok {
			names = append(names, idTok.Lexeme)
		} else {
			break
		}
		if p.peek().Kind == lex.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(lex.RSQBR)
	p.expect(lex.DEFINE)
	value := p.parseExpr()
	return ast.NewDestructureNode(tok, names, value)
}

func (p *parser) parseVarDef() ast.Node {
	nameTok := p.advance()
	p.expect(lex.DEFINE)
	value := p.parseExpr()
	return ast.NewVarDefNode(nameTok, nameTok.Lexeme, value)
}

func (p *parser) parseVarAssign() ast.Node {
	nameTok := p.advance()
	p.expect(lex.ASSIGN)
	value := p.parseExpr()
	return ast.NewVarAssignNode(nameTok, nameTok.Lexeme, value)
}

func (p *parser) parseFuncDef() ast.Node {
	nameTok := p.advance()
	p.expect(lex.LPAR)

	var params []string
	for p.peek().Kind != lex.RPAR && p.peek().Kind != lex.EOF {
		if idTok, ok := p.expect(lex.Identifier); ok {
			params = append(params, idTok.Lexeme)
		} else {
			break
		}
		if p.peek().Kind == lex.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(lex.RPAR)

	var body []ast.Node
	switch p.peek().Kind {
	case lex.ARROW:
		p.advance()
		body = p.parseExprList()
	case lex.Begin:
		body = p.parseBlock()
	default:
		bad := p.peek()
		p.diags.Errorf(bad.Pos, "expected '=>' or an indented block after function parameters, got %s %q", bad.Kind, bad.Lexeme)
		p.recover()
	}

	return ast.NewFuncDefNode(nameTok, nameTok.Lexeme, params, body)
}

func (p *parser) parseExprList() []ast.Node {
	exprs := []ast.Node{p.parseExpr()}
	for p.peek().Kind == lex.COMMA {
		p.advance()
		exprs = append(exprs, p.parseExpr())
	}
	return exprs
}

func (p *parser) parseIf() ast.Node {
	tok := p.advance() // if
	cond := p.parseExpr()
	then := p.parseBlock()

	var els []ast.Node
	if p.isKeyword(p.peek(), "else") {
		p.advance()
		els = p.parseBlock()
	}

	return ast.NewIfNode(tok, cond, then, els)
}

func (p *parser) parseFor() ast.Node {
	tok := p.advance() // for
	varTok, _ := p.expect(lex.Identifier)
	p.expect(lex.DEFINE)
	start := p.parseExpr()

	if !p.isKeyword(p.peek(), "to") {
		bad := p.peek()
		p.diags.Errorf(bad.Pos, "expected 'to' in for-loop range, got %s %q", bad.Kind, bad.Lexeme)
		p.recover()
	} else {
		p.advance()
	}
	end := p.parseExpr()

	var step ast.Node
	if p.isKeyword(p.peek(), "by") {
		p.advance()
		step = p.parseExpr()
	}

	body := p.parseBlock()
	return ast.NewForNode(tok, varTok.Lexeme, start, end, step, body)
}

// --- expressions: ternary > or > and > eq/neq > cmp > add/sub > mul/div/mod > unary > postfix > atom ---

func (p *parser) parseExpr() ast.Node {
	return p.parseTernary()
}

func (p *parser) parseTernary() ast.Node {
	cond := p.parseOr()
	if p.peek().Kind != lex.Question {
		return cond
	}
	tok := p.advance()
	then := p.parseExpr()
	p.expect(lex.Colon)
	els := p.parseTernary()
	return ast.NewTernaryNode(tok, cond, then, els)
}

func (p *parser) parseOr() ast.Node {
	left := p.parseAnd()
	for p.isKeyword(p.peek(), "or") {
		tok := p.advance()
		right := p.parseAnd()
		left = ast.NewBinaryOpNode(tok, ast.OpOr, left, right)
	}
	return left
}

func (p *parser) parseAnd() ast.Node {
	left := p.parseEquality()
	for p.isKeyword(p.peek(), "and") {
		tok := p.advance()
		right := p.parseEquality()
		left = ast.NewBinaryOpNode(tok, ast.OpAnd, left, right)
	}
	return left
}

func (p *parser) parseEquality() ast.Node {
	left := p.parseComparison()
	for {
		var op ast.BinaryOp
		switch p.peek().Kind {
		case lex.EqEq:
			op = ast.OpEq
		case lex.NotEq:
			op = ast.OpNeq
		default:
			return left
		}
		tok := p.advance()
		right := p.parseComparison()
		left = ast.NewBinaryOpNode(tok, op, left, right)
	}
}

func (p *parser) parseComparison() ast.Node {
	left := p.parseAdditive()
	for {
		var op ast.BinaryOp
		switch p.peek().Kind {
		case lex.Lt:
			op = ast.OpLt
		case lex.Lte:
			op = ast.OpLte
		case lex.Gt:
			op = ast.OpGt
		case lex.Gte:
			op = ast.OpGte
		default:
			return left
		}
		tok := p.advance()
		right := p.parseAdditive()
		left = ast.NewBinaryOpNode(tok, op, left, right)
	}
}

func (p *parser) parseAdditive() ast.Node {
	left := p.parseMultiplicative()
	for {
		var op ast.BinaryOp
		switch p.peek().Kind {
		case lex.Plus:
			op = ast.OpAdd
		case lex.Minus:
			op = ast.OpSub
		default:
			return left
		}
		tok := p.advance()
		right := p.parseMultiplicative()
		left = ast.NewBinaryOpNode(tok, op, left, right)
	}
}

func (p *parser) parseMultiplicative() ast.Node {
	left := p.parseUnary()
	for {
		var op ast.BinaryOp
		switch p.peek().Kind {
		case lex.Star:
			op = ast.OpMul
		case lex.Slash:
			op = ast.OpDiv
		case lex.Percent:
			op = ast.OpMod
		default:
			return left
		}
		tok := p.advance()
		right := p.parseUnary()
		left = ast.NewBinaryOpNode(tok, op, left, right)
	}
}

func (p *parser) parseUnary() ast.Node {
	tok := p.peek()
	switch {
	case p.isKeyword(tok, "not"):
		p.advance()
		return ast.NewUnaryOpNode(tok, ast.OpNot, p.parseUnary())
	case tok.Kind == lex.Minus:
		p.advance()
		return ast.NewUnaryOpNode(tok, ast.OpNeg, p.parseUnary())
	case tok.Kind == lex.Plus:
		p.advance()
		return ast.NewUnaryOpNode(tok, ast.OpPos, p.parseUnary())
	default:
		return p.parsePostfix()
	}
}

func (p *parser) parsePostfix() ast.Node {
	node := p.parseAtom()
	for p.peek().Kind == lex.LSQBR {
		tok := p.advance()
		index := p.parseExpr()
		p.expect(lex.RSQBR)
		node = ast.NewSubscriptNode(tok, node, index)
	}
	return node
}

func (p *parser) parseAtom() ast.Node {
	tok := p.peek()

	if p.isKeyword(tok, "if") {
		return p.parseIf()
	}
	if p.isKeyword(tok, "for") {
		return p.parseFor()
	}

	switch tok.Kind {
	case lex.IntLit:
		p.advance()
		n, _ := strconv.ParseInt(tok.Lexeme, 10, 64)
		return ast.NewLiteralNode(tok, ast.IntValue(n))
	case lex.FloatLit:
		p.advance()
		f, _ := strconv.ParseFloat(tok.Lexeme, 64)
		return ast.NewLiteralNode(tok, ast.FloatValue(f))
	case lex.StringLit:
		p.advance()
		return ast.NewLiteralNode(tok, ast.StringValue(tok.Lexeme))
	case lex.BoolLit:
		p.advance()
		return ast.NewLiteralNode(tok, ast.BoolValue(strings.EqualFold(tok.Lexeme, "true")))
	case lex.ColorLit:
		p.advance()
		return ast.NewLiteralNode(tok, ast.ColorValue(parseColor(tok.Lexeme)))
	case lex.LPAR:
		p.advance()
		inner := p.parseExpr()
		p.expect(lex.RPAR)
		return inner
	case lex.LSQBR:
		return p.parseArrayLiteral()
	case lex.Identifier:
		p.advance()
		if p.peek().Kind == lex.LPAR {
			return p.parseCallArgs(tok)
		}
		return ast.NewIdentifierNode(tok, tok.Lexeme)
	default:
		p.diags.Errorf(tok.Pos, "unexpected token %s %q", tok.Kind, tok.Lexeme)
		p.recover()
		return ast.NewLiteralNode(tok, ast.FloatValue(0))
	}
}

func (p *parser) parseArrayLiteral() ast.Node {
	tok := p.advance() // [
	var elems []ast.Node
	for p.peek().Kind != lex.RSQBR && p.peek().Kind != lex.EOF {
		elems = append(elems, p.parseExpr())
		if p.peek().Kind == lex.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(lex.RSQBR)
	return ast.NewArrayLiteralNode(tok, elems)
}

func (p *parser) parseCallArgs(nameTok lex.Token) ast.Node {
	p.expect(lex.LPAR)

	var args []ast.Node
	var kwargs []ast.KwArg
	seenKwarg := false

	for p.peek().Kind != lex.RPAR && p.peek().Kind != lex.EOF {
		if p.peek().Kind == lex.Identifier && p.peekAt(1).Kind == lex.DEFINE {
			kwNameTok := p.advance()
			p.advance() // =
			value := p.parseExpr()
			kwargs = append(kwargs, ast.KwArg{Name: kwNameTok.Lexeme, Value: value})
			seenKwarg = true
		} else {
			if seenKwarg {
				bad := p.peek()
				p.diags.Errorf(bad.Pos, "positional argument may not follow a keyword argument")
			}
			args = append(args, p.parseExpr())
		}

		if p.peek().Kind == lex.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(lex.RPAR)

	callee := ast.NewIdentifierNode(nameTok, nameTok.Lexeme)
	return ast.NewCallNode(nameTok, callee, args, kwargs)
}

func parseColor(lexeme string) int64 {
	hex := strings.TrimPrefix(lexeme, "#")
	if len(hex) == 6 {
		hex += "FF"
	}
	v, _ := strconv.ParseUint(hex, 16, 32)
	return int64(v)
}
