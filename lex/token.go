// Package lex implements the layout-driven tokenizer described in spec
// section C1: a regular-grammar scanner wrapped by an indentation shaper
// that injects virtual BEGIN/END/LEND tokens so the parser never has to
// reason about whitespace directly.
package lex

import "github.com/barscript/barscript/diag"

// Kind identifies the class of a Token.
type Kind int

const (
	Identifier Kind = iota
	Keyword
	IntLit
	FloatLit
	StringLit
	BoolLit
	ColorLit

	LPAR
	RPAR
	LSQBR
	RSQBR
	COMMA

	ARROW  // =>
	DEFINE // =
	ASSIGN // :=

	// operators
	Plus
	Minus
	Star
	Slash
	Percent
	EqEq
	NotEq
	Lt
	Lte
	Gt
	Gte
	Question
	Colon

	// virtual layout tokens
	Begin
	End
	Lend

	EOF
)

var kindNames = map[Kind]string{
	Identifier: "identifier",
	Keyword:    "keyword",
	IntLit:     "int-literal",
	FloatLit:   "float-literal",
	StringLit:  "string-literal",
	BoolLit:    "bool-literal",
	ColorLit:   "color-literal",
	LPAR:       "(",
	RPAR:       ")",
	LSQBR:      "[",
	RSQBR:      "]",
	COMMA:      ",",
	ARROW:      "=>",
	DEFINE:     "=",
	ASSIGN:     ":=",
	Plus:       "+",
	Minus:      "-",
	Star:       "*",
	Slash:      "/",
	Percent:    "%",
	EqEq:       "==",
	NotEq:      "!=",
	Lt:         "<",
	Lte:        "<=",
	Gt:         ">",
	Gte:        ">=",
	Question:   "?",
	Colon:      ":",
	Begin:      "<BEGIN>",
	End:        "<END>",
	Lend:       "<LEND>",
	EOF:        "<EOF>",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "<UNKNOWN>"
}

// Keywords are reserved identifiers; they take priority over Identifier
// during classification.
var Keywords = map[string]bool{
	"if": true, "else": true, "for": true, "to": true, "by": true,
	"break": true, "continue": true, "or": true, "and": true, "not": true,
	"true": true, "false": true,
}

// Token is a single lexical unit: a physical token produced by the scanner
// or a virtual BEGIN/END/LEND/EOF token injected by the layout shaper.
// Virtual tokens carry the position of the token that triggered them.
type Token struct {
	Kind   Kind
	Lexeme string
	Pos    diag.Position

	// Line is the full source line the token starts on, used for
	// diagnostic rendering.
	Line string
}
