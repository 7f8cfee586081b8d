package lex

import (
	"testing"

	"github.com/barscript/barscript/diag"
	"github.com/stretchr/testify/assert"
)

func kinds(toks []Token) []Kind {
	ks := make([]Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func Test_Tokenize_kindSequence(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect []Kind
	}{
		{
			name:   "empty",
			input:  "",
			expect: []Kind{EOF},
		},
		{
			name:   "single statement",
			input:  "x = 1",
			expect: []Kind{Identifier, DEFINE, IntLit, EOF},
		},
		{
			name:  "two top-level statements",
			input: "x = 1\ny = 2",
			expect: []Kind{
				Identifier, DEFINE, IntLit,
				Lend,
				Identifier, DEFINE, IntLit,
				EOF,
			},
		},
		{
			name:  "indented block",
			input: "if x\n    y = 1\nz = 2",
			expect: []Kind{
				Keyword, Identifier,
				Begin,
				Identifier, DEFINE, IntLit,
				Lend, End,
				Identifier, DEFINE, IntLit,
				EOF,
			},
		},
		{
			name:  "blank lines absorbed into one layout run",
			input: "x = 1\n\n\ny = 2",
			expect: []Kind{
				Identifier, DEFINE, IntLit,
				Lend,
				Identifier, DEFINE, IntLit,
				EOF,
			},
		},
		{
			name:  "parens suppress layout",
			input: "f(1,\n2,\n3)",
			expect: []Kind{
				Identifier, LPAR, IntLit, COMMA, IntLit, COMMA, IntLit, RPAR,
				EOF,
			},
		},
		{
			name:  "arrow and single line function",
			input: "double(n) => n * 2",
			expect: []Kind{
				Identifier, LPAR, Identifier, RPAR, ARROW,
				Identifier, Star, IntLit,
				EOF,
			},
		},
		{
			name:  "assignment operator distinct from define",
			input: "x := 2",
			expect: []Kind{Identifier, ASSIGN, IntLit, EOF},
		},
		{
			name:  "color literal",
			input: "c = #FF00AA",
			expect: []Kind{Identifier, DEFINE, ColorLit, EOF},
		},
		{
			name:  "ternary and comparison",
			input: "x = a > 1 ? 2 : 3",
			expect: []Kind{
				Identifier, DEFINE, Identifier, Gt, IntLit, Question, IntLit, Colon, IntLit,
				EOF,
			},
		},
		{
			name:  "dotted identifier",
			input: "y = ta.sma(close, 14)",
			expect: []Kind{
				Identifier, DEFINE, Identifier, LPAR, Identifier, COMMA, IntLit, RPAR,
				EOF,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			toks, diags := Tokenize(tc.input)
			assert.Empty(t, diags, "unexpected diagnostics")
			assert.Equal(t, tc.expect, kinds(toks))
		})
	}
}

func Test_Tokenize_dedentToZeroAtEOF(t *testing.T) {
	input := "if a\n    if b\n        x = 1\n"
	toks, diags := Tokenize(input)
	assert.Empty(t, diags)

	beginCount, endCount := 0, 0
	for _, tok := range toks {
		switch tok.Kind {
		case Begin:
			beginCount++
		case End:
			endCount++
		}
	}
	assert.Equal(t, beginCount, endCount, "BEGIN/END must balance")
	assert.Equal(t, EOF, toks[len(toks)-1].Kind)
}

func Test_Tokenize_mismatchedDedentWarns(t *testing.T) {
	input := "if a\n        x = 1\n   y = 2\n"
	_, diags := Tokenize(input)
	assert.NotEmpty(t, diags)
	assert.Equal(t, diag.Warning, diags[0].Severity)
}

func Test_Tokenize_stringEscapes(t *testing.T) {
	toks, diags := Tokenize(`s = "a\nb"`)
	assert.Empty(t, diags)
	var str Token
	for _, tok := range toks {
		if tok.Kind == StringLit {
			str = tok
		}
	}
	assert.Equal(t, "a\nb", str.Lexeme)
}

func Test_Tokenize_floatLiterals(t *testing.T) {
	toks, diags := Tokenize("x = 1.5e-3")
	assert.Empty(t, diags)
	var lit Token
	for _, tok := range toks {
		if tok.Kind == FloatLit {
			lit = tok
		}
	}
	assert.Equal(t, "1.5e-3", lit.Lexeme)
}
