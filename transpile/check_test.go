package transpile

import (
	"testing"

	"github.com/barscript/barscript/lex"
	"github.com/barscript/barscript/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompileScript(t *testing.T, src string) (*Procedure, error) {
	t.Helper()
	toks, lexDiags := lex.Tokenize(src)
	require.False(t, lexDiags.HasErrors(), "lex diagnostics: %s", lexDiags.Error())

	script, parseDiags := parse.Parse(toks)
	require.False(t, parseDiags.HasErrors(), "parse diagnostics: %s", parseDiags.Error())

	proc, diags := Compile(script)
	if diags.HasErrors() {
		return nil, diags
	}
	return proc, nil
}

func Test_Compile_simpleScriptPasses(t *testing.T) {
	proc, err := mustCompileScript(t, "x = 1 + 2 * 3\n")
	require.NoError(t, err)
	assert.NotNil(t, proc)
}

func Test_Compile_duplicateVarDefinitionFails(t *testing.T) {
	_, err := mustCompileScript(t, "x = 1\nx = 2\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already defined")
}

func Test_Compile_undefinedIdentifierFails(t *testing.T) {
	_, err := mustCompileScript(t, "y = x + 1\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined identifier")
}

func Test_Compile_assignToUndefinedVariableFails(t *testing.T) {
	_, err := mustCompileScript(t, "x := 1\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined variable")
}

func Test_Compile_undefinedFunctionCallFails(t *testing.T) {
	_, err := mustCompileScript(t, "y = nope(1, 2)\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined function")
}

func Test_Compile_stdlibArityMismatchFails(t *testing.T) {
	_, err := mustCompileScript(t, "y = sma(close)\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects")
}

func Test_Compile_userFuncArityMismatchFails(t *testing.T) {
	_, err := mustCompileScript(t, "double(n) => n * 2\ny = double(1, 2)\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects")
}

func Test_Compile_forwardReferenceToLaterFunctionSucceeds(t *testing.T) {
	_, err := mustCompileScript(t, "y = helper(2)\nhelper(n) => n + 1\n")
	require.NoError(t, err)
}

func Test_Compile_destructureDuplicateNameFails(t *testing.T) {
	_, err := mustCompileScript(t, "pair(n) => [n, n]\n[a, a] = pair(1)\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than once")
}

func Test_Compile_ifForScopesDoNotLeakBindings(t *testing.T) {
	src := "if close > 0\n    z = 1\nz := 2\n"
	_, err := mustCompileScript(t, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined variable")
}

func Test_Compile_forLoopVarScopedToBody(t *testing.T) {
	src := "for i = 0 to 10\n    x = i\ny = i\n"
	_, err := mustCompileScript(t, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined identifier")
}
