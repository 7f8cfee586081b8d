package serr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_New_ErrorIsMatchesEachCause(t *testing.T) {
	inner := errors.New("inner failure")
	err := New("could not save script", inner, ErrDB)

	assert.True(t, errors.Is(err, inner))
	assert.True(t, errors.Is(err, ErrDB))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func Test_New_ErrorStringIncludesMessageAndFirstCause(t *testing.T) {
	inner := errors.New("disk full")
	err := New("could not write", inner)
	assert.Equal(t, "could not write: disk full", err.Error())
}

func Test_New_NoMessageFallsBackToFirstCause(t *testing.T) {
	inner := errors.New("boom")
	err := New("", inner)
	assert.Equal(t, "boom", err.Error())
}

func Test_New_NoCausesJustMessage(t *testing.T) {
	err := New("plain message")
	assert.Equal(t, "plain message", err.Error())
	assert.False(t, errors.Is(err, ErrDB))
}

func Test_WrapDB_addsErrDBAsCause(t *testing.T) {
	inner := errors.New("constraint failed")
	err := WrapDB("insert failed", inner)

	assert.True(t, errors.Is(err, inner))
	assert.True(t, errors.Is(err, ErrDB))
}

func Test_ErrCompile_isDistinctSentinel(t *testing.T) {
	err := New("script invalid", ErrCompile)
	assert.True(t, errors.Is(err, ErrCompile))
	assert.False(t, errors.Is(err, ErrDB))
}
