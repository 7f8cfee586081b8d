package result

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_OK_defaultInternalMsgWhenNoneGiven(t *testing.T) {
	r := OK(map[string]string{"a": "b"})
	assert.Equal(t, http.StatusOK, r.Status)
	assert.False(t, r.IsErr)
	assert.Equal(t, "OK", r.InternalMsg)
}

func Test_OK_formatsInternalMsgWhenGiven(t *testing.T) {
	r := OK(nil, "created %d thing(s)", 3)
	assert.Equal(t, "created 3 thing(s)", r.InternalMsg)
}

func Test_NotFound_usesGenericUserMessage(t *testing.T) {
	r := NotFound("script %s missing", "abc")
	assert.Equal(t, http.StatusNotFound, r.Status)
	assert.True(t, r.IsErr)
	assert.Equal(t, "script abc missing", r.InternalMsg)
}

func Test_Unauthorized_setsWWWAuthenticateHeader(t *testing.T) {
	r := Unauthorized("bad creds")
	require.NoError(t, r.PrepareMarshaledResponse())

	w := httptest.NewRecorder()
	r.WriteResponse(w)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")
}

func Test_NoContent_writesNoBody(t *testing.T) {
	r := NoContent()
	w := httptest.NewRecorder()
	r.WriteResponse(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func Test_WriteResponse_writesJSONBodyForOK(t *testing.T) {
	r := OK(map[string]string{"hello": "world"})
	w := httptest.NewRecorder()
	r.WriteResponse(w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"hello":"world"}`, w.Body.String())
}

func Test_PrepareMarshaledResponse_isIdempotent(t *testing.T) {
	r := OK(map[string]string{"x": "y"})
	require.NoError(t, r.PrepareMarshaledResponse())
	require.NoError(t, r.PrepareMarshaledResponse())

	w := httptest.NewRecorder()
	r.WriteResponse(w)
	assert.JSONEq(t, `{"x":"y"}`, w.Body.String())
}

func Test_TextErr_writesPlainText(t *testing.T) {
	r := TextErr(http.StatusInternalServerError, "oops", "panic: %s", "boom")
	w := httptest.NewRecorder()
	r.WriteResponse(w)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "oops", w.Body.String())
}

func Test_Log_doesNotPanic(t *testing.T) {
	r := OK(nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.NotPanics(t, func() { r.Log(req) })
}
