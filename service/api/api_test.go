package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barscript/barscript/service"
	"github.com/barscript/barscript/service/api"
	"github.com/barscript/barscript/service/dao/inmem"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.NewWithStore(inmem.NewDatastore(), []byte("0123456789012345678901234567890123456789"), 0)
	t.Cleanup(func() { svc.Close() })
	return httptest.NewServer(svc.Handler())
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed map[string]interface{}
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	}
	return resp, parsed
}

func registerAndLogin(t *testing.T, srv *httptest.Server, username, password string) string {
	t.Helper()
	resp, _ := doJSON(t, srv, http.MethodPost, api.PathPrefix+"/register", "", api.RegisterRequest{
		Username: username,
		Password: password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, srv, http.MethodPost, api.PathPrefix+"/login", "", api.LoginRequest{
		Username: username,
		Password: password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["token"].(string)
}

func Test_Info_isPublic(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp, body := doJSON(t, srv, http.MethodGet, api.PathPrefix+"/info", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	version := body["version"].(map[string]interface{})
	assert.NotEmpty(t, version["server"])
	assert.NotEmpty(t, version["barscript"])
}

func Test_Register_rejectsShortPassword(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp, _ := doJSON(t, srv, http.MethodPost, api.PathPrefix+"/register", "", api.RegisterRequest{
		Username: "shorty",
		Password: "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func Test_Register_rejectsDuplicateUsername(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	registerAndLogin(t, srv, "dupe", "password123")

	resp, _ := doJSON(t, srv, http.MethodPost, api.PathPrefix+"/register", "", api.RegisterRequest{
		Username: "dupe",
		Password: "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func Test_Login_rejectsBadPassword(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	registerAndLogin(t, srv, "loginuser", "password123")

	resp, _ := doJSON(t, srv, http.MethodPost, api.PathPrefix+"/login", "", api.LoginRequest{
		Username: "loginuser",
		Password: "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func Test_ProtectedRoute_requiresAuth(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp, _ := doJSON(t, srv, http.MethodGet, api.PathPrefix+"/scripts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func Test_CreateScript_rejectsUncompilableSource(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	tok := registerAndLogin(t, srv, "scripter", "password123")

	resp, _ := doJSON(t, srv, http.MethodPost, api.PathPrefix+"/scripts", tok, api.ScriptCreateRequest{
		Name:   "broken",
		Source: "var x = (",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func Test_CreateScript_thenRunProducesPlotsAndTrades(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	tok := registerAndLogin(t, srv, "trader", "password123")

	source := "plot(close, \"close\")"
	resp, body := doJSON(t, srv, http.MethodPost, api.PathPrefix+"/scripts", tok, api.ScriptCreateRequest{
		Name:   "plotter",
		Source: source,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "%v", body)
	scriptID := body["id"].(string)

	rows := []api.RowModel{
		{TimeMs: 1, Open: 10, High: 11, Low: 9, Close: 10, Volume: 100},
		{TimeMs: 2, Open: 10, High: 12, Low: 9, Close: 11, Volume: 120},
	}
	resp, body = doJSON(t, srv, http.MethodPost, fmt.Sprintf("%s/scripts/%s/runs", api.PathPrefix, scriptID), tok, api.RunCreateRequest{Rows: rows})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "%v", body)
	assert.Equal(t, true, body["completed"])
	assert.Equal(t, float64(2), body["bar_count"])

	plots := body["plots"].(map[string]interface{})
	closeSeries := plots["close"].([]interface{})
	require.Len(t, closeSeries, 2)
	assert.Equal(t, float64(10), closeSeries[0])
	assert.Equal(t, float64(11), closeSeries[1])
}

func Test_GetScript_forbiddenForOtherUser(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	ownerTok := registerAndLogin(t, srv, "owner", "password123")
	otherTok := registerAndLogin(t, srv, "other", "password123")

	resp, body := doJSON(t, srv, http.MethodPost, api.PathPrefix+"/scripts", ownerTok, api.ScriptCreateRequest{
		Name:   "private",
		Source: "plot(close, \"close\")",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	scriptID := body["id"].(string)

	resp, _ = doJSON(t, srv, http.MethodGet, fmt.Sprintf("%s/scripts/%s", api.PathPrefix, scriptID), otherTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func Test_Logout_invalidatesPreviousToken(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	tok := registerAndLogin(t, srv, "logout-user", "password123")

	resp, _ := doJSON(t, srv, http.MethodPost, api.PathPrefix+"/logout", tok, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodGet, api.PathPrefix+"/scripts", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
