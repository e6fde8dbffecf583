package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func doHead(a *API, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodHead, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func TestHeartbeat(t *testing.T) {
	a, _, _ := newTestAPI(t)

	assert.Equal(t, http.StatusOK, doHead(a, "/api/heartbeat", "").Code)
}

func TestValidateSessionToken(t *testing.T) {
	a, _, _ := newTestAPI(t)

	registerUser(t, a, "sess@example.com", "hunter22pass", "1.2.3.4")
	token := loginUser(t, a, "sess@example.com", "hunter22pass", "1.2.3.4")

	assert.Equal(t, http.StatusOK, doHead(a, "/api/validate", token).Code)
}

func TestAuthRejectsMissingToken(t *testing.T) {
	a, _, _ := newTestAPI(t)

	w := doJSON(t, a, http.MethodGet, "/api/files", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	a, _, _ := newTestAPI(t)

	w := doJSON(t, a, http.MethodGet, "/api/files", nil, "garbage.token.here")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsWrongKind(t *testing.T) {
	a, _, _ := newTestAPI(t)

	registerUser(t, a, "kind@example.com", "hunter22pass", "1.2.3.4")
	userTok := loginUser(t, a, "kind@example.com", "hunter22pass", "1.2.3.4")
	adminTok := registerAdmin(t, a, "root@example.com", "superadminpass")

	// A valid token of the wrong kind is a forbidden, not an unauthorized
	w := doJSON(t, a, http.MethodGet, "/api/admin/files", nil, userTok)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, a, http.MethodGet, "/api/files", nil, adminTok)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthRejectsDeletedUser(t *testing.T) {
	a, _, _ := newTestAPI(t)

	userID := registerUser(t, a, "ghosted@example.com", "hunter22pass", "1.2.3.4")
	token := loginUser(t, a, "ghosted@example.com", "hunter22pass", "1.2.3.4")
	adminTok := registerAdmin(t, a, "reaper@example.com", "superadminpass")

	w := doJSON(t, a, http.MethodDelete, "/api/admin/users/"+userID, nil, adminTok)
	assert.Equal(t, http.StatusOK, w.Code)

	// Token outlives the account, the gateway catches it
	w = doJSON(t, a, http.MethodGet, "/api/files", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
