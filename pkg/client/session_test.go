package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a minimal auth backend: login issues a token, me validates it,
// logout revokes it.
type fakeAPI struct {
	validTokens map[string]bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{validTokens: make(map[string]bool)}
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "correct" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"invalid credentials"}}`))
			return
		}
		token := "tok-" + body.Email
		f.validTokens[token] = true
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"user": map[string]any{"id": "u-1", "email": body.Email},
				"auth": map[string]any{"token": token, "activeRole": body.Role},
			},
		})
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if len(token) > 7 {
			token = token[7:]
		}
		if !f.validTokens[token] {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"session expired or revoked"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"user":       map[string]any{"id": "u-1"},
				"activeRole": "SELLER",
			},
		})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if len(token) > 7 {
			token = token[7:]
		}
		delete(f.validTokens, token)
		_, _ = w.Write([]byte(`{"data":{"loggedOut":true}}`))
	})
	return mux
}

func newSessionFixture(t *testing.T) (*fakeAPI, *httptest.Server, string) {
	t.Helper()
	api := newFakeAPI()
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)
	statePath := filepath.Join(t.TempDir(), "session.json")
	return api, server, statePath
}

func TestEstablishThenRestoreRoundTrip(t *testing.T) {
	_, server, statePath := newSessionFixture(t)

	first := NewSession(New(server.URL), statePath)
	state, err := first.Establish(context.Background(), "jordan@example.com", "correct", RoleSeller)
	require.NoError(t, err)
	assert.Equal(t, RoleSeller, state.ActiveRole)
	assert.True(t, first.Authenticated())

	// A fresh process restores from the state file alone.
	second := NewSession(New(server.URL), statePath)
	second.Restore(context.Background())

	assert.True(t, second.Authenticated())
	assert.Equal(t, RoleSeller, second.State().ActiveRole)
	assert.Equal(t, state.Token, second.State().Token)
}

func TestEstablishRejectedLeavesNoState(t *testing.T) {
	_, server, statePath := newSessionFixture(t)

	session := NewSession(New(server.URL), statePath)
	_, err := session.Establish(context.Background(), "jordan@example.com", "wrong", RoleSeller)

	var ae *AuthorizationError
	require.ErrorAs(t, err, &ae)
	assert.False(t, session.Authenticated())
	_, statErr := os.Stat(statePath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLogoutThenRestoreIsLoggedOut(t *testing.T) {
	api, server, statePath := newSessionFixture(t)

	session := NewSession(New(server.URL), statePath)
	_, err := session.Establish(context.Background(), "jordan@example.com", "correct", RoleSeller)
	require.NoError(t, err)

	session.Logout(context.Background())
	assert.False(t, session.Authenticated())
	assert.Empty(t, api.validTokens, "server-side session revoked")
	_, statErr := os.Stat(statePath)
	assert.True(t, os.IsNotExist(statErr), "state file removed")

	fresh := NewSession(New(server.URL), statePath)
	fresh.Restore(context.Background())
	assert.False(t, fresh.Authenticated())
}

func TestRestoreWithRevokedTokenDegradesToLoggedOut(t *testing.T) {
	api, server, statePath := newSessionFixture(t)

	session := NewSession(New(server.URL), statePath)
	_, err := session.Establish(context.Background(), "jordan@example.com", "correct", RoleSeller)
	require.NoError(t, err)

	// Revoke server-side only, leaving the stale state file behind.
	for token := range api.validTokens {
		delete(api.validTokens, token)
	}

	fresh := NewSession(New(server.URL), statePath)
	fresh.Restore(context.Background())

	assert.False(t, fresh.Authenticated())
	_, statErr := os.Stat(statePath)
	assert.True(t, os.IsNotExist(statErr), "stale state file cleaned up")
}

func TestRestoreWithCorruptStateFile(t *testing.T) {
	_, server, statePath := newSessionFixture(t)
	require.NoError(t, os.WriteFile(statePath, []byte("{not json"), 0o600))

	session := NewSession(New(server.URL), statePath)
	session.Restore(context.Background())

	assert.False(t, session.Authenticated())
}

func TestRestoreWithUnreachableServerKeepsStateFile(t *testing.T) {
	_, server, statePath := newSessionFixture(t)

	session := NewSession(New(server.URL), statePath)
	_, err := session.Establish(context.Background(), "jordan@example.com", "correct", RoleSeller)
	require.NoError(t, err)

	server.Close()

	fresh := NewSession(New(server.URL), statePath)
	fresh.Restore(context.Background())

	assert.False(t, fresh.Authenticated(), "cannot validate, so not authenticated")
	_, statErr := os.Stat(statePath)
	assert.NoError(t, statErr, "transient failure must not destroy the credential")
}

func TestAuthorizeIsPure(t *testing.T) {
	session := &Session{}
	assert.Equal(t, AuthzNotAuthenticated, session.Authorize(RoleSeller))

	session.authenticated = true
	session.state = SessionState{ActiveRole: RoleBuyer}

	assert.Equal(t, AuthzAllowed, session.Authorize())
	assert.Equal(t, AuthzAllowed, session.Authorize(RoleBuyer))
	assert.Equal(t, AuthzAllowed, session.Authorize(RoleSeller, RoleBuyer))
	assert.Equal(t, AuthzWrongRole, session.Authorize(RoleSeller))
	assert.Equal(t, AuthzWrongRole, session.Authorize(RoleSystemAdmin))
}
