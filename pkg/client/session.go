package client

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// AuthzDecision is the outcome of a local authorization check.
type AuthzDecision int

const (
	// AuthzAllowed means the session may perform the action.
	AuthzAllowed AuthzDecision = iota
	// AuthzNotAuthenticated means there is no live session.
	AuthzNotAuthenticated
	// AuthzWrongRole means the session is live but its active role is not
	// among the required ones.
	AuthzWrongRole
)

// SessionState is what the session persists and exposes: identity snapshot,
// active role and the bearer credential.
type SessionState struct {
	User       User      `json:"user"`
	ActiveRole Role      `json:"activeRole"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Session owns the client-side authentication lifecycle. State lives in
// memory and mirrors to a JSON file so a new process can restore it.
type Session struct {
	client *Client
	path   string

	authenticated bool
	state         SessionState
}

// NewSession wires a session to a client and a state file path.
func NewSession(apiClient *Client, statePath string) *Session {
	return &Session{client: apiClient, path: statePath}
}

// Restore rehydrates the session from the state file and validates the
// credential against the server. Every failure mode degrades to a
// logged-out session; Restore never returns an error for a missing,
// unreadable or rejected state.
func (s *Session) Restore(ctx context.Context) {
	s.authenticated = false
	s.state = SessionState{}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var state SessionState
	if err := json.Unmarshal(raw, &state); err != nil || state.Token == "" {
		_ = os.Remove(s.path)
		return
	}

	s.client.SetToken(state.Token)
	user, activeRole, err := s.client.Me(ctx)
	if err != nil {
		s.client.SetToken("")
		var authErr *AuthorizationError
		if errors.As(err, &authErr) {
			// Credential revoked or expired; the stale file is useless.
			_ = os.Remove(s.path)
		}
		return
	}

	state.User = *user
	state.ActiveRole = activeRole
	s.state = state
	s.authenticated = true
}

// Establish logs in and persists the session state atomically. On failure
// the previous state, if any, is left untouched.
func (s *Session) Establish(ctx context.Context, email, password string, role Role) (*SessionState, error) {
	user, creds, err := s.client.Login(ctx, email, password, role)
	if err != nil {
		return nil, err
	}

	state := SessionState{
		User:       *user,
		ActiveRole: creds.ActiveRole,
		Token:      creds.Token,
		ExpiresAt:  creds.ExpiresAt,
	}
	if err := s.writeState(state); err != nil {
		return nil, err
	}

	s.state = state
	s.authenticated = true
	return &state, nil
}

// Logout tears the session down unconditionally: server-side revocation is
// best-effort, memory and disk are always cleared.
func (s *Session) Logout(ctx context.Context) {
	if s.authenticated {
		_ = s.client.Logout(ctx)
	}
	s.client.SetToken("")
	s.authenticated = false
	s.state = SessionState{}
	_ = os.Remove(s.path)
}

// Authorize decides locally whether the session may perform an action
// requiring one of the given roles. It consults no external state: the
// decision is a pure function of authentication and active role.
func (s *Session) Authorize(requiredRoles ...Role) AuthzDecision {
	if !s.authenticated {
		return AuthzNotAuthenticated
	}
	if len(requiredRoles) == 0 {
		return AuthzAllowed
	}
	for _, role := range requiredRoles {
		if s.state.ActiveRole == role {
			return AuthzAllowed
		}
	}
	return AuthzWrongRole
}

// Authenticated reports whether a live session exists.
func (s *Session) Authenticated() bool {
	return s.authenticated
}

// State returns a copy of the current session state.
func (s *Session) State() SessionState {
	return s.state
}

// writeState persists atomically: a temp file in the same directory is
// renamed over the target so readers never see a partial file.
func (s *Session) writeState(state SessionState) error {
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}
