package domain

import (
	"encoding/json"
	"fmt"
)

const (
	// LoginRoute is where a logout always sends the browser.
	LoginRoute = "/login"
	// DefaultStorageName keys the persisted session snapshot.
	DefaultStorageName = "auth-storage"
	// DefaultLoginError is shown when the server gives no reason for a failed login.
	DefaultLoginError = "Ошибка входа в систему"

	// SnapshotVersion is bumped on incompatible changes to SessionSnapshot.
	SnapshotVersion = 1
)

// SessionState is the full, in-memory view of the Session Store.
// Token and Error use the empty string for "absent".
type SessionState struct {
	User            *User
	Token           string
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

// Snapshot returns the subset of s that survives a restart.
func (s SessionState) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		Version:         SnapshotVersion,
		User:            s.User.Clone(),
		Token:           s.Token,
		IsAuthenticated: s.IsAuthenticated,
	}
}

// SessionSnapshot is the persisted triple {user, token, isAuthenticated}.
// Loading and error flags are process-local and never stored.
type SessionSnapshot struct {
	Version         int    `json:"version" bson:"version"`
	User            *User  `json:"user" bson:"user"`
	Token           string `json:"token" bson:"token"`
	IsAuthenticated bool   `json:"is_authenticated" bson:"is_authenticated"`
}

// Encode serializes the snapshot, stamping the current version.
func (s SessionSnapshot) Encode() ([]byte, error) {
	s.Version = SnapshotVersion
	return json.Marshal(s)
}

// DecodeSessionSnapshot parses data written by Encode. Snapshots written by
// a newer, unknown version are rejected.
func DecodeSessionSnapshot(data []byte) (*SessionSnapshot, error) {
	var s SessionSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session snapshot: %w", err)
	}
	if s.Version > SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSnapshot, s.Version)
	}
	return &s, nil
}

// Restore turns a persisted snapshot into a fresh SessionState. Transient
// flags start at their defaults. A snapshot claiming authentication without
// a user is demoted, so IsAuthenticated never holds with a nil User.
func (s SessionSnapshot) Restore() SessionState {
	st := SessionState{
		User:            s.User.Clone(),
		Token:           s.Token,
		IsAuthenticated: s.IsAuthenticated,
	}
	if st.User == nil {
		st.IsAuthenticated = false
	}
	return st
}
