package domain

import "errors"

var (
	// ErrInvalidCredentials is returned when the login boundary rejects a
	// username/password pair, or the pair fails local validation.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized marks a boundary failure caused by a missing, expired or
	// rejected token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidRole is returned when a user record carries an unknown role.
	ErrInvalidRole = errors.New("invalid role")

	ErrSnapshotNotFound    = errors.New("session snapshot not found")
	ErrUnsupportedSnapshot = errors.New("unsupported session snapshot version")
)
