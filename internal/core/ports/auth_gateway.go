package ports

import (
	"context"
	"errors"

	"github.com/repairdesk/dashboard-state/internal/core/domain"
)

// AuthGateway is the network boundary the Session Store talks to.
// The store only distinguishes success from failure.
type AuthGateway interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error)
	FetchProfile(ctx context.Context, token string) (*domain.User, error)
}

// UnauthorizedSource is implemented by the HTTP layer. Listeners are told
// when an authenticated request comes back 401.
type UnauthorizedSource interface {
	OnUnauthorized(fn func()) (cancel func())
}

// BoundaryError carries the server's human-readable reason for a failure.
type BoundaryError struct {
	Status  int
	Message string
	Err     error
}

func (e *BoundaryError) Error() string {
	base := "auth boundary failure"
	if e.Err != nil {
		base = e.Err.Error()
	}
	if e.Message == "" {
		return base
	}
	return base + ": " + e.Message
}

func (e *BoundaryError) Unwrap() error { return e.Err }

// DisplayMessage extracts the server-provided message from err, if any.
func DisplayMessage(err error) string {
	var be *BoundaryError
	if errors.As(err, &be) {
		return be.Message
	}
	return ""
}
