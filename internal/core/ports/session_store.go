package ports

import (
	"context"

	"github.com/repairdesk/dashboard-state/internal/core/domain"
)

// SessionStore owns who the dashboard believes is signed in.
type SessionStore interface {
	// Login returns the boundary failure to the caller after recording it.
	Login(ctx context.Context, creds domain.Credentials) error
	Logout(ctx context.Context)
	SetUser(ctx context.Context, user *domain.User)
	ClearError()
	// CheckAuth never fails; an invalid session collapses into Logout.
	CheckAuth(ctx context.Context)

	State() domain.SessionState
	Token() string
	Subscribe(fn func(domain.SessionState)) (cancel func())
}
