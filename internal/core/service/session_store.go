package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/repairdesk/dashboard-state/internal/core/domain"
	"github.com/repairdesk/dashboard-state/internal/core/ports"
	"github.com/repairdesk/dashboard-state/internal/metrics"
)

var errEmptyAuthResponse = errors.New("auth boundary returned no user or token")

// SessionDeps are the collaborators a SessionStore is built from.
// Unauthorized is optional.
type SessionDeps struct {
	Gateway      ports.AuthGateway
	Repository   ports.SessionRepository
	Navigator    ports.Navigator
	Unauthorized ports.UnauthorizedSource
	Log          zerolog.Logger
}

// SessionOption tweaks a SessionStore at construction.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	loginRoute     string
	loginErrorText string
}

// WithLoginRoute overrides where Logout navigates to.
func WithLoginRoute(path string) SessionOption {
	return func(o *sessionOptions) {
		if path != "" {
			o.loginRoute = path
		}
	}
}

// WithLoginErrorText overrides the message shown when the server gives none.
func WithLoginErrorText(text string) SessionOption {
	return func(o *sessionOptions) {
		if text != "" {
			o.loginErrorText = text
		}
	}
}

// SessionStore implements ports.SessionStore.
//
// Every mutation runs to completion under mu. Boundary calls are made with
// mu released, so the interim IsLoading state is observable. generation is
// bumped whenever the signed-in identity is replaced or dropped; a profile
// check that started under an older generation is discarded.
type SessionStore struct {
	mu         sync.Mutex
	state      domain.SessionState
	generation uint64

	// persistMu orders snapshot writes so the last write always reflects the
	// latest state.
	persistMu sync.Mutex

	gateway  ports.AuthGateway
	repo     ports.SessionRepository
	nav      ports.Navigator
	log      zerolog.Logger
	validate *validator.Validate
	opts     sessionOptions

	subs               subscribers[domain.SessionState]
	cancelUnauthorized func()
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore reads the repository once to seed user, token and
// authentication status. Loading and error flags always start cleared. A
// missing or unreadable snapshot starts the store signed out.
func NewSessionStore(ctx context.Context, deps SessionDeps, opts ...SessionOption) *SessionStore {
	o := sessionOptions{
		loginRoute:     domain.LoginRoute,
		loginErrorText: domain.DefaultLoginError,
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &SessionStore{
		gateway:  deps.Gateway,
		repo:     deps.Repository,
		nav:      deps.Navigator,
		log:      deps.Log,
		validate: validator.New(),
		opts:     o,
	}

	snap, err := s.repo.Load(ctx)
	switch {
	case err == nil:
		s.state = snap.Restore()
		s.log.Debug().
			Bool("authenticated", s.state.IsAuthenticated).
			Bool("has_token", s.state.Token != "").
			Msg("session restored")
	case errors.Is(err, domain.ErrSnapshotNotFound):
		s.log.Debug().Msg("no persisted session")
	default:
		s.log.Warn().Err(err).Msg("failed to restore session, starting signed out")
	}

	if deps.Unauthorized != nil {
		s.cancelUnauthorized = deps.Unauthorized.OnUnauthorized(func() {
			metrics.SessionInvalidationsTotal.WithLabelValues("unauthorized_event").Inc()
			s.log.Info().Msg("unauthorized response seen, ending session")
			s.Logout(context.Background())
		})
	}

	return s
}

// Close detaches the store from the unauthorized event source.
func (s *SessionStore) Close() {
	if s.cancelUnauthorized != nil {
		s.cancelUnauthorized()
	}
}

// Login authenticates against the boundary. On failure the display message is
// recorded in Error and the failure is returned so the caller can block
// navigation. Concurrent calls are not deduplicated; the last to settle wins.
func (s *SessionStore) Login(ctx context.Context, creds domain.Credentials) error {
	s.mutate(func(st *domain.SessionState) {
		st.IsLoading = true
		st.Error = ""
	})

	if err := s.validate.Struct(creds); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		s.failLogin("")
		return fmt.Errorf("login: %w: %v", domain.ErrInvalidCredentials, err)
	}

	res, err := s.gateway.Login(ctx, creds)
	if err == nil && (res == nil || res.User == nil || res.AccessToken == "") {
		err = errEmptyAuthResponse
	}
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
		s.log.Info().Err(err).Str("username", creds.Username).Msg("login rejected")
		s.failLogin(ports.DisplayMessage(err))
		return fmt.Errorf("login: %w", err)
	}

	s.mutate(func(st *domain.SessionState) {
		st.User = res.User.Clone()
		st.Token = res.AccessToken
		st.IsAuthenticated = true
		st.IsLoading = false
		st.Error = ""
		s.generation++
	})
	s.persist(ctx)

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.log.Info().
		Int64("user_id", res.User.ID).
		Str("username", res.User.Username).
		Str("role", string(res.User.Role)).
		Msg("logged in")
	return nil
}

func (s *SessionStore) failLogin(message string) {
	if message == "" {
		message = s.opts.loginErrorText
	}
	s.mutate(func(st *domain.SessionState) {
		st.Error = message
		st.IsLoading = false
	})
}

// Logout drops the session and always navigates to the login route, even when
// nothing was signed in.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mutate(func(st *domain.SessionState) {
		st.User = nil
		st.Token = ""
		st.IsAuthenticated = false
		st.Error = ""
		s.generation++
	})
	s.persist(ctx)

	s.log.Info().Str("redirect", s.opts.loginRoute).Msg("logged out")
	s.nav.NavigateTo(s.opts.loginRoute)
}

// SetUser replaces the user record after an out-of-band profile update.
// Clearing the user also clears IsAuthenticated.
func (s *SessionStore) SetUser(ctx context.Context, user *domain.User) {
	s.mutate(func(st *domain.SessionState) {
		st.User = user.Clone()
		if st.User == nil {
			st.IsAuthenticated = false
		}
	})
	s.persist(ctx)
}

// ClearError clears the last login error.
func (s *SessionStore) ClearError() {
	s.mutate(func(st *domain.SessionState) { st.Error = "" })
}

// CheckAuth revalidates a restored token. Without a token it marks the store
// unauthenticated without touching the network. Any boundary failure ends the
// session through Logout.
func (s *SessionStore) CheckAuth(ctx context.Context) {
	s.mu.Lock()
	token := s.state.Token
	gen := s.generation
	if token == "" {
		s.state.IsAuthenticated = false
		s.subs.enqueue(s.copyStateLocked())
		s.mu.Unlock()

		s.subs.flush()
		s.persist(ctx)
		return
	}
	s.mu.Unlock()

	user, err := s.gateway.FetchProfile(ctx, token)
	if err == nil && user == nil {
		err = errEmptyAuthResponse
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		metrics.StaleAuthChecksTotal.Inc()
		s.log.Debug().Msg("discarding auth check result after session change")
		return
	}
	if err != nil {
		s.mu.Unlock()
		metrics.SessionInvalidationsTotal.WithLabelValues("check_auth_failed").Inc()
		s.log.Info().Err(err).Msg("session check failed, logging out")
		s.Logout(ctx)
		return
	}
	s.state.User = user.Clone()
	s.state.IsAuthenticated = true
	s.subs.enqueue(s.copyStateLocked())
	s.mu.Unlock()

	s.subs.flush()
	s.persist(ctx)
	s.log.Debug().Int64("user_id", user.ID).Msg("session revalidated")
}

// State returns a copy of the current state.
func (s *SessionStore) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyStateLocked()
}

// Token returns the current access token, or "" when signed out.
func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// Subscribe registers fn to receive the state after every mutation.
func (s *SessionStore) Subscribe(fn func(domain.SessionState)) (cancel func()) {
	return s.subs.add(fn)
}

func (s *SessionStore) mutate(fn func(st *domain.SessionState)) {
	s.mu.Lock()
	fn(&s.state)
	s.subs.enqueue(s.copyStateLocked())
	s.mu.Unlock()

	s.subs.flush()
}

func (s *SessionStore) copyStateLocked() domain.SessionState {
	st := s.state
	st.User = s.state.User.Clone()
	return st
}

// persist writes the persisted subset of the current state. Failures are
// logged and never fail the calling operation.
func (s *SessionStore) persist(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	snap := s.State().Snapshot()
	if err := s.repo.Save(ctx, snap); err != nil {
		metrics.SnapshotWritesTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Msg("failed to persist session")
		return
	}
	metrics.SnapshotWritesTotal.WithLabelValues("ok").Inc()
}
