package service

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/repairdesk/dashboard-state/internal/core/domain"
	"github.com/repairdesk/dashboard-state/internal/core/ports"
)

// InteractionDeps are the collaborators an InteractionStore is built from.
// A nil Clock means the real clock.
type InteractionDeps struct {
	Clock clockwork.Clock
	Log   zerolog.Logger
}

// InteractionOption tweaks an InteractionStore at construction.
type InteractionOption func(*interactionOptions)

type interactionOptions struct {
	loadingText          string
	notificationDuration time.Duration
}

// WithLoadingText overrides the overlay text used when none is given.
func WithLoadingText(text string) InteractionOption {
	return func(o *interactionOptions) {
		if text != "" {
			o.loadingText = text
		}
	}
}

// WithNotificationDuration overrides the default notification lifetime.
func WithNotificationDuration(d time.Duration) InteractionOption {
	return func(o *interactionOptions) {
		if d > 0 {
			o.notificationDuration = d
		}
	}
}

// InteractionStore implements ports.InteractionStore. It is never persisted
// and starts from defaults on every construction.
type InteractionStore struct {
	mu    sync.Mutex
	state domain.InteractionState
	// timers holds the pending auto-removal for each queued notification.
	timers map[string]clockwork.Timer

	clock clockwork.Clock
	log   zerolog.Logger
	opts  interactionOptions
	subs  subscribers[domain.InteractionState]
}

var _ ports.InteractionStore = (*InteractionStore)(nil)

func NewInteractionStore(deps InteractionDeps, opts ...InteractionOption) *InteractionStore {
	o := interactionOptions{
		loadingText:          domain.DefaultLoadingText,
		notificationDuration: domain.DefaultNotificationDuration,
	}
	for _, opt := range opts {
		opt(&o)
	}

	clk := deps.Clock
	if clk == nil {
		clk = clockwork.NewRealClock()
	}

	return &InteractionStore{
		state:  defaultInteractionState(),
		timers: make(map[string]clockwork.Timer),
		clock:  clk,
		log:    deps.Log,
		opts:   o,
	}
}

func defaultInteractionState() domain.InteractionState {
	return domain.InteractionState{Theme: domain.ThemeDark}
}

// ── Sidebar ───────────────────────────────────────────────────────────────────

func (s *InteractionStore) ToggleSidebar() {
	s.mutate(func(st *domain.InteractionState) { st.SidebarOpen = !st.SidebarOpen })
}

func (s *InteractionStore) SetSidebarOpen(open bool) {
	s.mutate(func(st *domain.InteractionState) { st.SidebarOpen = open })
}

// ── Global loading ────────────────────────────────────────────────────────────

// SetGlobalLoading sets the single app-wide overlay. Without text the default
// loading text is used. There is no reference counting: the last call wins.
func (s *InteractionStore) SetGlobalLoading(loading bool, text ...string) {
	t := s.opts.loadingText
	if len(text) > 0 && text[0] != "" {
		t = text[0]
	}
	s.mutate(func(st *domain.InteractionState) {
		st.GlobalLoading = loading
		st.LoadingText = t
	})
}

// ── Theme ─────────────────────────────────────────────────────────────────────

func (s *InteractionStore) ToggleTheme() {
	s.mutate(func(st *domain.InteractionState) { st.Theme = st.Theme.Toggle() })
}

// SetTheme ignores values other than dark and light.
func (s *InteractionStore) SetTheme(theme domain.Theme) {
	if !theme.Valid() {
		s.log.Debug().Str("theme", string(theme)).Msg("ignoring unknown theme")
		return
	}
	s.mutate(func(st *domain.InteractionState) { st.Theme = theme })
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

// State returns a copy of the current state.
func (s *InteractionStore) State() domain.InteractionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyStateLocked()
}

// Subscribe registers fn to receive the state after every mutation.
func (s *InteractionStore) Subscribe(fn func(domain.InteractionState)) (cancel func()) {
	return s.subs.add(fn)
}

// Reset returns the store to its defaults. It is the only operation that
// drops modal entries.
func (s *InteractionStore) Reset() {
	s.mu.Lock()
	pending := s.takeTimersLocked()
	s.state = defaultInteractionState()
	s.subs.enqueue(s.copyStateLocked())
	s.mu.Unlock()

	stopAll(pending)
	s.subs.flush()
}

// Close stops every pending notification timer.
func (s *InteractionStore) Close() {
	s.mu.Lock()
	pending := s.takeTimersLocked()
	s.mu.Unlock()

	stopAll(pending)
}

func (s *InteractionStore) mutate(fn func(st *domain.InteractionState)) {
	s.mu.Lock()
	fn(&s.state)
	s.subs.enqueue(s.copyStateLocked())
	s.mu.Unlock()

	s.subs.flush()
}

func (s *InteractionStore) copyStateLocked() domain.InteractionState {
	st := s.state
	st.Modals = append([]domain.ModalEntry(nil), s.state.Modals...)
	st.Notifications = append([]domain.Notification(nil), s.state.Notifications...)
	return st
}

func (s *InteractionStore) takeTimersLocked() []clockwork.Timer {
	pending := make([]clockwork.Timer, 0, len(s.timers))
	for _, t := range s.timers {
		pending = append(pending, t)
	}
	s.timers = make(map[string]clockwork.Timer)
	return pending
}

func stopAll(timers []clockwork.Timer) {
	for _, t := range timers {
		t.Stop()
	}
}
