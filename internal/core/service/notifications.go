package service

import (
	"github.com/google/uuid"

	"github.com/repairdesk/dashboard-state/internal/core/domain"
	"github.com/repairdesk/dashboard-state/internal/metrics"
)

// AddNotification queues n and returns its generated id. When the resolved
// duration is non-zero the notification removes itself once it elapses; the
// timer is stopped if the notification goes away earlier.
func (s *InteractionStore) AddNotification(in domain.NotificationInput) string {
	id := newNotificationID()
	d := s.opts.notificationDuration
	if in.Duration != nil {
		d = *in.Duration
	}

	n := domain.Notification{
		ID:        id,
		Kind:      in.Kind,
		Title:     in.Title,
		Message:   in.Message,
		Duration:  d,
		Action:    in.Action,
		CreatedAt: s.clock.Now(),
	}
	s.mutate(func(st *domain.InteractionState) {
		st.Notifications = append(st.Notifications, n)
	})
	metrics.NotificationsAddedTotal.WithLabelValues(string(in.Kind)).Inc()

	if d == 0 {
		return id
	}

	timer := s.clock.AfterFunc(d, func() { s.expire(id) })

	// The timer may already have fired, or the notification may have been
	// removed, between scheduling and here.
	s.mu.Lock()
	if s.indexOfNotificationLocked(id) >= 0 {
		s.timers[id] = timer
		s.mu.Unlock()
		return id
	}
	s.mu.Unlock()
	timer.Stop()
	return id
}

// RemoveNotification drops the notification with id. Removing an id that is
// already gone is a no-op.
func (s *InteractionStore) RemoveNotification(id string) {
	s.remove(id)
}

// Notification looks up a queued notification.
func (s *InteractionStore) Notification(id string) (domain.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOfNotificationLocked(id); idx >= 0 {
		return s.state.Notifications[idx], true
	}
	return domain.Notification{}, false
}

// ClearNotifications empties the queue and stops every pending timer.
func (s *InteractionStore) ClearNotifications() {
	s.mu.Lock()
	pending := s.takeTimersLocked()
	s.state.Notifications = nil
	s.subs.enqueue(s.copyStateLocked())
	s.mu.Unlock()

	stopAll(pending)
	s.subs.flush()
}

func (s *InteractionStore) Success(message string, title ...string) string {
	return s.AddNotification(notificationInput(domain.NotificationSuccess, message, title))
}

func (s *InteractionStore) Error(message string, title ...string) string {
	return s.AddNotification(notificationInput(domain.NotificationError, message, title))
}

func (s *InteractionStore) Warning(message string, title ...string) string {
	return s.AddNotification(notificationInput(domain.NotificationWarning, message, title))
}

func (s *InteractionStore) Info(message string, title ...string) string {
	return s.AddNotification(notificationInput(domain.NotificationInfo, message, title))
}

func notificationInput(kind domain.NotificationKind, message string, title []string) domain.NotificationInput {
	in := domain.NotificationInput{Kind: kind, Message: message}
	if len(title) > 0 {
		in.Title = title[0]
	}
	return in
}

func (s *InteractionStore) expire(id string) {
	if s.remove(id) {
		metrics.NotificationsExpiredTotal.Inc()
		s.log.Debug().Str("notification_id", id).Msg("notification expired")
	}
}

func (s *InteractionStore) remove(id string) bool {
	s.mu.Lock()
	idx := s.indexOfNotificationLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	ns := s.state.Notifications
	s.state.Notifications = append(ns[:idx:idx], ns[idx+1:]...)
	timer := s.timers[id]
	delete(s.timers, id)
	s.subs.enqueue(s.copyStateLocked())
	s.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	s.subs.flush()
	return true
}

func (s *InteractionStore) indexOfNotificationLocked(id string) int {
	for i, n := range s.state.Notifications {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// newNotificationID returns a time-ordered, collision-resistant id.
func newNotificationID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
