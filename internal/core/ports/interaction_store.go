package ports

import "github.com/repairdesk/dashboard-state/internal/core/domain"

// ModalHandle is the per-id view of a modal entry. It resolves to a closed,
// payload-less modal when nothing was opened under the id yet.
type ModalHandle interface {
	IsOpen() bool
	Payload() domain.ModalPayload
	Open(payload domain.ModalPayload)
	Close()
}

// InteractionStore owns transient UI state. It is never persisted.
type InteractionStore interface {
	ToggleSidebar()
	SetSidebarOpen(open bool)

	OpenModal(id string, payload domain.ModalPayload)
	CloseModal(id string)
	CloseAllModals()
	Modal(id string) ModalHandle

	SetGlobalLoading(loading bool, text ...string)

	AddNotification(n domain.NotificationInput) string
	RemoveNotification(id string)
	Notification(id string) (domain.Notification, bool)
	ClearNotifications()
	Success(message string, title ...string) string
	Error(message string, title ...string) string
	Warning(message string, title ...string) string
	Info(message string, title ...string) string

	ToggleTheme()
	SetTheme(theme domain.Theme)

	State() domain.InteractionState
	Subscribe(fn func(domain.InteractionState)) (cancel func())
	Reset()
}
