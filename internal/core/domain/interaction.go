package domain

// DefaultLoadingText is shown on the global overlay when no text is given.
const DefaultLoadingText = "Загрузка..."

// Theme is the dashboard colour scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool { return t == ThemeDark || t == ThemeLight }

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// InteractionState is a read-only copy of the Interaction Store.
type InteractionState struct {
	SidebarOpen   bool
	Modals        []ModalEntry
	GlobalLoading bool
	LoadingText   string
	Notifications []Notification
	Theme         Theme
}

// Modal returns the entry with the given id, if one was ever opened.
func (s InteractionState) Modal(id string) (ModalEntry, bool) {
	for _, m := range s.Modals {
		if m.ID == id {
			return m, true
		}
	}
	return ModalEntry{}, false
}
