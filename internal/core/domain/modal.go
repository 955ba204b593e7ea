package domain

// ModalPayload is the data a modal was opened with. Each kind of dialog
// declares its own variant; callers outside this package may add more.
type ModalPayload interface {
	ModalKind() string
}

// ConfirmDeletePayload backs the generic "are you sure?" dialog.
type ConfirmDeletePayload struct {
	Entity string
	RowID  int64
}

func (ConfirmDeletePayload) ModalKind() string { return "confirm-delete" }

// RequestDetailsPayload opens a repair request card.
type RequestDetailsPayload struct {
	RequestID string
}

func (RequestDetailsPayload) ModalKind() string { return "request-details" }

// ClientFormPayload opens the client editor. ClientID 0 means a new client.
type ClientFormPayload struct {
	ClientID int64
}

func (ClientFormPayload) ModalKind() string { return "client-form" }

// UserFormPayload opens the staff editor. UserID 0 means a new user.
type UserFormPayload struct {
	UserID int64
}

func (UserFormPayload) ModalKind() string { return "user-form" }

// ModalEntry is the retained record of one dialog. Closing an entry keeps
// its payload around until the next open with the same ID.
type ModalEntry struct {
	ID      string
	IsOpen  bool
	Payload ModalPayload
}

// PayloadAs returns p as the concrete variant T.
func PayloadAs[T ModalPayload](p ModalPayload) (T, bool) {
	v, ok := p.(T)
	return v, ok
}
