package service

import (
	"github.com/repairdesk/dashboard-state/internal/core/domain"
	"github.com/repairdesk/dashboard-state/internal/core/ports"
	"github.com/repairdesk/dashboard-state/internal/metrics"
)

// OpenModal upserts the entry for id: any existing entry is dropped and a
// fresh open entry carrying payload is appended at the end.
func (s *InteractionStore) OpenModal(id string, payload domain.ModalPayload) {
	kind := "none"
	if payload != nil {
		kind = payload.ModalKind()
	}
	metrics.ModalOpensTotal.WithLabelValues(kind).Inc()

	s.mutate(func(st *domain.InteractionState) {
		modals := make([]domain.ModalEntry, 0, len(st.Modals)+1)
		for _, m := range st.Modals {
			if m.ID != id {
				modals = append(modals, m)
			}
		}
		st.Modals = append(modals, domain.ModalEntry{ID: id, IsOpen: true, Payload: payload})
	})
}

// CloseModal marks the entry closed in place. The payload stays readable so
// a closing animation can still render it. Unknown ids are ignored.
func (s *InteractionStore) CloseModal(id string) {
	s.mu.Lock()
	idx := -1
	for i, m := range s.state.Modals {
		if m.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.state.Modals[idx].IsOpen = false
	s.subs.enqueue(s.copyStateLocked())
	s.mu.Unlock()

	s.subs.flush()
}

// CloseAllModals marks every entry closed in place.
func (s *InteractionStore) CloseAllModals() {
	s.mutate(func(st *domain.InteractionState) {
		for i := range st.Modals {
			st.Modals[i].IsOpen = false
		}
	})
}

// Modal returns a handle bound to id. The entry does not need to exist.
func (s *InteractionStore) Modal(id string) ports.ModalHandle {
	return modalHandle{store: s, id: id}
}

type modalHandle struct {
	store *InteractionStore
	id    string
}

func (h modalHandle) entry() (domain.ModalEntry, bool) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	for _, m := range h.store.state.Modals {
		if m.ID == h.id {
			return m, true
		}
	}
	return domain.ModalEntry{}, false
}

func (h modalHandle) IsOpen() bool {
	m, _ := h.entry()
	return m.IsOpen
}

func (h modalHandle) Payload() domain.ModalPayload {
	m, _ := h.entry()
	return m.Payload
}

func (h modalHandle) Open(payload domain.ModalPayload) { h.store.OpenModal(h.id, payload) }

func (h modalHandle) Close() { h.store.CloseModal(h.id) }
