package service

import "sync"

// subscribers is a registration-ordered list of state listeners. Listeners
// are always invoked without the owning store's lock held.
//
// States are queued with enqueue while the store lock is held, so the queue
// follows mutation order, and delivered by flush after the lock is released.
// Only one caller delivers at a time. A flush that finds delivery under way,
// including one made from inside a listener, leaves its states to the active
// deliverer, so every listener sees states in mutation order and the last
// state it sees is the current one.
type subscribers[S any] struct {
	mu       sync.Mutex
	nextID   int
	fns      []subscriber[S]
	pending  []S
	draining bool
}

type subscriber[S any] struct {
	id int
	fn func(S)
}

func (s *subscribers[S]) add(fn func(S)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.fns = append(s.fns, subscriber[S]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.fns {
				if sub.id == id {
					s.fns = append(s.fns[:i:i], s.fns[i+1:]...)
					return
				}
			}
		})
	}
}

// enqueue must be called with the owning store's lock held.
func (s *subscribers[S]) enqueue(state S) {
	s.mu.Lock()
	s.pending = append(s.pending, state)
	s.mu.Unlock()
}

func (s *subscribers[S]) flush() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()

	// A panicking listener must not wedge delivery for good.
	defer func() {
		s.mu.Lock()
		s.draining = false
		s.mu.Unlock()
	}()

	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		state := s.pending[0]
		var zero S
		s.pending[0] = zero
		s.pending = s.pending[1:]
		fns := make([]subscriber[S], len(s.fns))
		copy(fns, s.fns)
		s.mu.Unlock()

		for _, sub := range fns {
			sub.fn(state)
		}
	}
}
