// Package navigation provides ports.Navigator implementations for hosts that
// have no browser router.
package navigation

import (
	"sync"

	"github.com/rs/zerolog"
)

// Recorder logs every navigation request and remembers the latest target.
type Recorder struct {
	log zerolog.Logger

	mu      sync.Mutex
	current string
	history []string
}

func NewRecorder(log zerolog.Logger, initial string) *Recorder {
	return &Recorder{log: log.With().Str("component", "navigator").Logger(), current: initial}
}

func (r *Recorder) NavigateTo(path string) {
	r.mu.Lock()
	from := r.current
	r.current = path
	r.history = append(r.history, path)
	r.mu.Unlock()

	r.log.Info().Str("from", from).Str("to", path).Msg("navigate")
}

// Current returns the latest target.
func (r *Recorder) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns every target in request order.
func (r *Recorder) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}
