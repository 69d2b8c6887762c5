package state

import "sync"

// Status is the loading/error pair of one domain. An empty Err means no error.
type Status struct {
	mu      sync.RWMutex
	loading bool
	err     string
}

// SetLoading sets the loading flag.
func (s *Status) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// SetError records msg; "" clears it.
func (s *Status) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
}

// Loading reports the loading flag.
func (s *Status) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the current error message.
func (s *Status) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Reset restores loading=false and no error.
func (s *Status) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.err = ""
}
