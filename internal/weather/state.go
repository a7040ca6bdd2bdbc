package weather

import (
	"sync"
)

// State is the cell shared between the fetcher and the renderer. It holds
// the latest snapshot; Publish replaces it whole and Read returns a copy, so
// a reader never sees fields from two different fetch cycles.
type State struct {
	mu      sync.RWMutex
	current Snapshot
	version uint64
}

// NewState returns a State holding the zero Snapshot.
func NewState() *State {
	return &State{}
}

// Publish installs snapshot as the current value.
func (s *State) Publish(snapshot Snapshot) {
	s.mu.Lock()
	s.current = snapshot
	s.version++
	s.mu.Unlock()
}

// Read returns the current snapshot.
func (s *State) Read() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Version counts successful publishes. It is zero until the first one.
func (s *State) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
