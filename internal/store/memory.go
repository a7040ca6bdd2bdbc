package store

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-clock/internal/weather"
)

var (
	// ErrNotFound is returned when no snapshot matches the request.
	ErrNotFound = errors.New("no weather data recorded")
)

// History is a concurrency-safe, bounded record of published snapshots,
// ordered by FetchedAt.
type History struct {
	mu sync.RWMutex

	snapshots []weather.Snapshot

	// retention configuration
	maxHistory int           // max number of snapshots kept
	maxAge     time.Duration // optional max age for snapshots

	clock clockwork.Clock
}

// NewHistory creates a History with optional limits.
// If maxHistory is <= 0, it is treated as unlimited. Age retention is
// measured on clock, which should be the one stamping FetchedAt; nil means
// the real clock.
func NewHistory(maxHistory int, maxAge time.Duration, clock clockwork.Clock) *History {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &History{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		clock:      clock,
	}
}

// SaveSnapshot appends a snapshot and enforces retention.
func (h *History) SaveSnapshot(snapshot weather.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.snapshots = append(h.snapshots, snapshot)

	// Enforce retention by count.
	if h.maxHistory > 0 && len(h.snapshots) > h.maxHistory {
		over := len(h.snapshots) - h.maxHistory
		h.snapshots = append([]weather.Snapshot(nil), h.snapshots[over:]...)
	}

	// Enforce retention by age. The newest snapshot is always kept.
	if h.maxAge > 0 {
		cutoff := h.clock.Now().Add(-h.maxAge)
		i := 0
		for ; i < len(h.snapshots)-1; i++ {
			if !h.snapshots[i].FetchedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			h.snapshots = h.snapshots[i:]
		}
	}
}

// GetLatest returns the most recent snapshot.
func (h *History) GetLatest() (weather.Snapshot, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.snapshots) == 0 {
		return weather.Snapshot{}, ErrNotFound
	}
	return h.snapshots[len(h.snapshots)-1], nil
}

// GetRange returns all snapshots fetched between from and to (inclusive).
func (h *History) GetRange(from, to time.Time) ([]weather.Snapshot, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var result []weather.Snapshot
	for _, snap := range h.snapshots {
		if !snap.FetchedAt.Before(from) && !snap.FetchedAt.After(to) {
			result = append(result, snap)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// Len returns the number of retained snapshots.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.snapshots)
}
