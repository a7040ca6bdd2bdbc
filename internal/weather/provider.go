package weather

import (
	"context"
	"errors"
	"math"
	"time"
)

// ErrIncomplete marks a response that arrived but could not be turned into a
// full Snapshot: a required field is absent or malformed, or the service
// rejected the request outright. The fetcher retries these at the steady
// interval instead of backing off.
var ErrIncomplete = errors.New("incomplete weather response")

// Provider abstracts the remote weather source.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) (Snapshot, error)
}

// Store records published snapshots for later inspection.
type Store interface {
	SaveSnapshot(snapshot Snapshot)
	GetLatest() (Snapshot, error)
	GetRange(from, to time.Time) ([]Snapshot, error)
}

func round(v float64) int {
	return int(math.Round(v))
}
