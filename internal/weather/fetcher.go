package weather

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultPollInterval is the steady delay between fetch cycles.
const DefaultPollInterval = 600 * time.Second

// FetcherConfig controls polling cadence and retry policy.
type FetcherConfig struct {
	PollInterval time.Duration
	BackoffFloor time.Duration
	BackoffCap   time.Duration

	// Store, when set, receives every published snapshot.
	Store Store
	// Clock defaults to the real clock.
	Clock clockwork.Clock
}

// Stats summarises fetcher activity since start.
type Stats struct {
	Attempts    uint64        `json:"attempts"`
	Successes   uint64        `json:"successes"`
	Incomplete  uint64        `json:"incomplete"`
	Failures    uint64        `json:"failures"`
	LastSuccess time.Time     `json:"lastSuccess"`
	LastError   string        `json:"lastError,omitempty"`
	Backoff     time.Duration `json:"backoff"`
}

// Fetcher polls a Provider and publishes complete snapshots into a State.
// It is the only writer of the State.
type Fetcher struct {
	provider Provider
	state    *State
	store    Store
	clock    clockwork.Clock
	interval time.Duration
	backoff  *Backoff

	mu    sync.Mutex
	stats Stats
}

// NewFetcher creates a Fetcher publishing into state.
func NewFetcher(provider Provider, state *State, cfg FetcherConfig) *Fetcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Fetcher{
		provider: provider,
		state:    state,
		store:    cfg.Store,
		clock:    cfg.Clock,
		interval: cfg.PollInterval,
		backoff:  NewBackoff(cfg.BackoffFloor, cfg.BackoffCap),
	}
}

// Run polls until ctx is cancelled. Cancellation is observed between cycles
// and while waiting; a request already in flight runs to completion or to its
// own timeout first.
func (f *Fetcher) Run(ctx context.Context) error {
	slog.Info("fetcher: starting",
		"provider", f.provider.Name(),
		"interval", f.interval,
		"backoff_floor", f.backoff.Floor,
		"backoff_cap", f.backoff.Cap,
	)
	for {
		if ctx.Err() != nil {
			slog.Info("fetcher: stopped")
			return nil
		}

		delay := f.Cycle(context.WithoutCancel(ctx))

		select {
		case <-ctx.Done():
			slog.Info("fetcher: stopped")
			return nil
		case <-f.clock.After(delay):
		}
	}
}

// Cycle performs one fetch attempt and returns how long to wait before the
// next one.
func (f *Fetcher) Cycle(ctx context.Context) time.Duration {
	f.mu.Lock()
	f.stats.Attempts++
	f.mu.Unlock()

	snapshot, err := f.provider.Fetch(ctx)
	switch {
	case err == nil:
		if snapshot.FetchedAt.IsZero() {
			snapshot.FetchedAt = f.clock.Now().UTC()
		}
		f.state.Publish(snapshot)
		if f.store != nil {
			f.store.SaveSnapshot(snapshot)
		}
		f.backoff.Reset()

		f.mu.Lock()
		f.stats.Successes++
		f.stats.LastSuccess = snapshot.FetchedAt
		f.stats.LastError = ""
		f.stats.Backoff = f.backoff.Current()
		f.mu.Unlock()

		slog.Info("fetcher: weather updated",
			"temperature", snapshot.Temperature,
			"feels_like", snapshot.FeelsLike,
			"humidity", snapshot.Humidity,
			"condition", snapshot.Condition,
			"sunrise", time.Unix(snapshot.Sunrise, 0).Format("15:04"),
			"sunset", time.Unix(snapshot.Sunset, 0).Format("15:04"),
		)
		return f.interval

	case errors.Is(err, ErrIncomplete):
		// The service answered; keep the last good snapshot and poll again on
		// the normal schedule.
		f.mu.Lock()
		f.stats.Incomplete++
		f.stats.LastError = err.Error()
		f.mu.Unlock()

		slog.Debug("fetcher: discarding incomplete response", "error", err, "retry_in", f.interval)
		return f.interval

	default:
		delay := f.backoff.Fail()

		f.mu.Lock()
		f.stats.Failures++
		f.stats.LastError = err.Error()
		f.stats.Backoff = f.backoff.Current()
		f.mu.Unlock()

		slog.Warn("fetcher: request failed", "error", err, "retry_in", delay)
		return delay
	}
}

// Stats returns a copy of the current counters.
func (f *Fetcher) Stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

// Interval returns the steady poll interval.
func (f *Fetcher) Interval() time.Duration {
	return f.interval
}
