package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-clock/internal/weather"
)

// StatsSource exposes fetcher counters.
type StatsSource interface {
	Stats() weather.Stats
}

// Status is a point-in-time health view of the fetch pipeline.
type Status struct {
	weather.Stats

	// Age is the time since the last successful fetch, or since the
	// reporter started when there has been none.
	Age   time.Duration `json:"age"`
	Stale bool          `json:"stale"`
}

// Reporter periodically logs fetch statistics and warns when the published
// weather has not been refreshed for longer than the staleness limit.
type Reporter struct {
	scheduler  *gocron.Scheduler
	source     StatsSource
	interval   time.Duration
	staleAfter time.Duration
	clock      clockwork.Clock
	started    time.Time

	mu       sync.Mutex
	wasStale bool
}

// NewReporter creates a Reporter. A nil clock means the real clock.
func NewReporter(source StatsSource, interval, staleAfter time.Duration, clock clockwork.Clock) *Reporter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Reporter{
		scheduler:  gocron.NewScheduler(time.UTC),
		source:     source,
		interval:   interval,
		staleAfter: staleAfter,
		clock:      clock,
		started:    clock.Now(),
	}
}

// Start schedules the report job and starts the underlying scheduler. The
// first report runs immediately.
func (r *Reporter) Start() error {
	if _, err := r.scheduler.Every(r.interval).Do(r.report); err != nil {
		return err
	}
	r.scheduler.StartAsync()
	slog.Info("scheduler: status reporter started", "interval", r.interval, "stale_after", r.staleAfter)
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (r *Reporter) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}

// Status computes the current status.
func (r *Reporter) Status() Status {
	stats := r.source.Stats()
	since := stats.LastSuccess
	if since.IsZero() {
		since = r.started
	}
	age := r.clock.Since(since)
	return Status{
		Stats: stats,
		Age:   age,
		Stale: r.staleAfter > 0 && age > r.staleAfter,
	}
}

func (r *Reporter) report() {
	st := r.Status()
	slog.Info("scheduler: fetch status",
		"attempts", st.Attempts,
		"successes", st.Successes,
		"incomplete", st.Incomplete,
		"failures", st.Failures,
		"backoff", st.Backoff,
		"age", st.Age.Round(time.Second),
	)

	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case st.Stale:
		slog.Warn("scheduler: weather data is stale",
			"age", st.Age.Round(time.Second),
			"limit", r.staleAfter,
			"last_error", st.LastError,
		)
	case r.wasStale:
		slog.Info("scheduler: weather data fresh again")
	}
	r.wasStale = st.Stale
}
