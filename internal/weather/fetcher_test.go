package weather

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchResult struct {
	snapshot Snapshot
	err      error
}

// scriptedProvider replays results in order and repeats the last one.
type scriptedProvider struct {
	mu      sync.Mutex
	results []fetchResult
	calls   int
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Fetch(ctx context.Context) (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := min(p.calls, len(p.results)-1)
	p.calls++
	return p.results[i].snapshot, p.results[i].err
}

func (p *scriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type recordingStore struct {
	saved []Snapshot
}

func (s *recordingStore) SaveSnapshot(snapshot Snapshot) { s.saved = append(s.saved, snapshot) }
func (s *recordingStore) GetLatest() (Snapshot, error)   { return Snapshot{}, nil }
func (s *recordingStore) GetRange(from, to time.Time) ([]Snapshot, error) {
	return s.saved, nil
}

var errTransport = errors.New("dial tcp: connection refused")

func ok(temp int) fetchResult {
	return fetchResult{snapshot: Snapshot{
		Temperature: temp,
		FeelsLike:   temp - 2,
		Humidity:    40,
		Condition:   "Clear",
		Description: "clear sky",
		Sunrise:     1000,
		Sunset:      2000,
		Unit:        Fahrenheit,
	}}
}

func newTestFetcher(p Provider, store Store) (*Fetcher, *State, clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	state := NewState()
	f := NewFetcher(p, state, FetcherConfig{
		PollInterval: 600 * time.Second,
		BackoffFloor: 5 * time.Second,
		BackoffCap:   300 * time.Second,
		Store:        store,
		Clock:        clock,
	})
	return f, state, clock
}

func TestFetcher_SuccessPublishesAndWaitsSteadyInterval(t *testing.T) {
	store := &recordingStore{}
	f, state, clock := newTestFetcher(&scriptedProvider{results: []fetchResult{ok(68)}}, store)

	delay := f.Cycle(context.Background())

	assert.Equal(t, 600*time.Second, delay)
	got := state.Read()
	assert.Equal(t, 68, got.Temperature)
	assert.Equal(t, "clear sky", got.Description)
	assert.Equal(t, clock.Now().UTC(), got.FetchedAt)
	require.Len(t, store.saved, 1)
	assert.Equal(t, got, store.saved[0])

	stats := f.Stats()
	assert.Equal(t, uint64(1), stats.Attempts)
	assert.Equal(t, uint64(1), stats.Successes)
	assert.Equal(t, 5*time.Second, stats.Backoff)
}

func TestFetcher_IncompleteKeepsPreviousSnapshot(t *testing.T) {
	p := &scriptedProvider{results: []fetchResult{
		ok(68),
		{err: fmt.Errorf("%w: missing sys.sunset", ErrIncomplete)},
	}}
	f, state, _ := newTestFetcher(p, nil)

	f.Cycle(context.Background())
	before := state.Read()

	delay := f.Cycle(context.Background())

	assert.Equal(t, 600*time.Second, delay, "incomplete responses use the steady interval")
	assert.Equal(t, before, state.Read())
	assert.Equal(t, uint64(1), state.Version())
	assert.Equal(t, uint64(1), f.Stats().Incomplete)
	assert.Contains(t, f.Stats().LastError, "sys.sunset")
}

func TestFetcher_TransportFailuresBackOff(t *testing.T) {
	p := &scriptedProvider{results: []fetchResult{{err: errTransport}}}
	f, state, _ := newTestFetcher(p, nil)

	var delays []time.Duration
	for i := 0; i < 3; i++ {
		delays = append(delays, f.Cycle(context.Background()))
	}

	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second}, delays)
	assert.Equal(t, Snapshot{}, state.Read())
	assert.Equal(t, uint64(3), f.Stats().Failures)
	assert.Equal(t, 40*time.Second, f.Stats().Backoff)
}

func TestFetcher_SuccessResetsBackoff(t *testing.T) {
	p := &scriptedProvider{results: []fetchResult{
		{err: errTransport},
		{err: errTransport},
		{err: errTransport},
		ok(50),
		{err: errTransport},
	}}
	f, _, _ := newTestFetcher(p, nil)

	for i := 0; i < 3; i++ {
		f.Cycle(context.Background())
	}
	assert.Equal(t, 600*time.Second, f.Cycle(context.Background()))
	assert.Equal(t, 5*time.Second, f.Cycle(context.Background()))
}

func TestFetcher_IncompleteDoesNotResetBackoff(t *testing.T) {
	p := &scriptedProvider{results: []fetchResult{
		{err: errTransport},
		{err: errTransport},
		{err: ErrIncomplete},
		{err: errTransport},
	}}
	f, _, _ := newTestFetcher(p, nil)

	f.Cycle(context.Background())
	f.Cycle(context.Background())
	f.Cycle(context.Background())
	assert.Equal(t, 20*time.Second, f.Cycle(context.Background()))
}

func TestFetcher_RunStopsOnCancel(t *testing.T) {
	p := &scriptedProvider{results: []fetchResult{ok(60)}}
	f, state, clock := newTestFetcher(p, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	clock.BlockUntil(1)
	assert.Equal(t, 60, state.Read().Temperature)

	clock.Advance(600 * time.Second)
	clock.BlockUntil(1)
	assert.Equal(t, 2, p.Calls())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("fetcher did not stop after cancel")
	}
	assert.Equal(t, 2, p.Calls())
}

func TestFetcher_RunWaitsBackoffAfterFailure(t *testing.T) {
	p := &scriptedProvider{results: []fetchResult{{err: errTransport}, ok(61)}}
	f, state, clock := newTestFetcher(p, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.Run(ctx) }()

	clock.BlockUntil(1)
	clock.Advance(4 * time.Second)
	assert.Equal(t, 1, p.Calls(), "still backing off")

	clock.Advance(time.Second)
	clock.BlockUntil(1)
	assert.Equal(t, 2, p.Calls())
	assert.Equal(t, 61, state.Read().Temperature)
}

// blockingProvider holds each request open until released.
type blockingProvider struct {
	started chan context.Context
	release chan struct{}
	errSeen chan error
}

func (p *blockingProvider) Name() string { return "blocking" }

func (p *blockingProvider) Fetch(ctx context.Context) (Snapshot, error) {
	p.started <- ctx
	<-p.release
	p.errSeen <- ctx.Err()
	return ok(55).snapshot, nil
}

func TestFetcher_CancelLetsInFlightRequestFinish(t *testing.T) {
	p := &blockingProvider{
		started: make(chan context.Context, 1),
		release: make(chan struct{}),
		errSeen: make(chan error, 1),
	}
	f, state, _ := newTestFetcher(p, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	reqCtx := <-p.started
	cancel()
	assert.NoError(t, reqCtx.Err(), "request context survives run cancellation")

	close(p.release)
	assert.NoError(t, <-p.errSeen)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("fetcher did not stop after the request finished")
	}
	assert.Equal(t, 55, state.Read().Temperature, "the finished request is still published")
}

func TestFetcher_IncompleteCycleLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	p := &scriptedProvider{results: []fetchResult{
		{err: fmt.Errorf("%w: missing main.temp", ErrIncomplete)},
		{err: errTransport},
	}}
	f, _, _ := newTestFetcher(p, nil)

	f.Cycle(context.Background())
	assert.Empty(t, buf.String(), "discarded cycles stay below info")

	f.Cycle(context.Background())
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "fetcher: request failed")
}
