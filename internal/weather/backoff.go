package weather

import (
	"time"
)

// Default retry policy for transport failures.
const (
	DefaultBackoffFloor = 5 * time.Second
	DefaultBackoffCap   = 300 * time.Second
)

// Backoff tracks the delay before the next retry after a transport failure.
// The zero value uses the default floor and cap.
type Backoff struct {
	Floor time.Duration
	Cap   time.Duration

	current time.Duration
}

// NewBackoff returns a Backoff starting at floor and never exceeding ceiling.
func NewBackoff(floor, ceiling time.Duration) *Backoff {
	if ceiling <= 0 {
		ceiling = DefaultBackoffCap
	}
	if floor <= 0 {
		floor = DefaultBackoffFloor
	}
	b := &Backoff{Floor: min(floor, ceiling), Cap: ceiling}
	b.Reset()
	return b
}

// Current returns the delay the next failure will wait.
func (b *Backoff) Current() time.Duration {
	if b.current == 0 {
		return b.floor()
	}
	return b.current
}

// Fail returns the delay to wait for this failure and doubles the next one,
// capped.
func (b *Backoff) Fail() time.Duration {
	delay := b.Current()
	next := delay * 2
	if next > b.ceiling() || next <= 0 {
		next = b.ceiling()
	}
	b.current = next
	return delay
}

// Reset drops the delay back to the floor.
func (b *Backoff) Reset() {
	b.current = b.floor()
}

func (b *Backoff) floor() time.Duration {
	f := b.Floor
	if f <= 0 {
		f = DefaultBackoffFloor
	}
	if c := b.ceiling(); f > c {
		f = c
	}
	return f
}

func (b *Backoff) ceiling() time.Duration {
	if b.Cap <= 0 {
		return DefaultBackoffCap
	}
	return b.Cap
}
