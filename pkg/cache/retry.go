package cache

import (
	"context"
	"time"

	"github.com/matzehuels/arbor/pkg/errors"
)

// Backoff retries backend calls that fail transiently, doubling the wait
// after every failed attempt.
type Backoff struct {
	Attempts int
	Delay    time.Duration
}

// DefaultBackoff makes three attempts, waiting one and then two seconds.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

// Do calls fn until it succeeds, fails with a non-transient error or runs
// out of attempts. It returns the last error, or ctx.Err() when the context
// ends while waiting.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	delay := b.Delay
	attempts := max(b.Attempts, 1)
	var err error
	for i := range attempts {
		if err = fn(); err == nil || !Transient(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}

// Transient reports whether err carries a NETWORK_ERROR or TIMEOUT code
// anywhere in its chain.
func Transient(err error) bool {
	return errors.Is(err, errors.ErrCodeNetwork) || errors.Is(err, errors.ErrCodeTimeout)
}
