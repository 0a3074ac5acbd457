package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	errs "redditgrab/pkg/errors"
)

// Backoff picks the pause before the next attempt. attempt is the number of
// the attempt that just failed, starting at 1.
type Backoff interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff doubles (by Multiplier) the pause after every failure,
// capped at MaxDelay and spread by JitterFactor
type ExponentialBackoff struct {
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64
}

// DefaultExponentialBackoff starts at one second and caps at one minute
func DefaultExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:    1 * time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := float64(eb.BaseDelay) * math.Pow(eb.Multiplier, float64(attempt-1))
	if delay > float64(eb.MaxDelay) {
		delay = float64(eb.MaxDelay)
	}

	if eb.JitterFactor > 0 {
		jitter := delay * eb.JitterFactor
		delay += rand.Float64()*2*jitter - jitter
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// ConstantBackoff waits the same Delay after every failure
type ConstantBackoff struct {
	Delay time.Duration
}

func (cb *ConstantBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return cb.Delay
}

// ByErrorType chooses a Backoff from the ErrorType of a failed fetch.
// Errors without a FetchError in their chain, and types missing from
// Strategies, use Fallback.
type ByErrorType struct {
	Strategies map[errs.ErrorType]Backoff
	Fallback   Backoff
}

// NewDownloadBackoff returns the strategies used for media and feed
// requests. A dropped connection is tried again after a short fixed pause;
// an overloaded server gets an increasing one.
func NewDownloadBackoff() *ByErrorType {
	return &ByErrorType{
		Strategies: map[errs.ErrorType]Backoff{
			errs.ErrorTypeNetwork: &ConstantBackoff{Delay: 2 * time.Second},
			errs.ErrorTypeServerError: &ExponentialBackoff{
				BaseDelay:    5 * time.Second,
				MaxDelay:     60 * time.Second,
				Multiplier:   2.0,
				JitterFactor: 0.1,
			},
		},
		Fallback: DefaultExponentialBackoff(),
	}
}

// For returns the strategy for err
func (b *ByErrorType) For(err error) Backoff {
	var fetchErr *errs.FetchError
	if errors.As(err, &fetchErr) {
		if s, ok := b.Strategies[fetchErr.Type]; ok {
			return s
		}
	}
	return b.Fallback
}

// Wait waits for delay or until ctx is cancelled
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
