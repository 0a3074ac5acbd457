package retry

import (
	"context"
	"errors"
	"fmt"

	errs "redditgrab/pkg/errors"
	"redditgrab/pkg/logger"
)

// Operation is one attempt at a request
type Operation func() error

// Config holds retry configuration
type Config struct {
	// MaxAttempts is the maximum number of attempts (0 means unlimited)
	MaxAttempts int
	// Backoff is used for every failure when BackoffFor is nil
	Backoff Backoff
	// BackoffFor picks a strategy per error
	BackoffFor func(err error) Backoff
	// RetryIf reports whether err is worth another attempt
	RetryIf func(error) bool
	Logger  logger.Logger
}

// DefaultRetryIf retries transport and server failures only
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var fetchErr *errs.FetchError
	if errors.As(err, &fetchErr) {
		return errs.IsRetryable(fetchErr.Type)
	}

	// Outcomes that another attempt cannot change
	var (
		remoteErr  *errs.RemoteError
		typeErr    *errs.WrongFileTypeError
		existsErr  *errs.AlreadyExistsError
		storageErr *errs.StorageError
	)
	if errors.As(err, &remoteErr) || errors.As(err, &typeErr) ||
		errors.As(err, &existsErr) || errors.As(err, &storageErr) {
		return false
	}

	return true
}

// Do runs op until it succeeds, fails with an error cfg.RetryIf rejects,
// runs out of attempts or ctx is cancelled while waiting
func Do(ctx context.Context, op Operation, cfg *Config) error {
	retryIf := cfg.RetryIf
	if retryIf == nil {
		retryIf = DefaultRetryIf
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		if cfg.MaxAttempts > 0 && attempt > cfg.MaxAttempts {
			if cfg.Logger != nil {
				cfg.Logger.WarnWithFields("max retry attempts exceeded", map[string]interface{}{
					"attempts":   attempt - 1,
					"last_error": lastErr.Error(),
				})
			}
			return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
		}

		err := op()
		if err == nil {
			if attempt > 1 && cfg.Logger != nil {
				cfg.Logger.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}
		lastErr = err

		if !retryIf(err) {
			if cfg.Logger != nil {
				cfg.Logger.DebugWithFields("error is not retryable", map[string]interface{}{
					"error": err.Error(),
				})
			}
			return err
		}

		// No sleep after the last attempt
		if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
			continue
		}

		delay := cfg.backoffFor(err).NextDelay(attempt)
		if cfg.Logger != nil {
			cfg.Logger.WarnWithFields("retrying operation", map[string]interface{}{
				"attempt":      attempt,
				"error":        err.Error(),
				"delay_ms":     delay.Milliseconds(),
				"max_attempts": cfg.MaxAttempts,
			})
		}

		if err := Wait(ctx, delay); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}
	}
}

func (c *Config) backoffFor(err error) Backoff {
	if c.BackoffFor != nil {
		if b := c.BackoffFor(err); b != nil {
			return b
		}
	}
	if c.Backoff != nil {
		return c.Backoff
	}
	return DefaultExponentialBackoff()
}

// Retrier runs operations under one Config
type Retrier struct {
	config *Config
}

// NewRetrier creates a retrier for cfg
func NewRetrier(cfg *Config) *Retrier {
	return &Retrier{config: cfg}
}

// NewHTTPRetrier creates a retrier whose delay depends on the kind of failure
func NewHTTPRetrier(maxAttempts int, log logger.Logger) *Retrier {
	return NewRetrier(&Config{
		MaxAttempts: maxAttempts,
		BackoffFor:  NewDownloadBackoff().For,
		RetryIf:     DefaultRetryIf,
		Logger:      log,
	})
}

// Do runs op under the retrier's configuration
func (r *Retrier) Do(ctx context.Context, op Operation) error {
	return Do(ctx, op, r.config)
}
