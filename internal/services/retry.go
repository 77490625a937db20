package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	retryMaxAttempts = 5
	retryBaseDelay   = 2 * time.Second
)

// RetryPolicy wraps an extraction call with exponential backoff on transient
// provider errors. OnRetry fires before each backoff sleep so the caller can
// surface liveness to the user.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	OnRetry     func(attempt, maxAttempts int)

	wait func(ctx context.Context, d time.Duration) error
}

type RetryOption func(*RetryPolicy)

func WithSleep(sleep func(time.Duration)) RetryOption {
	return func(p *RetryPolicy) {
		p.wait = func(ctx context.Context, d time.Duration) error {
			sleep(d)
			return ctx.Err()
		}
	}
}

func WithOnRetry(fn func(attempt, maxAttempts int)) RetryOption {
	return func(p *RetryPolicy) {
		p.OnRetry = fn
	}
}

func NewRetryPolicy(opts ...RetryOption) *RetryPolicy {
	p := &RetryPolicy{
		MaxAttempts: retryMaxAttempts,
		BaseDelay:   retryBaseDelay,
		wait:        waitContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Do runs fn up to MaxAttempts times. Only transient provider errors are
// retried; anything else propagates immediately. Exhausting the attempts
// returns the last error.
func (p *RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) (*ExtractionResponse, error)) (*ExtractionResponse, error) {
	attempt := 0
	for attempt < p.MaxAttempts {
		resp, err := fn(ctx)
		if err == nil {
			return resp, nil
		}

		attempt++
		if !IsRetryable(err) || attempt >= p.MaxAttempts {
			return nil, err
		}

		delay := p.BaseDelay << (attempt - 1) // 2s, 4s, 8s, 16s
		if p.OnRetry != nil {
			p.OnRetry(attempt, p.MaxAttempts)
		}

		if waitErr := p.wait(ctx, delay); waitErr != nil {
			return nil, waitErr
		}
	}
	return nil, errors.New("retry attempts exhausted")
}

// waitContext blocks for d or until the context is cancelled, whichever
// comes first.
func waitContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsRetryable reports whether the provider error signals rate-limiting,
// overload or temporary unavailability.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 503:
			return true
		}
	}

	msg := err.Error()
	for _, marker := range []string{"429", "503", "Resource exhausted", "RESOURCE_EXHAUSTED", "Overloaded", "overloaded", "UNAVAILABLE"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
