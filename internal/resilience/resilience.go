// Package resilience bounds external calls with a per-attempt timeout and
// retries transient failures at most once.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Policy controls how an external call is attempted.
type Policy struct {
	Timeout time.Duration // per attempt; zero means no extra deadline
	Retries int           // clamped to at most 1
	Backoff time.Duration // wait before the retry
}

// DefaultPolicy is a 30 second attempt timeout with one retry.
func DefaultPolicy() Policy {
	return Policy{Timeout: 30 * time.Second, Retries: 1, Backoff: 500 * time.Millisecond}
}

// WithTimeout returns a copy of p using the given per-attempt timeout.
// Non-positive values keep the current timeout.
func (p Policy) WithTimeout(d time.Duration) Policy {
	if d > 0 {
		p.Timeout = d
	}
	return p
}

// StatusError reports a non-2xx HTTP response from an external service.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Body)
}

// Do runs fn, retrying once when the first attempt fails with a transient
// error and the parent context is still live.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	retries := p.Retries
	if retries > 1 {
		retries = 1
	}
	if retries < 0 {
		retries = 0
	}

	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			if p.Backoff > 0 {
				select {
				case <-ctx.Done():
					return err
				case <-time.After(p.Backoff):
				}
			}
		}

		err = attemptOnce(ctx, p.Timeout, fn)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !IsTransient(err) {
			return err
		}
	}
	return err
}

func attemptOnce(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(actx)
}

// IsTransient reports whether err is worth a single retry: timeouts,
// refused or reset connections, truncated bodies, and 429/5xx responses.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= http.StatusInternalServerError
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return false
}
