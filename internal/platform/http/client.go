package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Client is a wrapper for HTTP client with rate limiting, retries and a
// circuit breaker. Every vendor adapter shares this transport.
type Client struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter

	name            string
	breaker         *gobreaker.CircuitBreaker
	maxRetryTimeout time.Duration
}

// ClientOptions holds options for creating a new Client.
type ClientOptions struct {
	Name            string // vendor name, used in errors and breaker logs
	Timeout         time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
	BreakerFailures uint32 // consecutive failures before the circuit opens
	BreakerCooldown time.Duration
}

// NewClient creates a new HTTP client with rate limiting.
func NewClient(opts ClientOptions) *Client {
	// Set default values if not provided
	if opts.Name == "" {
		opts.Name = "vendor"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}
	if opts.MaxRetryTimeout == 0 {
		opts.MaxRetryTimeout = 30 * time.Second
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerCooldown == 0 {
		opts.BreakerCooldown = time.Minute
	}

	settings := gobreaker.Settings{
		Name:    opts.Name,
		Timeout: opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("component", "http").
				Str("vendor", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
		// A 4xx answer means the vendor is up; only outages and throttling
		// should open the circuit.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var statusErr *HTTPStatusError
			if errors.As(err, &statusErr) {
				return statusErr.StatusCode < http.StatusInternalServerError &&
					statusErr.StatusCode != http.StatusTooManyRequests
			}
			return false
		},
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: opts.Timeout,
		},
		Limiter:         rate.NewLimiter(rate.Every(time.Second), opts.RequestsPerSec),
		name:            opts.Name,
		breaker:         gobreaker.NewCircuitBreaker(settings),
		maxRetryTimeout: opts.MaxRetryTimeout,
	}
}

// DoRequest performs an HTTP request with rate limiting and retries.
// Network failures and 429/5xx answers are retried with exponential backoff
// until MaxRetryTimeout; other non-200 answers fail immediately so callers
// can inspect the status code.
func (c *Client) DoRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	// Wait for rate limiter
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Vendor: c.name, Err: err}
	}

	var resp *http.Response
	attempt := 0
	operation := func() error {
		// Requests with bodies need a fresh body per attempt.
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return backoff.Permanent(err)
			}
			req.Body = body
		}
		attempt++

		var err error
		resp, err = c.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			statusErr := &HTTPStatusError{StatusCode: resp.StatusCode}
			if resp.StatusCode == http.StatusTooManyRequests ||
				resp.StatusCode >= http.StatusInternalServerError {
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}
		return nil
	}

	do := func() (interface{}, error) {
		backoffStrategy := backoff.NewExponentialBackOff()
		backoffStrategy.MaxElapsedTime = c.maxRetryTimeout
		return nil, backoff.Retry(operation, backoff.WithContext(backoffStrategy, ctx))
	}

	if _, err := c.breaker.Execute(do); err != nil {
		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) {
			return nil, statusErr
		}
		return nil, &TransportError{Vendor: c.name, Err: err}
	}

	return resp, nil
}

// HTTPStatusError represents an error due to a non-200 HTTP status code.
type HTTPStatusError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	return "non-200 status code: " + http.StatusText(e.StatusCode)
}

// TransportError wraps a network-level failure talking to a vendor. Callers
// treat it as an outage and fall back to safe defaults rather than failing a
// cycle.
type TransportError struct {
	Vendor string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport error: %v", e.Vendor, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}
