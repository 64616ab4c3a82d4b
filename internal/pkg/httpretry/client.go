// Package httpretry wraps an HTTP client with bounded retries for calls
// to the Graph API. Throttling (429) and transient server errors are
// retried with exponential backoff and full jitter; a Retry-After header
// stretches the wait when the server asks for more.
package httpretry

import (
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// HTTPDoer executes HTTP requests. Both *http.Client and *RetryClient
// satisfy it, so callers can layer or skip the retry behavior.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryClient retries transient failures on top of an inner HTTPDoer.
type RetryClient struct {
	client     HTTPDoer
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// NewRetryClient wraps client with up to maxRetries retry attempts after
// the initial request. A nil client gets a default with a 30s timeout;
// maxRetries at or below zero means 3.
func NewRetryClient(client HTTPDoer, maxRetries int) *RetryClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &RetryClient{
		client:     client,
		maxRetries: maxRetries,
		baseDelay:  1 * time.Second,
		maxDelay:   30 * time.Second,
	}
}

// Do executes the request, retrying 429 and 5xx responses and transient
// transport errors. Client errors (4xx other than 429) return
// immediately, as does context cancellation. The final attempt's
// response comes back as-is so the caller can read the error body.
func (rc *RetryClient) Do(req *http.Request) (*http.Response, error) {
	var lastErr error
	var wait time.Duration

	for attempt := 0; attempt <= rc.maxRetries; attempt++ {
		if req.Context().Err() != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, req.Context().Err()
		}

		if attempt > 0 {
			// Rewind the body before resending
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("httpretry: reset request body: %w", err)
				}
				req.Body = body
			}

			// Host and path only; query strings can carry credentials
			log.Printf("httpretry: retry %d/%d for %s %s%s (waiting %s)",
				attempt, rc.maxRetries, req.Method, req.URL.Host, req.URL.Path, wait)

			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-req.Context().Done():
				timer.Stop()
				if lastErr != nil {
					return nil, lastErr
				}
				return nil, req.Context().Err()
			}
		}

		resp, err := rc.client.Do(req)
		if err != nil {
			lastErr = err
			if req.Context().Err() != nil {
				return nil, err
			}
			wait = rc.backoff(attempt + 1)
			continue
		}

		if !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if attempt == rc.maxRetries {
			return resp, nil
		}

		// Retry-After overrides the backoff schedule; the request context
		// still bounds the total wait.
		wait = rc.backoff(attempt + 1)
		if after, ok := retryAfter(resp); ok && after > wait {
			wait = after
		}

		// Drain so the connection can be reused
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("httpretry: retryable status %d from %s", resp.StatusCode, req.URL.Host)
	}

	return nil, lastErr
}

// backoff returns the jittered delay before retry n (1-based): a random
// duration up to baseDelay*2^(n-1), capped at maxDelay, floored at 100ms
// so a zero roll never busy-loops.
func (rc *RetryClient) backoff(n int) time.Duration {
	d := float64(rc.baseDelay) * math.Pow(2, float64(n-1))
	if d > float64(rc.maxDelay) {
		d = float64(rc.maxDelay)
	}
	jittered := time.Duration(rand.Float64() * d)
	if jittered < 100*time.Millisecond {
		jittered = 100 * time.Millisecond
	}
	return jittered
}

// retryAfter reads the Retry-After header in either the delay-seconds or
// HTTP-date form.
func retryAfter(resp *http.Response) (time.Duration, bool) {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d, true
		}
	}
	return 0, false
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
