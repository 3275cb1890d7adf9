package pix

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// maxRetryAfter caps how long a server may ask us to wait.
const maxRetryAfter = 10 * time.Second

// retryTransport retries GETs on 429 and 5xx responses with exponential backoff.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	baseDelay  time.Duration
}

// RoundTrip implements http.RoundTripper.
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response

	for attempt := range t.maxRetries + 1 {
		var err error

		resp, err = t.base.RoundTrip(req)
		if err != nil {
			return nil, fmt.Errorf("round trip: %w", err)
		}

		if !shouldRetry(resp.StatusCode) || attempt == t.maxRetries {
			return resp, nil
		}

		delay := retryDelay(resp, t.baseDelay, attempt)

		// Close response body before retry to prevent connection leak.
		_ = resp.Body.Close()

		select {
		case <-req.Context().Done():
			return nil, fmt.Errorf("retry wait: %w", req.Context().Err())
		case <-time.After(delay):
		}
	}

	return resp, nil
}

// retryDelay honours a Retry-After header given in seconds, otherwise
// doubles base per attempt.
func retryDelay(resp *http.Response, base time.Duration, attempt int) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return min(time.Duration(secs)*time.Second, maxRetryAfter)
		}
	}

	return base * (1 << attempt) //nolint:gosec // attempt is bounded by maxRetries
}

func shouldRetry(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests ||
		(statusCode >= http.StatusInternalServerError && statusCode <= http.StatusGatewayTimeout)
}

// loggingTransport logs each request at debug level.
type loggingTransport struct {
	base   http.RoundTripper
	logger *slog.Logger
}

// RoundTrip implements http.RoundTripper.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := t.logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	logger.Debug("icon fetch", "url", req.URL.String())

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		logger.Debug("icon fetch failed",
			"url", req.URL.String(),
			"error", err,
			"duration", time.Since(start),
		)

		return nil, fmt.Errorf("logging round trip: %w", err)
	}

	logger.Debug("icon fetched",
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"bytes", resp.ContentLength,
		"duration", time.Since(start),
	)

	return resp, nil
}
