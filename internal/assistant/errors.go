package assistant

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// RateLimitError indicates an assistant provider returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Both delta-seconds and HTTP-date forms are accepted; anything else yields 0.
func ParseRetryAfterHeader(val string, now time.Time) int {
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return secs
	}
	if at, err := http.ParseTime(val); err == nil {
		if d := at.Sub(now); d > 0 {
			return int(d.Round(time.Second).Seconds())
		}
	}
	return 0
}
