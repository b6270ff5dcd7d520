package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"terroir/internal/domain"
	"terroir/internal/port"
)

// circuitState tracks rate-limit backoff for a single assistant.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// Named pairs an assistant with the name used in logs and errors.
type Named struct {
	Name      string
	Assistant port.DossierAssistant
}

// Fallback tries assistants in order, skipping those whose circuit is open
// after a rate limit. It implements port.DossierAssistant.
type Fallback struct {
	assistants []Named
	circuits   []*circuitState
	now        func() time.Time
	logger     *slog.Logger
}

// NewFallback creates a Fallback from an ordered list of assistants.
func NewFallback(assistants []Named) *Fallback {
	circuits := make([]*circuitState, len(assistants))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &Fallback{
		assistants: assistants,
		circuits:   circuits,
		now:        time.Now,
		logger:     slog.Default().With("component", "assistant.Fallback"),
	}
}

// SetClock overrides the clock used for circuit decisions.
func (f *Fallback) SetClock(now func() time.Time) {
	f.now = now
}

// Len reports how many assistants are chained.
func (f *Fallback) Len() int {
	return len(f.assistants)
}

func (f *Fallback) Draft(ctx context.Context, input port.DraftInput) (*port.DraftOutput, error) {
	if len(f.assistants) == 0 {
		return nil, fmt.Errorf("no assistant configured: %w", domain.ErrAssistantUnavailable)
	}

	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, a := range f.assistants {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.logger.Info("skipping assistant", "name", a.Name, "circuit_open_until", resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := a.Assistant.Draft(ctx, input)
		if err == nil {
			return out, nil
		}

		f.logger.Warn("assistant failed", "name", a.Name, "error", err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", errors.New("all assistants rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all assistants failed: %w: %w", domain.ErrAssistantUnavailable, lastErr)
}
