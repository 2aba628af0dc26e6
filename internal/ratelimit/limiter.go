// Package ratelimit throttles inbound commands per uid before they ever
// reach an Engine, so a noisy caller can't starve other users sharing the
// same symbol's worker goroutine.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// Limiter enforces a fixed-window rate per uid.
type Limiter struct {
	inner *limiter.Limiter
}

// New builds a Limiter allowing rate requests per period. period accepts
// either a bare unit letter ("S", "M", "H", "D", as limiter.NewRateFromFormatted
// expects) or a duration-style shorthand with an optional numeric prefix
// ("1s", "1m", "1h", "1d"), which is normalized to the matching unit letter.
func New(rate int64, period string) (*Limiter, error) {
	unit, err := normalizePeriod(period)
	if err != nil {
		return nil, err
	}
	formatted := fmt.Sprintf("%d-%s", rate, unit)
	r, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", formatted, err)
	}
	store := memory.NewStore()
	return &Limiter{inner: limiter.New(store, r)}, nil
}

// normalizePeriod strips any numeric prefix and maps the remaining unit to
// the single-letter form limiter.NewRateFromFormatted requires.
func normalizePeriod(period string) (string, error) {
	trimmed := strings.TrimLeft(period, "0123456789")
	switch strings.ToUpper(trimmed) {
	case "S", "SEC", "SECOND", "SECONDS":
		return "S", nil
	case "M", "MIN", "MINUTE", "MINUTES":
		return "M", nil
	case "H", "HOUR", "HOURS":
		return "H", nil
	case "D", "DAY", "DAYS":
		return "D", nil
	default:
		return "", fmt.Errorf("unsupported rate limit period %q", period)
	}
}

// Allow reports whether uid may issue another command right now, per the
// configured rate.
func (l *Limiter) Allow(ctx context.Context, uid uint64) (bool, error) {
	ctxKey := strconv.FormatUint(uid, 10)
	state, err := l.inner.Get(ctx, ctxKey)
	if err != nil {
		return false, fmt.Errorf("rate limiter lookup for uid %d: %w", uid, err)
	}
	return !state.Reached, nil
}
