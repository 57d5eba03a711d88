// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Rate limiting header names.
//
// ref: https://www.ietf.org/archive/id/draft-polli-ratelimit-headers-02.html
const (
	HeaderRateLimitLimit     = "RateLimit-Limit"
	HeaderRateLimitRemaining = "RateLimit-Remaining"
	HeaderRateLimitReset     = "RateLimit-Reset"
)

const (
	LimiterExpiryDuration = time.Hour       // How long to keep idle limiters in memory.
	CleanupInterval       = 5 * time.Minute // Interval between limiter cleanup runs.

	// Clients are grouped by these network prefixes.
	IPv4Prefix = 24
	IPv6Prefix = 56
)

// ErrRateLimited is returned by wrapped handlers when the client network has no tokens left.
var ErrRateLimited = errors.New("rate limit exceeded")

// limiterWrapper holds the token bucket of one network.
type limiterWrapper struct {
	limiter    *rate.Limiter
	mu         sync.Mutex
	lastAccess time.Time
}

// Limiter keeps one token bucket per client network.
type Limiter struct {
	rate   rate.Limit
	burst  int
	logger zerolog.Logger

	limiters sync.Map // network -> *limiterWrapper

	cleanupMu     sync.Mutex
	lastCleanupAt time.Time

	now func() time.Time
}

// New returns a Limiter granting ratePerSecond tokens per second up to burst.
func New(ratePerSecond float64, burst int) *Limiter {
	return &Limiter{
		rate:   rate.Limit(ratePerSecond),
		burst:  burst,
		logger: log.With().Str("sys", "limiter").Logger(),
		now:    time.Now,
	}
}

// Wrap rejects calls of handler with ErrRateLimited once the network of the
// client has exhausted its bucket. RateLimit-* headers are set either way.
func (l *Limiter) Wrap(handler func(w http.ResponseWriter, r *http.Request) error) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		defer l.maybeCleanup()

		network := clientNetwork(r)
		lim := l.getOrCreate(network)

		lim.mu.Lock()
		lim.lastAccess = l.now()
		allowed := lim.limiter.AllowN(lim.lastAccess, 1)
		remaining := int(math.Max(0, math.Floor(lim.limiter.TokensAt(lim.lastAccess))))
		lim.mu.Unlock()

		headers := w.Header()
		headers.Set(HeaderRateLimitLimit, strconv.Itoa(l.burst))
		headers.Set(HeaderRateLimitRemaining, strconv.Itoa(remaining))

		if !allowed {
			headers.Set(HeaderRateLimitReset, strconv.Itoa(l.resetSeconds()))

			l.logger.Warn().
				Str("network", network).
				Msg("Rate limit exceeded")

			return ErrRateLimited
		}

		return handler(w, r)
	}
}

// resetSeconds is the time until one token is available again.
func (l *Limiter) resetSeconds() int {
	if l.rate <= 0 {
		return 0
	}

	return int(math.Ceil(1 / float64(l.rate)))
}

func (l *Limiter) getOrCreate(network string) *limiterWrapper {
	if value, ok := l.limiters.Load(network); ok {
		if lim, ok := value.(*limiterWrapper); ok {
			return lim
		}
	}

	value, _ := l.limiters.LoadOrStore(network, &limiterWrapper{
		limiter:    rate.NewLimiter(l.rate, l.burst),
		lastAccess: l.now(),
	})

	return value.(*limiterWrapper)
}

// maybeCleanup drops idle limiters at most once per CleanupInterval.
func (l *Limiter) maybeCleanup() {
	l.cleanupMu.Lock()
	defer l.cleanupMu.Unlock()

	now := l.now()
	if l.lastCleanupAt.IsZero() {
		l.lastCleanupAt = now

		return
	}

	if now.Sub(l.lastCleanupAt) < CleanupInterval {
		return
	}

	l.lastCleanupAt = now
	l.cleanupExpired(now)
}

func (l *Limiter) cleanupExpired(now time.Time) {
	expired := 0

	l.limiters.Range(func(key, value any) bool {
		lim, ok := value.(*limiterWrapper)
		if !ok {
			l.limiters.Delete(key)

			return true
		}

		lim.mu.Lock()
		lastAccess := lim.lastAccess
		lim.mu.Unlock()

		if now.Sub(lastAccess) > LimiterExpiryDuration {
			l.limiters.Delete(key)

			expired++
		}

		return true
	})

	if expired > 0 {
		l.logger.Debug().Int("expired", expired).Msg("Removed idle limiters")
	}
}

// Len reports how many networks are tracked.
func (l *Limiter) Len() int {
	n := 0

	l.limiters.Range(func(_, _ any) bool {
		n++

		return true
	})

	return n
}

// clientNetwork is the network of the client address, or RemoteAddr when
// there is no usable address.
func clientNetwork(r *http.Request) string {
	addr, ok := clientAddr(r)
	if !ok {
		log.Warn().Str("sys", "limiter").Str("remote_addr", r.RemoteAddr).Msg("Could not determine client IP")

		return r.RemoteAddr
	}

	return networkOf(addr).String()
}
