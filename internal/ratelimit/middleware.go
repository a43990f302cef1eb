package ratelimit

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/chat-service/pkg/util"
)

// KeyFunc derives the client identity a counter is keyed by.
type KeyFunc func(c *fiber.Ctx) string

// Limiter builds per-class gating middleware over a shared Store.
type Limiter struct {
	store    Store
	logger   *zap.Logger
	keyFn    KeyFunc
	disabled bool
	now      func() time.Time
}

// NewLimiter constructs the limiter. Disabling is an explicit configuration
// decision and is logged loudly at startup, never silent.
func NewLimiter(store Store, logger *zap.Logger, disabled bool) *Limiter {
	if disabled {
		logger.Warn("rate limiting is DISABLED by configuration")
	}
	return &Limiter{
		store:    store,
		logger:   logger,
		keyFn:    ClientKey,
		disabled: disabled,
		now:      time.Now,
	}
}

// WithClock overrides the clock, for tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Gate returns the middleware enforcing the given policy. Counters are keyed
// by (client identity, class) so classes never share budgets.
func (l *Limiter) Gate(policy Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if l.disabled {
			return c.Next()
		}

		key := string(policy.Class) + ":" + l.keyFn(c)
		count, reset, err := l.store.Incr(c.UserContext(), key, policy.Window)
		if err != nil {
			// A broken limiter backend must not take the service down.
			l.logger.Error("rate limit store failure", zap.Error(err))
			return c.Next()
		}

		remaining := policy.Max - count
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(policy.Max))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if count > policy.Max {
			retryAfter := int(reset.Sub(l.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			l.logger.Warn("rate limit exceeded",
				zap.String("key", key),
				zap.String("class", string(policy.Class)),
				zap.Int("count", count))
			return apperrors.NewRateLimited(policy.Message, retryAfter)
		}

		return c.Next()
	}
}

// ClientKey extracts a stable client identity: the first hop of
// X-Forwarded-For when present, otherwise the remote address.
func ClientKey(c *fiber.Ctx) string {
	if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	addr := c.Context().RemoteAddr().String()
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	if ip := c.IP(); ip != "" {
		return ip
	}
	return "unknown"
}
