package middleware

import (
	"parent-care-assistant/pkg/log"
)

// Config holds middleware settings.
type Config struct {
	// RateLimitPerMin bounds extraction requests per caller. 0 disables the limit.
	RateLimitPerMin int
	// RequireUser rejects requests without X-User-ID.
	RequireUser bool
}

type Middleware struct {
	l           log.Logger
	limiter     *rateLimiter
	requireUser bool
}

func New(l log.Logger, cfg Config) Middleware {
	mw := Middleware{
		l:           l,
		requireUser: cfg.RequireUser,
	}
	if cfg.RateLimitPerMin > 0 {
		mw.limiter = newRateLimiter(cfg.RateLimitPerMin)
	}
	return mw
}
