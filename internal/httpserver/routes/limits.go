package routes

import (
	"github.com/MrSnakeDoc/multiverse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/multiverse/internal/httpserver/mw"
)

// mutationLimit rate limits writes per client IP. Each route group gets its
// own buckets.
func mutationLimit(d deps.Deps) Middleware {
	return mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateLimitBurst,
		RefillPerIPPerMin: d.RateLimitRefillPerMin,
		TrustProxy:        d.TrustProxy,
	})
}
