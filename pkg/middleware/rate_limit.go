package middleware

import (
	"time"

	"github.com/gorilla/mux"
	"github.com/ulule/limiter/v3"
	mhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

type RateLimitConfig struct {
	RequestsPerPeriod int
	Period            time.Duration
}

// RateLimit enforces an in-memory rate limit keyed by client IP.
func RateLimit(config RateLimitConfig) mux.MiddlewareFunc {
	period := config.Period
	if period == 0 {
		period = time.Second
	}
	rate := limiter.Rate{
		Period: period,
		Limit:  int64(config.RequestsPerPeriod),
	}
	instance := limiter.New(memory.NewStore(), rate)
	return mhttp.NewMiddleware(instance).Handler
}
