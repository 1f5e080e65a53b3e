package shared

import (
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter enforces a minimum interval between requests to one
// upstream service. Burst is fixed at 1 so requests are strictly paced.
type RateLimiter struct {
	limiter *rate.Limiter
	now     func() time.Time
	sleep   func(time.Duration)
}

// NewRateLimiter returns a limiter that allows one request per minInterval.
func NewRateLimiter(minInterval time.Duration) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// NewRateLimiterWithClock is like NewRateLimiter but with an injectable
// clock and sleep function for tests.
func NewRateLimiterWithClock(minInterval time.Duration, now func() time.Time, sleep func(time.Duration)) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
		now:     now,
		sleep:   sleep,
	}
}

// Wait blocks until the next request is allowed.
func (rl *RateLimiter) Wait() {
	r := rl.limiter.ReserveN(rl.now(), 1)
	if d := r.DelayFrom(rl.now()); d > 0 {
		rl.sleep(d)
	}
}
