package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimit spaces outgoing requests to perMinute with a small burst. A
// request waits for a token instead of failing; the wait honours the request
// context.
func RateLimit(perMinute int) Middleware {
	if perMinute <= 0 {
		return func(next http.RoundTripper) http.RoundTripper { return next }
	}
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 10)
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if !limiter.Allow() {
				zap.L().Debug("Rate limit reached, waiting", zap.String("path", r.URL.Path))
				if err := limiter.Wait(r.Context()); err != nil {
					return nil, err
				}
			}
			return next.RoundTrip(r)
		})
	}
}
