package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Logger logs method, path, status and latency of every backend call.
func Logger(logger *zap.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("request_id", r.Header.Get(RequestIDHeader)),
				zap.Duration("latency", time.Since(start)),
			}
			if err != nil {
				logger.Warn("backend call failed", append(fields, zap.Error(err))...)
				return nil, err
			}
			logger.Debug("backend call", append(fields, zap.Int("status", resp.StatusCode))...)
			return resp, nil
		})
	}
}
