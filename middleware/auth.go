// middleware/auth.go
package middleware

import "net/http"

// TokenSource yields the current bearer token, or "" when logged out.
type TokenSource func() string

// BearerAuth attaches "Authorization: Bearer <token>" whenever a token is
// available and the request did not set its own header.
func BearerAuth(tokens TokenSource) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("Authorization") != "" || tokens == nil {
				return next.RoundTrip(r)
			}
			token := tokens()
			if token == "" {
				return next.RoundTrip(r)
			}
			r = r.Clone(r.Context())
			r.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(r)
		})
	}
}
