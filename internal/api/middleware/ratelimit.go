package middleware

import (
	"net/http"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"github.com/woodid012/renew-portfolio-api/internal/api/response"
)

// RateLimit returns a middleware admitting perSecond requests on average with the given burst.
// The limiter is shared by every request through the middleware. A non-positive rate disables limiting.
func RateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	if perSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Warn().Str("path", r.URL.Path).Msg("rate limit exceeded")
				response.RespondError(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
