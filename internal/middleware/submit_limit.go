package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gigfinder/backend/internal/httpx"
)

// Limiter consumes one token for key.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, float64, error)
}

// SubmitLimit throttles engagement submissions per authenticated user. Must run after
// BearerAuth. A limiter outage lets the request through.
func SubmitLimit(l Limiter, onReject func(), log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromCtx(r.Context())
			if id == nil {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			allowed, remaining, err := l.Allow(r.Context(), id.UserID.String())
			if err != nil {
				log.Warn("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(remaining)))
			if !allowed {
				if onReject != nil {
					onReject()
				}
				w.Header().Set("Retry-After", "5")
				httpx.WriteError(w, http.StatusTooManyRequests, "too many submissions, slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
