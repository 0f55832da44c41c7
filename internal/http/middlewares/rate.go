package middlewares

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	httperrors "github.com/machwork/identity/internal/http/errors"
	"github.com/machwork/identity/internal/observability/logger"
	"github.com/machwork/identity/internal/rate"
)

// RateLimitConfig configura el middleware de rate limiting. Los
// endpoints bajo AuthPrefix usan AuthMax, más estricto; el resto Max.
type RateLimitConfig struct {
	Limiter    rate.Limiter
	Max        int64
	AuthPrefix string
	AuthMax    int64
	Whitelist  []string // paths excluidos (healthz, metrics)
}

// WithRateLimit limita por IP de cliente con tier por prefijo de ruta.
// Limiter nil desactiva el middleware.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.Max <= 0 {
		cfg.Max = 100
	}
	if cfg.AuthMax <= 0 {
		cfg.AuthMax = 20
	}

	whitelist := make(map[string]struct{}, len(cfg.Whitelist))
	for _, p := range cfg.Whitelist {
		whitelist[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := whitelist[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			// una sola cola por IP: el tier solo cambia el límite, así el
			// tráfico general también consume el presupuesto de auth
			limit := cfg.Max
			key := ClientIP(r)
			if cfg.AuthPrefix != "" && strings.HasPrefix(r.URL.Path, cfg.AuthPrefix) {
				limit = cfg.AuthMax
			}

			res, err := cfg.Limiter.Allow(r.Context(), key, limit)
			if err != nil {
				// con el limiter caído, dejamos pasar
				logger.Named("rate").Warn("limiter error", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			if !res.Allowed {
				if res.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
				}
				if res.WindowTTL > 0 {
					resetAt := time.Now().Add(res.WindowTTL).Unix()
					w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))
				}
				httperrors.WriteError(w, httperrors.ErrRateLimitExceeded)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if res.WindowTTL > 0 {
				resetAt := time.Now().Add(res.WindowTTL).Unix()
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))
			}

			next.ServeHTTP(w, r)
		})
	}
}
