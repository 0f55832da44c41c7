package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/machwork/identity/internal/jwt"
	"github.com/machwork/identity/internal/rate"
)

type stubLimiter struct {
	res   rate.Result
	err   error
	key   string
	limit int64
}

func (s *stubLimiter) Allow(_ context.Context, key string, limit int64) (rate.Result, error) {
	s.key = key
	s.limit = limit
	return s.res, s.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestWithRequestID(t *testing.T) {
	var seen string
	h := WithRequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	// propaga el que manda el cliente
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "abc-123", seen)
	require.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	// genera uno si no viene
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	require.Len(t, seen, 32)
	require.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}

func TestWithRateLimitAllowed(t *testing.T) {
	lim := &stubLimiter{res: rate.Result{Allowed: true, Remaining: 7, WindowTTL: 30 * time.Second}}
	h := WithRateLimit(RateLimitConfig{Limiter: lim, Max: 100, AuthPrefix: "/api/v1/auth", AuthMax: 20})(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/companies", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "7", rec.Header().Get("X-RateLimit-Remaining"))
	require.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	require.Equal(t, int64(100), lim.limit)
}

func TestWithRateLimitAuthTier(t *testing.T) {
	lim := &stubLimiter{res: rate.Result{Allowed: true, Remaining: 1}}
	h := WithRateLimit(RateLimitConfig{Limiter: lim, Max: 100, AuthPrefix: "/api/v1/auth", AuthMax: 20})(okHandler())

	// auth usa el límite chico pero la misma cola por IP
	authReq := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	authReq.RemoteAddr = "10.0.0.9:1111"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authReq)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(20), lim.limit)
	authKey := lim.key

	otherReq := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	otherReq.RemoteAddr = "10.0.0.9:2222"
	h.ServeHTTP(httptest.NewRecorder(), otherReq)
	require.Equal(t, int64(100), lim.limit)
	require.Equal(t, authKey, lim.key)
}

func TestWithRateLimitRejected(t *testing.T) {
	lim := &stubLimiter{res: rate.Result{Allowed: false, RetryAfter: 42 * time.Second, WindowTTL: time.Minute}}
	h := WithRateLimit(RateLimitConfig{Limiter: lim, Max: 100})(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "42", rec.Header().Get("Retry-After"))
	require.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestWithRateLimitFailsOpen(t *testing.T) {
	lim := &stubLimiter{err: errors.New("redis down")}
	h := WithRateLimit(RateLimitConfig{Limiter: lim, Max: 100})(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestWithRateLimitWhitelist(t *testing.T) {
	lim := &stubLimiter{res: rate.Result{Allowed: false}}
	h := WithRateLimit(RateLimitConfig{Limiter: lim, Max: 100, Whitelist: []string{"/healthz"}})(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, lim.key)
}

func TestWithRateLimitNilLimiter(t *testing.T) {
	h := WithRateLimit(RateLimitConfig{})(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestWithAuth(t *testing.T) {
	keys, err := jwt.GenerateKeyPair()
	require.NoError(t, err)
	iss := jwt.NewIssuer(keys, "machwork", "machwork-api", 15*time.Minute, 720*time.Hour)
	verifier := jwt.NewVerifier(keys, "machwork", "machwork-api")

	var claims *jwt.AccessClaims
	h := WithAuth(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims = GetClaims(r.Context())
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwdw==")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := iss.IssueAccess("u-1", "company_owner", "c-1")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, claims)
		require.Equal(t, "u-1", claims.Subject)
		require.Equal(t, "company_owner", claims.Role)
		require.Equal(t, "c-1", claims.CompanyID)
	})
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:4567"
	require.Equal(t, "10.0.0.1", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	require.Equal(t, "203.0.113.9", ClientIP(r))
}
