package middlewares

import (
	"net/http"
	"strings"

	httperrors "github.com/machwork/identity/internal/http/errors"
	"github.com/machwork/identity/internal/jwt"
)

// WithAuth exige un access token EdDSA válido en Authorization: Bearer
// y cuelga los claims del contexto.
func WithAuth(verifier *jwt.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}
			claims, err := verifier.ParseAccess(raw)
			if err != nil {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(setClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
