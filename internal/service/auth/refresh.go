package auth

import (
	"context"

	"github.com/machwork/identity/internal/audit"
	"github.com/machwork/identity/internal/domain/repository"
	"github.com/machwork/identity/internal/observability/logger"
	"github.com/machwork/identity/internal/security/token"
)

// Refresh rota el refresh token: el viejo queda revocado y enlazado al
// nuevo en la misma transacción. Un token ya rotado falla siempre; no
// hay ventana de gracia para reintentos.
func (s *Service) Refresh(ctx context.Context, rawRefresh string) (*TokenPair, error) {
	claims, err := s.verifier.ParseRefresh(rawRefresh)
	if err != nil {
		return nil, ErrInvalidOrExpiredToken
	}

	role, companyID, err := s.resolver.Primary(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	access, err := s.issuer.IssueAccess(claims.Subject, role.String(), companyID)
	if err != nil {
		return nil, err
	}
	newRefresh, jti, expiresAt, err := s.issuer.IssueRefresh(claims.Subject)
	if err != nil {
		return nil, err
	}

	old, err := s.repos.RefreshTokens.Rotate(ctx, token.SHA256Hex(rawRefresh), repository.CreateRefreshTokenInput{
		UserID:    claims.Subject,
		JTI:       jti,
		TokenHash: token.SHA256Hex(newRefresh),
		ExpiresAt: expiresAt,
	})
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, err
	}

	// El registro se busca por hash; si el jti o el sub no coinciden con
	// los claims firmados, la cadena está desincronizada. Se corta todo.
	if old.JTI != claims.ID || old.UserID != claims.Subject {
		if n, err := s.repos.RefreshTokens.RevokeAllForUser(ctx, old.UserID); err == nil {
			logger.Named("auth").Warn("refresh chain desync, sessions revoked",
				logger.UserID(old.UserID), logger.Int("revoked", n))
		}
		s.emit(ctx, audit.Event{
			Action:      "token.mismatch",
			EntityType:  "refresh_token",
			EntityID:    old.ID,
			ActorUserID: old.UserID,
		})
		return nil, ErrTokenMismatch
	}

	s.emit(ctx, audit.Event{
		Action:      "token.refresh",
		EntityType:  "refresh_token",
		EntityID:    old.ID,
		ActorUserID: claims.Subject,
	})
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: newRefresh,
		TokenType:    "bearer",
		ExpiresIn:    int(s.issuer.AccessTTL().Seconds()),
	}, nil
}

// Logout revoca todas las sesiones activas del usuario.
func (s *Service) Logout(ctx context.Context, userID string) error {
	n, err := s.repos.RefreshTokens.RevokeAllForUser(ctx, userID)
	if err != nil {
		return err
	}
	s.emit(ctx, audit.Event{
		Action:      "user.logout",
		EntityType:  "user",
		EntityID:    userID,
		ActorUserID: userID,
		Metadata:    map[string]any{"revoked": n},
	})
	return nil
}
