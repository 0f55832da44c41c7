package auth

import (
	"context"

	"github.com/machwork/identity/internal/audit"
	"github.com/machwork/identity/internal/domain/repository"
	"github.com/machwork/identity/internal/security/password"
	"github.com/machwork/identity/internal/security/token"
	"github.com/machwork/identity/internal/security/totp"
)

// TokenPair es el resultado de un login o refresh exitoso.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int // segundos
}

// LoginInput son las credenciales del login. MFACode vacío con MFA
// activo produce ErrMFARequired.
type LoginInput struct {
	Email    string
	Password string
	MFACode  string
}

// Login valida credenciales, segundo factor si corresponde, y emite el
// par de tokens con el rol primario resuelto.
func (s *Service) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	user, err := s.repos.Users.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !password.Verify(input.Password, user.PasswordHash) || !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if user.EmailVerifiedAt == nil {
		return nil, ErrEmailNotVerified
	}

	if user.MFAEnabled {
		if input.MFACode == "" {
			return nil, ErrMFARequired
		}
		ok, err := s.checkSecondFactor(ctx, user, input.MFACode)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrInvalidMFACode
		}
	}

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, audit.Event{
		Action:      "user.login",
		EntityType:  "user",
		EntityID:    user.ID,
		ActorUserID: user.ID,
		Metadata:    map[string]any{"mfa": user.MFAEnabled},
	})
	return pair, nil
}

// checkSecondFactor prueba TOTP (ventana ±1) y cae a backup code. El
// backup code se consume atómicamente: reusarlo falla.
func (s *Service) checkSecondFactor(ctx context.Context, user *repository.User, code string) (bool, error) {
	if user.MFASecret != nil {
		if secret, err := totp.DecodeSecret(*user.MFASecret); err == nil {
			if totp.Verify(secret, code, s.now(), 1) {
				return true, nil
			}
		}
	}
	return s.repos.BackupCodes.Use(ctx, user.ID, token.SHA256Hex(code), s.now().UTC())
}

// issuePair emite access + refresh y persiste el hash del refresh como
// cabeza de una cadena de rotación nueva.
func (s *Service) issuePair(ctx context.Context, userID string) (*TokenPair, error) {
	role, companyID, err := s.resolver.Primary(ctx, userID)
	if err != nil {
		return nil, err
	}

	access, err := s.issuer.IssueAccess(userID, role.String(), companyID)
	if err != nil {
		return nil, err
	}
	refresh, jti, expiresAt, err := s.issuer.IssueRefresh(userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.RefreshTokens.Create(ctx, repository.CreateRefreshTokenInput{
		UserID:    userID,
		JTI:       jti,
		TokenHash: token.SHA256Hex(refresh),
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(s.issuer.AccessTTL().Seconds()),
	}, nil
}
