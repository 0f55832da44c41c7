package auth

import (
	"context"
	"strings"

	"github.com/machwork/identity/internal/audit"
	"github.com/machwork/identity/internal/domain/repository"
	"github.com/machwork/identity/internal/security/password"
	"github.com/machwork/identity/internal/security/token"
)

// RegisterInput son los datos de alta de cuenta.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register crea la cuenta y dispara el email de verificación. La cuenta
// nace sin verificar: login rechaza hasta que el token se consuma.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*repository.User, error) {
	email := normalizeEmail(input.Email)
	if !s.cfg.Policy.Validate(input.Password) {
		return nil, ErrWeakPassword
	}

	hash, err := password.Hash(s.cfg.HashParams, input.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repos.Users.Create(ctx, repository.CreateUserInput{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
	})
	if err != nil {
		if repository.IsConflict(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	if err := s.issueVerification(ctx, user); err != nil {
		// la cuenta ya existe; el usuario puede pedir reenvío
		return user, err
	}

	s.emit(ctx, audit.Event{
		Action:      "user.register",
		EntityType:  "user",
		EntityID:    user.ID,
		ActorUserID: user.ID,
		Metadata:    map[string]any{"email": user.Email},
	})
	return user, nil
}

// issueVerification emite el token de verificación y manda el email.
// Solo el sha256 toca el almacén; el token crudo viaja en el link.
func (s *Service) issueVerification(ctx context.Context, user *repository.User) error {
	raw, err := token.GenerateOpaqueToken(32)
	if err != nil {
		return err
	}
	_, err = s.repos.ActionTokens.Create(ctx, repository.CreateActionTokenInput{
		UserID:    user.ID,
		Purpose:   repository.ActionTokenEmailVerification,
		TokenHash: token.SHA256Hex(raw),
		ExpiresAt: s.now().UTC().Add(s.cfg.VerifyTTL),
	})
	if err != nil {
		return err
	}
	to := user.Email
	s.sendMail(func(ctx context.Context) error {
		return s.mailer.SendVerification(ctx, to, raw)
	})
	return nil
}

// VerifyEmail consume el token de verificación y marca el email. Las
// dos escrituras comparten transacción: un fallo no quema el token.
func (s *Service) VerifyEmail(ctx context.Context, rawToken string) error {
	now := s.now().UTC()
	var userID string
	err := s.inTx(ctx, func(ctx context.Context) error {
		id, err := s.repos.ActionTokens.Consume(ctx, repository.ActionTokenEmailVerification, token.SHA256Hex(rawToken), now)
		if err != nil {
			return ErrInvalidOrExpiredToken
		}
		userID = id
		return s.repos.Users.SetEmailVerified(ctx, id, now)
	})
	if err != nil {
		return err
	}
	s.emit(ctx, audit.Event{
		Action:      "user.verify_email",
		EntityType:  "user",
		EntityID:    userID,
		ActorUserID: userID,
	})
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
