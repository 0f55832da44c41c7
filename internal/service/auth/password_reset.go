package auth

import (
	"context"

	"github.com/machwork/identity/internal/audit"
	"github.com/machwork/identity/internal/domain/repository"
	"github.com/machwork/identity/internal/security/password"
	"github.com/machwork/identity/internal/security/token"
)

// ForgotPassword emite un token de reset si la cuenta existe. La
// respuesta es idéntica exista o no: no se filtra qué emails tienen
// cuenta.
func (s *Service) ForgotPassword(ctx context.Context, rawEmail string) error {
	user, err := s.repos.Users.GetByEmail(ctx, normalizeEmail(rawEmail))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil
		}
		return err
	}

	raw, err := token.GenerateOpaqueToken(32)
	if err != nil {
		return err
	}
	_, err = s.repos.ActionTokens.Create(ctx, repository.CreateActionTokenInput{
		UserID:    user.ID,
		Purpose:   repository.ActionTokenPasswordReset,
		TokenHash: token.SHA256Hex(raw),
		ExpiresAt: s.now().UTC().Add(s.cfg.ResetTTL),
	})
	if err != nil {
		return err
	}

	to := user.Email
	s.sendMail(func(ctx context.Context) error {
		return s.mailer.SendPasswordReset(ctx, to, raw)
	})

	s.emit(ctx, audit.Event{
		Action:      "user.forgot_password",
		EntityType:  "user",
		EntityID:    user.ID,
		ActorUserID: user.ID,
	})
	return nil
}

// ResetPassword consume el token, cambia el hash y revoca todas las
// sesiones: un password filtrado no deja refresh tokens vivos.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if !s.cfg.Policy.Validate(newPassword) {
		return ErrWeakPassword
	}

	hash, err := password.Hash(s.cfg.HashParams, newPassword)
	if err != nil {
		return err
	}

	// consumo del token, cambio de hash y revocación en una transacción
	now := s.now().UTC()
	var userID string
	var revoked int
	err = s.inTx(ctx, func(ctx context.Context) error {
		id, err := s.repos.ActionTokens.Consume(ctx, repository.ActionTokenPasswordReset, token.SHA256Hex(rawToken), now)
		if err != nil {
			return ErrInvalidOrExpiredToken
		}
		userID = id
		if err := s.repos.Users.UpdatePasswordHash(ctx, id, hash); err != nil {
			return err
		}
		revoked, _ = s.repos.RefreshTokens.RevokeAllForUser(ctx, id)
		return nil
	})
	if err != nil {
		return err
	}

	s.emit(ctx, audit.Event{
		Action:      "user.reset_password",
		EntityType:  "user",
		EntityID:    userID,
		ActorUserID: userID,
		Metadata:    map[string]any{"sessions_revoked": revoked},
	})
	return nil
}
