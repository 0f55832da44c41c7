package auth

import (
	"context"

	"github.com/machwork/identity/internal/audit"
	"github.com/machwork/identity/internal/security/token"
	"github.com/machwork/identity/internal/security/totp"
)

// MFASetup es el resultado de iniciar el enrolamiento: el secreto en
// base32, la URL otpauth para el QR y los backup codes crudos. Se
// muestran una sola vez; el almacén solo ve hashes.
type MFASetup struct {
	Secret      string
	OTPAuthURL  string
	BackupCodes []string
}

// MFAInitiate genera un secreto TOTP en estado pendiente y el pool de
// backup codes. MFA no queda activo hasta que MFAConfirm pruebe que el
// autenticador funciona. Reintentar el enrolamiento regenera todo.
func (s *Service) MFAInitiate(ctx context.Context, userID string) (*MFASetup, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.MFAEnabled {
		return nil, ErrMFAAlreadyEnabled
	}

	_, b32, err := totp.GenerateSecret()
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, s.cfg.BackupCodes)
	hashes := make([]string, 0, s.cfg.BackupCodes)
	for i := 0; i < s.cfg.BackupCodes; i++ {
		c, err := token.GenerateBackupCode()
		if err != nil {
			return nil, err
		}
		codes = append(codes, c)
		hashes = append(hashes, token.SHA256Hex(c))
	}

	if err := s.repos.Users.SetMFASecret(ctx, userID, b32); err != nil {
		return nil, err
	}
	if err := s.repos.BackupCodes.Replace(ctx, userID, hashes); err != nil {
		return nil, err
	}

	s.emit(ctx, audit.Event{
		Action:      "user.mfa_initiate",
		EntityType:  "user",
		EntityID:    userID,
		ActorUserID: userID,
	})
	return &MFASetup{
		Secret:      b32,
		OTPAuthURL:  totp.OTPAuthURL(s.cfg.MFAIssuer, user.Email, b32),
		BackupCodes: codes,
	}, nil
}

// MFAConfirm valida el primer código del autenticador y activa MFA.
func (s *Service) MFAConfirm(ctx context.Context, userID, code string) error {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.MFAEnabled {
		return ErrMFAAlreadyEnabled
	}
	if user.MFASecret == nil {
		return ErrMFANotInitiated
	}

	secret, err := totp.DecodeSecret(*user.MFASecret)
	if err != nil {
		return ErrMFANotInitiated
	}
	if !totp.Verify(secret, code, s.now(), 1) {
		return ErrInvalidMFACode
	}

	if err := s.repos.Users.EnableMFA(ctx, userID); err != nil {
		return err
	}

	s.emit(ctx, audit.Event{
		Action:      "user.mfa_enable",
		EntityType:  "user",
		EntityID:    userID,
		ActorUserID: userID,
	})
	return nil
}

// MFADisable apaga MFA previa validación del segundo factor y borra el
// pool de backup codes.
func (s *Service) MFADisable(ctx context.Context, userID, code string) error {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.MFAEnabled {
		return ErrMFANotEnabled
	}

	ok, err := s.checkSecondFactor(ctx, user, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidMFACode
	}

	if err := s.repos.Users.DisableMFA(ctx, userID); err != nil {
		return err
	}
	if err := s.repos.BackupCodes.DeleteAll(ctx, userID); err != nil {
		return err
	}

	s.emit(ctx, audit.Event{
		Action:      "user.mfa_disable",
		EntityType:  "user",
		EntityID:    userID,
		ActorUserID: userID,
	})
	return nil
}
