// Package auth orquesta los flujos de identidad: registro, login,
// rotación de refresh, reset de password y MFA. Las reglas de un solo
// uso viven en el almacén; acá se compone el flujo y se decide la
// taxonomía de errores.
package auth

import (
	"context"
	"time"

	"github.com/machwork/identity/internal/audit"
	"github.com/machwork/identity/internal/domain/repository"
	"github.com/machwork/identity/internal/email"
	"github.com/machwork/identity/internal/jwt"
	"github.com/machwork/identity/internal/observability/logger"
	"github.com/machwork/identity/internal/rbac"
	"github.com/machwork/identity/internal/security/password"
)

// Repos agrupa los repositorios que necesita el servicio. Atomic es el
// runner transaccional del mismo store; nil ejecuta directo (fakes).
type Repos struct {
	Users         repository.UserRepository
	Memberships   repository.MembershipRepository
	ActionTokens  repository.ActionTokenRepository
	RefreshTokens repository.RefreshTokenRepository
	BackupCodes   repository.BackupCodeRepository
	Atomic        repository.Atomic
}

// Config ajusta TTLs y política del servicio.
type Config struct {
	VerifyTTL   time.Duration
	ResetTTL    time.Duration
	MFAIssuer   string
	BackupCodes int
	Policy      password.Policy
	HashParams  password.Params
}

// Service orquesta los flujos de autenticación.
type Service struct {
	repos    Repos
	issuer   *jwt.Issuer
	verifier *jwt.Verifier
	resolver *rbac.Resolver
	mailer   *email.Mailer
	auditor  *audit.Dispatcher
	cfg      Config
	now      func() time.Time
}

// New construye el Service. auditor nil desactiva la auditoría.
func New(repos Repos, issuer *jwt.Issuer, verifier *jwt.Verifier, resolver *rbac.Resolver, mailer *email.Mailer, auditor *audit.Dispatcher, cfg Config) *Service {
	if cfg.VerifyTTL <= 0 {
		cfg.VerifyTTL = 24 * time.Hour
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = 2 * time.Hour
	}
	if cfg.BackupCodes <= 0 {
		cfg.BackupCodes = 8
	}
	if cfg.MFAIssuer == "" {
		cfg.MFAIssuer = "MachWork"
	}
	if cfg.HashParams == (password.Params{}) {
		cfg.HashParams = password.Default
	}
	return &Service{
		repos:    repos,
		issuer:   issuer,
		verifier: verifier,
		resolver: resolver,
		mailer:   mailer,
		auditor:  auditor,
		cfg:      cfg,
		now:      time.Now,
	}
}

// inTx corre fn dentro de una transacción si el store ofrece una.
func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.repos.Atomic == nil {
		return fn(ctx)
	}
	return s.repos.Atomic.InTx(ctx, fn)
}

// emit registra el evento después de que el cambio de estado ya quedó
// persistido. Best-effort: nunca falla el flujo.
func (s *Service) emit(ctx context.Context, e audit.Event) {
	if s.auditor == nil {
		return
	}
	if meta, ok := audit.MetaFromContext(ctx); ok {
		if e.IP == "" {
			e.IP = meta.IP
		}
		if e.UserAgent == "" {
			e.UserAgent = meta.UserAgent
		}
	}
	s.auditor.Emit(ctx, e)
}

// sendMail dispara el envío sin bloquear el request path.
func (s *Service) sendMail(send func(ctx context.Context) error) {
	if s.mailer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := send(ctx); err != nil {
			logger.Named("auth").Warn("email send failed", logger.Err(err))
		}
	}()
}
