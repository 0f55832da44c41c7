// Package pg implementa los repositorios del dominio sobre Postgres
// (pgxpool). Todas las operaciones de un solo uso se resuelven con un
// único UPDATE condicional para que no haya ventana de carrera.
package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/machwork/identity/internal/domain/repository"
	"github.com/machwork/identity/internal/observability/logger"
)

// Store agrupa las implementaciones pg de todos los repositorios sobre
// un pool compartido.
type Store struct{ pool *pgxpool.Pool }

// Options ajusta el pool. Cero usa los defaults de pgxpool.
type Options struct {
	MaxConns        int
	ConnMaxLifetime time.Duration
}

func New(ctx context.Context, dsn string, opts Options) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if opts.MaxConns > 0 {
		pcfg.MaxConns = int32(opts.MaxConns)
	}
	if opts.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = opts.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	// Arranque no bloqueante: si la DB está caída igual levantamos,
	// readyz reporta el estado real.
	if err := pool.Ping(ctx); err != nil {
		logger.Named("pg").Warn("startup ping failed", logger.Err(err))
	}
	return &Store{pool: pool}, nil
}

// Pool expone el pool interno (metrics/migraciones).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Accessors: cada repositorio es un tipo chico sobre el pool compartido.

func (s *Store) Users() repository.UserRepository {
	return &UserRepo{pool: s.pool}
}

func (s *Store) Memberships() repository.MembershipRepository {
	return &MembershipRepo{pool: s.pool}
}

func (s *Store) ActionTokens() repository.ActionTokenRepository {
	return &ActionTokenRepo{pool: s.pool}
}

func (s *Store) RefreshTokens() repository.RefreshTokenRepository {
	return &RefreshTokenRepo{pool: s.pool}
}

func (s *Store) BackupCodes() repository.BackupCodeRepository {
	return &BackupCodeRepo{pool: s.pool}
}

func (s *Store) Audit() repository.AuditRepository {
	return &AuditRepo{pool: s.pool}
}

// isUniqueViolation detecta el código 23505 de Postgres.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
