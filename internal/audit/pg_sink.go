package audit

import (
	"context"

	"github.com/machwork/identity/internal/domain/repository"
)

// PGSink persiste eventos en el ledger append-only de Postgres.
type PGSink struct {
	repo repository.AuditRepository
}

func NewPGSink(repo repository.AuditRepository) *PGSink {
	return &PGSink{repo: repo}
}

func (s *PGSink) Emit(ctx context.Context, e Event) error {
	entry := repository.AuditEntry{
		Action:     e.Action,
		EntityType: e.EntityType,
		Metadata:   e.Metadata,
		CreatedAt:  e.OccurredAt,
	}
	if e.EntityID != "" {
		entry.EntityID = &e.EntityID
	}
	if e.ActorUserID != "" {
		entry.ActorUserID = &e.ActorUserID
	}
	if e.CompanyID != "" {
		entry.CompanyID = &e.CompanyID
	}
	if e.IP != "" {
		entry.IPAddress = &e.IP
	}
	if e.UserAgent != "" {
		entry.UserAgent = &e.UserAgent
	}
	return s.repo.Append(ctx, entry)
}
