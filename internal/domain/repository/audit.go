package repository

import (
	"context"
	"time"
)

// AuditEntry es un registro append-only del ledger de auditoría.
// No existe path de update ni delete.
type AuditEntry struct {
	ID          string
	Action      string
	EntityType  string
	EntityID    *string
	ActorUserID *string
	CompanyID   *string
	IPAddress   *string
	UserAgent   *string
	Metadata    map[string]any
	CreatedAt   time.Time
}

// AuditRepository define la única operación permitida sobre el ledger.
type AuditRepository interface {
	Append(ctx context.Context, entry AuditEntry) error
}
