// Package audit registra eventos de seguridad de forma asíncrona.
//
// El registro es best-effort: un fallo del sink nunca afecta la
// operación que lo originó, y los eventos solo se emiten después de
// confirmar el cambio de estado.
package audit

import (
	"context"
	"time"
)

// Event es un evento de auditoría listo para persistir.
type Event struct {
	Action      string
	EntityType  string
	EntityID    string
	ActorUserID string
	CompanyID   string
	IP          string
	UserAgent   string
	Metadata    map[string]any
	OccurredAt  time.Time
}

// Sink persiste eventos. Las implementaciones deben tolerar llamadas
// concurrentes.
type Sink interface {
	Emit(ctx context.Context, e Event) error
}

// NoOpSink descarta todo. Útil en tests y cuando la auditoría está apagada.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) error { return nil }
