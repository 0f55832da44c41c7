// Package rate limita peticiones por cliente. El límite se decide por
// tier en el llamador; el backend (memoria o Redis) solo cuenta.
package rate

import (
	"context"
	"time"
)

// Result describe el veredicto del limitador para una petición.
type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

// Limiter decide si una petición identificada por key entra dentro del
// límite. La ventana es fija por instancia; el límite llega por llamada
// porque distintos prefijos de ruta usan tiers distintos.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int64) (Result, error)
}
