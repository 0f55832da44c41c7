package rate

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter: sliding window en memoria. Guarda por key los
// timestamps de las peticiones aceptadas dentro de la ventana; una
// petición rechazada no se registra, así que no extiende el castigo.
// Las keys inactivas expiran solas vía go-cache.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries *gocache.Cache
	window  time.Duration
	now     func() time.Time
}

func NewMemoryLimiter(window time.Duration) *MemoryLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		entries: gocache.New(window, 2*window),
		window:  window,
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int64) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	var hits []time.Time
	if v, ok := l.entries.Get(key); ok {
		hits = v.([]time.Time)
	}

	// purgar lo que salió de la ventana
	live := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			live = append(live, t)
		}
	}

	if int64(len(live)) >= limit {
		retry := l.window - now.Sub(live[0])
		if retry < 0 {
			retry = 0
		}
		l.entries.Set(key, live, l.window)
		return Result{
			Allowed:     false,
			Remaining:   0,
			RetryAfter:  retry,
			WindowTTL:   retry,
			CurrentHits: int64(len(live)),
		}, nil
	}

	live = append(live, now)
	l.entries.Set(key, live, l.window)
	return Result{
		Allowed:     true,
		Remaining:   limit - int64(len(live)),
		WindowTTL:   l.window,
		CurrentHits: int64(len(live)),
	}, nil
}
