package auth

import (
	"context"
	"time"

	"github.com/machwork/identity/internal/observability/logger"
)

// CleanupExpiredTokens elimina action tokens usados o vencidos.
func (s *Service) CleanupExpiredTokens(ctx context.Context) (int, error) {
	return s.repos.ActionTokens.DeleteExpired(ctx)
}

// RunCleanupLoop ejecuta el cleanup periódicamente hasta que el context
// se cancele.
func (s *Service) RunCleanupLoop(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Hour
	}
	log := logger.Named("auth.cleanup")
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.CleanupExpiredTokens(ctx)
			if err != nil {
				log.Warn("cleanup failed", logger.Err(err))
				continue
			}
			if n > 0 {
				log.Info("expired tokens removed", logger.Int("count", n))
			}
		}
	}
}
