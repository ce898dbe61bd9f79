package jobs

import (
	"context"
	"fmt"

	"github.com/opositest/notification-service/internal/services"
)

// TokenCleanupJob garbage-collects expired unsubscribe tokens.
type TokenCleanupJob struct {
	Tokens *services.TokenService
}

func NewTokenCleanupJob(tokens *services.TokenService) *TokenCleanupJob {
	return &TokenCleanupJob{Tokens: tokens}
}

// RunCleanup deletes expired token rows.
func (j *TokenCleanupJob) RunCleanup(ctx context.Context) error {
	if err := j.Tokens.CleanupExpired(ctx); err != nil {
		return fmt.Errorf("token cleanup failed: %w", err)
	}
	return nil
}
