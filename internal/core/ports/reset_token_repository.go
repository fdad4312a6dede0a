package ports

import (
	"context"

	"github.com/trackercrm/tracker-api/internal/core/domain"
)

// ResetTokenRepository defines storage for single-use password reset tokens.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *domain.ResetToken) error
	// Consume atomically locates an unused, unexpired token, marks it used,
	// and applies newPasswordHash to the owning agent. Both writes commit
	// together or not at all. Missing, expired and already-used tokens are
	// rejected uniformly with domain.ErrInvalidResetToken.
	Consume(ctx context.Context, token, newPasswordHash string) (int64, error)
	DeleteByAgent(ctx context.Context, agentID int64) error
	DeleteExpired(ctx context.Context) (int64, error)
}
