package ports

import (
	"context"

	"github.com/trackercrm/tracker-api/internal/core/domain"
)

// SessionRepository defines durable storage for login sessions keyed by their
// opaque token. Lookups for unknown tokens return domain.ErrNoSession;
// transient backend faults surface as distinct errors.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	FindByToken(ctx context.Context, token string) (*domain.Session, error)
	// Delete removes the session with the given token. Deleting an absent
	// token is not an error.
	Delete(ctx context.Context, token string) error
	DeleteByAgent(ctx context.Context, agentID int64) error
	// DeleteExpired removes every session past its expiry and reports how
	// many rows went away.
	DeleteExpired(ctx context.Context) (int64, error)
}
