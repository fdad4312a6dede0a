package ports

import (
	"context"

	"github.com/trackercrm/tracker-api/internal/core/domain"
)

// RegisterInput carries the fields accepted at self-registration. New accounts
// always start as active agents.
type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// AuthService is the request-facing authentication gateway.
type AuthService interface {
	// Login verifies credentials and creates a session, returning its opaque
	// token. Unknown usernames and wrong passwords fail identically with
	// domain.ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (*domain.Agent, string, error)
	// Logout revokes the given session token. Revoking an absent token
	// succeeds.
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a session token to its active owning agent.
	Authenticate(ctx context.Context, token string) (*domain.Agent, error)
	Register(ctx context.Context, input RegisterInput) (*domain.Agent, error)
	// ForgotPassword issues a reset token for the matching account and
	// dispatches the reset link. It behaves identically, including latency,
	// whether or not the email matches an account.
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// VisibilityResolver computes the set of agent ids a caller may see.
type VisibilityResolver interface {
	VisibleAgentIDs(ctx context.Context, caller *domain.Agent) ([]int64, error)
}

// Throttle rate-limits sensitive operations by key.
type Throttle interface {
	// Allow reports whether the keyed operation may proceed and records the
	// attempt.
	Allow(ctx context.Context, key string) (bool, error)
}
