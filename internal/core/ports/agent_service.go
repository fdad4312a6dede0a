package ports

import (
	"context"

	"github.com/trackercrm/tracker-api/internal/core/domain"
)

// CreateAgentInput carries the fields for an administratively created agent
// profile (no credentials; those arrive through registration).
type CreateAgentInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Zone      string
	Active    *bool
}

// UpdateAgentInput updates a profile; nil fields are left untouched.
type UpdateAgentInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Zone      *string
	Active    *bool
}

// AgentService manages agent profiles. Deleting an agent cascades to its
// sessions and reset tokens.
type AgentService interface {
	List(ctx context.Context, filter AgentFilter) ([]domain.Agent, error)
	Get(ctx context.Context, id int64) (*domain.Agent, error)
	Create(ctx context.Context, input CreateAgentInput) (*domain.Agent, error)
	Update(ctx context.Context, id int64, input UpdateAgentInput) (*domain.Agent, error)
	Delete(ctx context.Context, id int64) error
	Zones(ctx context.Context) ([]string, error)
}
