package ports

import (
	"context"

	"github.com/trackercrm/tracker-api/internal/core/domain"
)

// AgentFilter narrows agent listings.
type AgentFilter struct {
	Query  string
	Zone   string
	Active *bool
}

// AgentRepository defines persistence for agent identities.
type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent) (*domain.Agent, error)
	FindByID(ctx context.Context, id int64) (*domain.Agent, error)
	FindByUsername(ctx context.Context, username string) (*domain.Agent, error)
	FindByEmail(ctx context.Context, email string) (*domain.Agent, error)
	List(ctx context.Context, filter AgentFilter) ([]domain.Agent, error)
	Update(ctx context.Context, id int64, fields map[string]any) (*domain.Agent, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error

	// Visibility support. ListIDs returns every agent id; ListIDsBySubgroup
	// returns the ids sharing the given subgroup.
	ListIDs(ctx context.Context) ([]int64, error)
	ListIDsBySubgroup(ctx context.Context, subgroup domain.Subgroup) ([]int64, error)

	CountActiveIn(ctx context.Context, ids []int64) (int64, error)
	Zones(ctx context.Context) ([]string, error)
}
