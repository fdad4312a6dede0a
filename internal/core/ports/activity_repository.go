package ports

import (
	"context"

	"github.com/trackercrm/tracker-api/internal/core/domain"
)

// ActivityFilter narrows activity listings. AgentIDs is mandatory and carries
// the caller's visibility set; an activity outside it is never returned.
type ActivityFilter struct {
	AgentIDs   []int64
	Query      string
	AgentID    int64
	BusinessID int64
	Type       domain.ActivityType
	Status     domain.ActivityStatus
}

// AgentActivityCount pairs an agent's display name with an activity total.
type AgentActivityCount struct {
	Agent string `json:"agent"`
	Total int64  `json:"total"`
}

// ActivityRepository defines persistence for agent activities.
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) (*domain.Activity, error)
	FindByID(ctx context.Context, id int64) (*domain.Activity, error)
	List(ctx context.Context, filter ActivityFilter) ([]domain.Activity, error)
	ListByAgent(ctx context.Context, agentID int64) ([]domain.Activity, error)
	Update(ctx context.Context, id int64, fields map[string]any) (*domain.Activity, error)
	Delete(ctx context.Context, id int64) error

	// Scoped dashboard aggregates.
	CountByAgents(ctx context.Context, agentIDs []int64) (int64, error)
	CountPendingByAgents(ctx context.Context, agentIDs []int64) (int64, error)
	CountByTypeForAgents(ctx context.Context, agentIDs []int64) (map[domain.ActivityType]int64, error)
	CountPerAgent(ctx context.Context, agentIDs []int64) ([]AgentActivityCount, error)
}
