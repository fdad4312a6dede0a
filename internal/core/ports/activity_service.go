package ports

import (
	"context"

	"github.com/trackercrm/tracker-api/internal/core/domain"
)

// CreateActivityInput carries the fields for a new activity.
type CreateActivityInput struct {
	AgentID     int64
	BusinessID  int64
	Type        domain.ActivityType
	Title       string
	Description string
	Outcome     string
	Status      domain.ActivityStatus
	Date        string
	DurationMin int
}

// UpdateActivityInput updates an activity; nil fields are left untouched.
type UpdateActivityInput struct {
	AgentID     *int64
	BusinessID  *int64
	Type        *domain.ActivityType
	Title       *string
	Description *string
	Outcome     *string
	Status      *domain.ActivityStatus
	Date        *string
	DurationMin *int
}

// ActivityQuery is the caller-supplied portion of an activity listing; the
// service combines it with the caller's visibility set.
type ActivityQuery struct {
	Query      string
	AgentID    int64
	BusinessID int64
	Type       domain.ActivityType
	Status     domain.ActivityStatus
}

// ActivityService manages activities. Every listing is scoped to the agents
// the caller is allowed to see.
type ActivityService interface {
	List(ctx context.Context, caller *domain.Agent, query ActivityQuery) ([]domain.Activity, error)
	Get(ctx context.Context, id int64) (*domain.Activity, error)
	Create(ctx context.Context, input CreateActivityInput) (*domain.Activity, error)
	Update(ctx context.Context, id int64, input UpdateActivityInput) (*domain.Activity, error)
	Delete(ctx context.Context, id int64) error
	ListByAgent(ctx context.Context, agentID int64) ([]domain.Activity, error)
}
