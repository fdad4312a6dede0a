package service

import (
	"context"
	"fmt"

	"github.com/trackercrm/tracker-api/internal/core/domain"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

type visibilityResolver struct {
	agents ports.AgentRepository
}

// NewVisibilityResolver returns the role-based row-visibility resolver:
// administrators and bosses see every agent, a group boss sees its own
// subgroup plus itself, and an agent sees only itself.
func NewVisibilityResolver(agents ports.AgentRepository) ports.VisibilityResolver {
	return &visibilityResolver{agents: agents}
}

func (r *visibilityResolver) VisibleAgentIDs(ctx context.Context, caller *domain.Agent) ([]int64, error) {
	switch caller.Role {
	case domain.RoleAdministrator, domain.RoleBoss:
		return r.agents.ListIDs(ctx)
	case domain.RoleGroupBoss:
		ids, err := r.agents.ListIDsBySubgroup(ctx, caller.Subgroup)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if id == caller.ID {
				return ids, nil
			}
		}
		return append(ids, caller.ID), nil
	case domain.RoleAgent:
		return []int64{caller.ID}, nil
	default:
		return nil, fmt.Errorf("visibility: unknown role %q", caller.Role)
	}
}
