package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/trackercrm/tracker-api/internal/core/domain"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

const statsMonthsBack = 6

type statsService struct {
	agents     ports.AgentRepository
	businesses ports.BusinessRepository
	incidents  ports.IncidentRepository
	activities ports.ActivityRepository
	visibility ports.VisibilityResolver
	log        zerolog.Logger
}

// NewStatsService returns the dashboard aggregator. Agent and activity
// figures are scoped to the caller's visibility set; business and incident
// totals deliberately span the whole roster.
func NewStatsService(
	agents ports.AgentRepository,
	businesses ports.BusinessRepository,
	incidents ports.IncidentRepository,
	activities ports.ActivityRepository,
	visibility ports.VisibilityResolver,
	log zerolog.Logger,
) ports.StatsService {
	return &statsService{
		agents:     agents,
		businesses: businesses,
		incidents:  incidents,
		activities: activities,
		visibility: visibility,
		log:        log,
	}
}

func (s *statsService) Dashboard(ctx context.Context, caller *domain.Agent) (*ports.DashboardStats, error) {
	visible, err := s.visibility.VisibleAgentIDs(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	stats := &ports.DashboardStats{}

	if stats.TotalBusinesses, err = s.businesses.Count(ctx); err != nil {
		return nil, fmt.Errorf("dashboard: count businesses: %w", err)
	}
	if stats.TotalAgents, err = s.agents.CountActiveIn(ctx, visible); err != nil {
		return nil, fmt.Errorf("dashboard: count agents: %w", err)
	}
	if stats.TotalIncidents, err = s.incidents.Count(ctx); err != nil {
		return nil, fmt.Errorf("dashboard: count incidents: %w", err)
	}
	if stats.OpenIncidents, err = s.incidents.CountOpen(ctx); err != nil {
		return nil, fmt.Errorf("dashboard: count open incidents: %w", err)
	}

	today := time.Now().UTC().Format("2006-01-02")
	if stats.OverdueIncidents, err = s.incidents.CountOverdue(ctx, today); err != nil {
		return nil, fmt.Errorf("dashboard: count overdue incidents: %w", err)
	}
	if stats.TotalActivities, err = s.activities.CountByAgents(ctx, visible); err != nil {
		return nil, fmt.Errorf("dashboard: count activities: %w", err)
	}
	if stats.PendingActivities, err = s.activities.CountPendingByAgents(ctx, visible); err != nil {
		return nil, fmt.Errorf("dashboard: count pending activities: %w", err)
	}
	if stats.OpenByPriority, err = s.incidents.CountOpenByPriority(ctx); err != nil {
		return nil, fmt.Errorf("dashboard: incidents by priority: %w", err)
	}
	if stats.IncidentsByStatus, err = s.incidents.CountByStatus(ctx); err != nil {
		return nil, fmt.Errorf("dashboard: incidents by status: %w", err)
	}
	if stats.ActivitiesByType, err = s.activities.CountByTypeForAgents(ctx, visible); err != nil {
		return nil, fmt.Errorf("dashboard: activities by type: %w", err)
	}
	if stats.IncidentsByMonth, err = s.incidents.CountByMonth(ctx, statsMonthsBack); err != nil {
		return nil, fmt.Errorf("dashboard: incidents by month: %w", err)
	}
	if stats.ActivitiesPerAgent, err = s.activities.CountPerAgent(ctx, visible); err != nil {
		return nil, fmt.Errorf("dashboard: activities per agent: %w", err)
	}

	return stats, nil
}
