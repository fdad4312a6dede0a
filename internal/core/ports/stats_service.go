package ports

import (
	"context"

	"github.com/trackercrm/tracker-api/internal/core/domain"
)

// DashboardStats aggregates the landing-page numbers. Agent and activity
// figures honour the caller's visibility set; business and incident totals
// are counted across the whole roster.
type DashboardStats struct {
	TotalBusinesses    int64                              `json:"total_businesses"`
	TotalAgents        int64                              `json:"total_agents"`
	TotalIncidents     int64                              `json:"total_incidents"`
	OpenIncidents      int64                              `json:"open_incidents"`
	OverdueIncidents   int64                              `json:"overdue_incidents"`
	TotalActivities    int64                              `json:"total_activities"`
	PendingActivities  int64                              `json:"pending_activities"`
	IncidentsByStatus  map[domain.IncidentStatus]int64    `json:"incidents_by_status"`
	OpenByPriority     map[domain.IncidentPriority]int64  `json:"incidents_by_priority"`
	ActivitiesByType   map[domain.ActivityType]int64      `json:"activities_by_type"`
	IncidentsByMonth   []MonthCount                       `json:"incidents_by_month"`
	ActivitiesPerAgent []AgentActivityCount               `json:"activities_per_agent"`
}

// StatsService computes the dashboard aggregates for a caller.
type StatsService interface {
	Dashboard(ctx context.Context, caller *domain.Agent) (*DashboardStats, error)
}

// CalendarEvent is a calendar-feed entry derived from an incident deadline or
// an activity date.
type CalendarEvent struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Start           string            `json:"start"`
	BackgroundColor string            `json:"backgroundColor"`
	BorderColor     string            `json:"borderColor"`
	ExtendedProps   map[string]string `json:"extendedProps"`
}

// CalendarService assembles the merged events feed.
type CalendarService interface {
	Events(ctx context.Context) ([]CalendarEvent, error)
}
