package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/trackercrm/tracker-api/internal/core/domain"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

var priorityColors = map[domain.IncidentPriority]string{
	domain.PriorityCritical: "#ef4444",
	domain.PriorityHigh:     "#f59e0b",
	domain.PriorityMedium:   "#4f7cff",
	domain.PriorityLow:      "#62637a",
}

var activityColors = map[domain.ActivityType]string{
	domain.ActivityVisit:    "#22c55e",
	domain.ActivityCall:     "#06b6d4",
	domain.ActivityEmail:    "#8b5cf6",
	domain.ActivityMeeting:  "#f59e0b",
	domain.ActivityDemo:     "#4f7cff",
	domain.ActivityProposal: "#ec4899",
	domain.ActivityClosing:  "#22c55e",
	domain.ActivityOther:    "#62637a",
}

const fallbackColor = "#62637a"

type calendarService struct {
	incidents  ports.IncidentRepository
	activities ports.ActivityRepository
	agents     ports.AgentRepository
	log        zerolog.Logger
}

// NewCalendarService returns the merged events-feed builder: incident
// deadlines plus activity dates, in a FullCalendar-compatible shape.
func NewCalendarService(
	incidents ports.IncidentRepository,
	activities ports.ActivityRepository,
	agents ports.AgentRepository,
	log zerolog.Logger,
) ports.CalendarService {
	return &calendarService{incidents: incidents, activities: activities, agents: agents, log: log}
}

func (s *calendarService) Events(ctx context.Context) ([]ports.CalendarEvent, error) {
	incidents, err := s.incidents.List(ctx, ports.IncidentFilter{})
	if err != nil {
		return nil, fmt.Errorf("calendar: list incidents: %w", err)
	}

	agentIDs, err := s.agents.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("calendar: list agents: %w", err)
	}
	activities, err := s.activities.List(ctx, ports.ActivityFilter{AgentIDs: agentIDs})
	if err != nil {
		return nil, fmt.Errorf("calendar: list activities: %w", err)
	}

	events := make([]ports.CalendarEvent, 0, len(incidents)+len(activities))
	for _, inc := range incidents {
		if inc.Deadline == "" {
			continue
		}
		color := priorityColors[inc.Priority]
		if color == "" {
			color = fallbackColor
		}
		events = append(events, ports.CalendarEvent{
			ID:              "inc-" + strconv.FormatInt(inc.ID, 10),
			Title:           "⚠ " + inc.Title,
			Start:           inc.Deadline,
			BackgroundColor: color,
			BorderColor:     color,
			ExtendedProps: map[string]string{
				"type":      "incident",
				"entity_id": strconv.FormatInt(inc.ID, 10),
				"business":  inc.BusinessName,
				"priority":  string(inc.Priority),
				"status":    string(inc.Status),
			},
		})
	}
	for _, act := range activities {
		color := activityColors[act.Type]
		if color == "" {
			color = fallbackColor
		}
		events = append(events, ports.CalendarEvent{
			ID:              "act-" + strconv.FormatInt(act.ID, 10),
			Title:           "● " + act.Title,
			Start:           act.Date,
			BackgroundColor: color,
			BorderColor:     color,
			ExtendedProps: map[string]string{
				"type":      "activity",
				"entity_id": strconv.FormatInt(act.ID, 10),
				"agent":     strings.TrimSpace(act.AgentName),
				"kind":      string(act.Type),
				"status":    string(act.Status),
			},
		})
	}
	return events, nil
}
