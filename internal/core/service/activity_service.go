package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/trackercrm/tracker-api/internal/core/domain"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

type activityService struct {
	activities ports.ActivityRepository
	agents     ports.AgentRepository
	visibility ports.VisibilityResolver
	log        zerolog.Logger
}

// NewActivityService returns the activity manager. Listings pass through the
// visibility resolver, so a caller only ever sees work belonging to agents in
// its visibility set.
func NewActivityService(
	activities ports.ActivityRepository,
	agents ports.AgentRepository,
	visibility ports.VisibilityResolver,
	log zerolog.Logger,
) ports.ActivityService {
	return &activityService{activities: activities, agents: agents, visibility: visibility, log: log}
}

func (s *activityService) List(ctx context.Context, caller *domain.Agent, query ports.ActivityQuery) ([]domain.Activity, error) {
	visible, err := s.visibility.VisibleAgentIDs(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return s.activities.List(ctx, ports.ActivityFilter{
		AgentIDs:   visible,
		Query:      query.Query,
		AgentID:    query.AgentID,
		BusinessID: query.BusinessID,
		Type:       query.Type,
		Status:     query.Status,
	})
}

func (s *activityService) Get(ctx context.Context, id int64) (*domain.Activity, error) {
	return s.activities.FindByID(ctx, id)
}

func (s *activityService) Create(ctx context.Context, input ports.CreateActivityInput) (*domain.Activity, error) {
	if _, err := s.agents.FindByID(ctx, input.AgentID); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = domain.ActivityPending
	}

	now := time.Now().UTC()
	activity := &domain.Activity{
		AgentID:     input.AgentID,
		BusinessID:  input.BusinessID,
		Type:        input.Type,
		Title:       input.Title,
		Description: input.Description,
		Outcome:     input.Outcome,
		Status:      status,
		Date:        input.Date,
		DurationMin: input.DurationMin,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.activities.Create(ctx, activity)
	if err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}
	s.log.Info().Int64("activity_id", created.ID).Int64("agent_id", created.AgentID).Msg("activity created")
	return created, nil
}

func (s *activityService) Update(ctx context.Context, id int64, input ports.UpdateActivityInput) (*domain.Activity, error) {
	fields := map[string]any{}
	if input.AgentID != nil {
		fields["agent_id"] = *input.AgentID
	}
	if input.BusinessID != nil {
		fields["business_id"] = *input.BusinessID
	}
	if input.Type != nil {
		fields["type"] = *input.Type
	}
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Outcome != nil {
		fields["outcome"] = *input.Outcome
	}
	if input.Status != nil {
		fields["status"] = *input.Status
	}
	if input.Date != nil {
		fields["date"] = *input.Date
	}
	if input.DurationMin != nil {
		fields["duration_min"] = *input.DurationMin
	}
	if len(fields) == 0 {
		return s.activities.FindByID(ctx, id)
	}
	fields["updated_at"] = time.Now().UTC()
	return s.activities.Update(ctx, id, fields)
}

func (s *activityService) Delete(ctx context.Context, id int64) error {
	if err := s.activities.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	s.log.Info().Int64("activity_id", id).Msg("activity deleted")
	return nil
}

func (s *activityService) ListByAgent(ctx context.Context, agentID int64) ([]domain.Activity, error) {
	return s.activities.ListByAgent(ctx, agentID)
}
