package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/trackercrm/tracker-api/internal/core/domain"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

type incidentService struct {
	incidents  ports.IncidentRepository
	businesses ports.BusinessRepository
	log        zerolog.Logger
}

// NewIncidentService returns the incident manager.
func NewIncidentService(
	incidents ports.IncidentRepository,
	businesses ports.BusinessRepository,
	log zerolog.Logger,
) ports.IncidentService {
	return &incidentService{incidents: incidents, businesses: businesses, log: log}
}

func (s *incidentService) List(ctx context.Context, filter ports.IncidentFilter) ([]domain.Incident, error) {
	return s.incidents.List(ctx, filter)
}

func (s *incidentService) Get(ctx context.Context, id int64) (*domain.Incident, error) {
	return s.incidents.FindByID(ctx, id)
}

func (s *incidentService) Create(ctx context.Context, input ports.CreateIncidentInput) (*domain.Incident, error) {
	if _, err := s.businesses.FindByID(ctx, input.BusinessID); err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	status := input.Status
	if status == "" {
		status = domain.IncidentOpen
	}

	now := time.Now().UTC()
	incident := &domain.Incident{
		BusinessID:  input.BusinessID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    priority,
		Status:      status,
		Category:    input.Category,
		AssignedTo:  input.AssignedTo,
		Deadline:    input.Deadline,
		Resolution:  input.Resolution,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.incidents.Create(ctx, incident)
	if err != nil {
		return nil, fmt.Errorf("create incident: %w", err)
	}
	s.log.Info().Int64("incident_id", created.ID).Int64("business_id", created.BusinessID).Msg("incident created")
	return created, nil
}

func (s *incidentService) Update(ctx context.Context, id int64, input ports.UpdateIncidentInput) (*domain.Incident, error) {
	fields := map[string]any{}
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Priority != nil {
		fields["priority"] = *input.Priority
	}
	if input.Status != nil {
		fields["status"] = *input.Status
	}
	if input.Category != nil {
		fields["category"] = *input.Category
	}
	if input.AssignedTo != nil {
		fields["assigned_to"] = *input.AssignedTo
	}
	if input.Deadline != nil {
		fields["deadline"] = *input.Deadline
	}
	if input.Resolution != nil {
		fields["resolution"] = *input.Resolution
	}
	if len(fields) == 0 {
		return s.incidents.FindByID(ctx, id)
	}
	fields["updated_at"] = time.Now().UTC()
	return s.incidents.Update(ctx, id, fields)
}

func (s *incidentService) Delete(ctx context.Context, id int64) error {
	if err := s.incidents.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete incident: %w", err)
	}
	s.log.Info().Int64("incident_id", id).Msg("incident deleted")
	return nil
}

func (s *incidentService) Categories(ctx context.Context) ([]string, error) {
	return s.incidents.Categories(ctx)
}

func (s *incidentService) Comments(ctx context.Context, incidentID int64) ([]domain.Comment, error) {
	return s.incidents.ListComments(ctx, incidentID)
}

func (s *incidentService) AddComment(ctx context.Context, incidentID int64, author, content string) (*domain.Comment, error) {
	if _, err := s.incidents.FindByID(ctx, incidentID); err != nil {
		return nil, err
	}
	if author == "" {
		author = "Anonymous"
	}
	comment := &domain.Comment{
		IncidentID: incidentID,
		Author:     author,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
	return s.incidents.AddComment(ctx, comment)
}

func (s *incidentService) DeleteComment(ctx context.Context, commentID int64) error {
	return s.incidents.DeleteComment(ctx, commentID)
}
