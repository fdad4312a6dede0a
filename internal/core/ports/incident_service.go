package ports

import (
	"context"

	"github.com/trackercrm/tracker-api/internal/core/domain"
)

// CreateIncidentInput carries the fields for a new incident.
type CreateIncidentInput struct {
	BusinessID  int64
	Title       string
	Description string
	Priority    domain.IncidentPriority
	Status      domain.IncidentStatus
	Category    string
	AssignedTo  string
	Deadline    string
	Resolution  string
}

// UpdateIncidentInput updates an incident; nil fields are left untouched.
type UpdateIncidentInput struct {
	Title       *string
	Description *string
	Priority    *domain.IncidentPriority
	Status      *domain.IncidentStatus
	Category    *string
	AssignedTo  *string
	Deadline    *string
	Resolution  *string
}

// IncidentService manages incidents and their comment threads.
type IncidentService interface {
	List(ctx context.Context, filter IncidentFilter) ([]domain.Incident, error)
	Get(ctx context.Context, id int64) (*domain.Incident, error)
	Create(ctx context.Context, input CreateIncidentInput) (*domain.Incident, error)
	Update(ctx context.Context, id int64, input UpdateIncidentInput) (*domain.Incident, error)
	Delete(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]string, error)

	Comments(ctx context.Context, incidentID int64) ([]domain.Comment, error)
	AddComment(ctx context.Context, incidentID int64, author, content string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error
}
