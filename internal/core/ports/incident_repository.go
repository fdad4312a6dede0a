package ports

import (
	"context"

	"github.com/trackercrm/tracker-api/internal/core/domain"
)

// IncidentFilter narrows incident listings.
type IncidentFilter struct {
	Query      string
	BusinessID int64
	Status     domain.IncidentStatus
	Priority   domain.IncidentPriority
	Category   string
}

// MonthCount is a per-month aggregate bucket.
type MonthCount struct {
	Month string `json:"month"` // YYYY-MM
	Total int64  `json:"total"`
}

// IncidentRepository defines persistence for incidents and their comment
// threads.
type IncidentRepository interface {
	Create(ctx context.Context, incident *domain.Incident) (*domain.Incident, error)
	FindByID(ctx context.Context, id int64) (*domain.Incident, error)
	List(ctx context.Context, filter IncidentFilter) ([]domain.Incident, error)
	ListByBusiness(ctx context.Context, businessID int64) ([]domain.Incident, error)
	Update(ctx context.Context, id int64, fields map[string]any) (*domain.Incident, error)
	Delete(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]string, error)

	ListComments(ctx context.Context, incidentID int64) ([]domain.Comment, error)
	AddComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error

	// Dashboard aggregates. These intentionally count across all incidents
	// regardless of the caller's visibility scope.
	Count(ctx context.Context) (int64, error)
	CountOpen(ctx context.Context) (int64, error)
	CountOverdue(ctx context.Context, today string) (int64, error)
	CountOpenByPriority(ctx context.Context) (map[domain.IncidentPriority]int64, error)
	CountByStatus(ctx context.Context) (map[domain.IncidentStatus]int64, error)
	CountByMonth(ctx context.Context, sinceMonths int) ([]MonthCount, error)
}
