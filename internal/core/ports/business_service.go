package ports

import (
	"context"

	"github.com/trackercrm/tracker-api/internal/core/domain"
)

// CreateBusinessInput carries the fields for a new business.
type CreateBusinessInput struct {
	Name    string
	Sector  string
	Phone   string
	Email   string
	Address string
	Notes   string
}

// UpdateBusinessInput updates a business; nil fields are left untouched.
type UpdateBusinessInput struct {
	Name    *string
	Sector  *string
	Phone   *string
	Email   *string
	Address *string
	Notes   *string
}

// BusinessService manages customer businesses.
type BusinessService interface {
	List(ctx context.Context, filter BusinessFilter) ([]domain.Business, error)
	Get(ctx context.Context, id int64) (*domain.Business, error)
	Create(ctx context.Context, input CreateBusinessInput) (*domain.Business, error)
	Update(ctx context.Context, id int64, input UpdateBusinessInput) (*domain.Business, error)
	Delete(ctx context.Context, id int64) error
	Incidents(ctx context.Context, businessID int64) ([]domain.Incident, error)
	Sectors(ctx context.Context) ([]string, error)
}
