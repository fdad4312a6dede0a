package ports

import (
	"context"

	"github.com/trackercrm/tracker-api/internal/core/domain"
)

// BusinessFilter narrows business listings.
type BusinessFilter struct {
	Query  string
	Sector string
}

// BusinessRepository defines persistence for customer businesses.
type BusinessRepository interface {
	Create(ctx context.Context, business *domain.Business) (*domain.Business, error)
	FindByID(ctx context.Context, id int64) (*domain.Business, error)
	// List returns businesses with incident aggregates joined in.
	List(ctx context.Context, filter BusinessFilter) ([]domain.Business, error)
	Update(ctx context.Context, id int64, fields map[string]any) (*domain.Business, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	Sectors(ctx context.Context) ([]string, error)
}
