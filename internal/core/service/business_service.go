package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/trackercrm/tracker-api/internal/core/domain"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

type businessService struct {
	businesses ports.BusinessRepository
	incidents  ports.IncidentRepository
	log        zerolog.Logger
}

// NewBusinessService returns the customer-business manager.
func NewBusinessService(
	businesses ports.BusinessRepository,
	incidents ports.IncidentRepository,
	log zerolog.Logger,
) ports.BusinessService {
	return &businessService{businesses: businesses, incidents: incidents, log: log}
}

func (s *businessService) List(ctx context.Context, filter ports.BusinessFilter) ([]domain.Business, error) {
	return s.businesses.List(ctx, filter)
}

func (s *businessService) Get(ctx context.Context, id int64) (*domain.Business, error) {
	return s.businesses.FindByID(ctx, id)
}

func (s *businessService) Create(ctx context.Context, input ports.CreateBusinessInput) (*domain.Business, error) {
	business := &domain.Business{
		Name:      input.Name,
		Sector:    input.Sector,
		Phone:     input.Phone,
		Email:     input.Email,
		Address:   input.Address,
		Notes:     input.Notes,
		CreatedAt: time.Now().UTC(),
	}
	created, err := s.businesses.Create(ctx, business)
	if err != nil {
		return nil, fmt.Errorf("create business: %w", err)
	}
	s.log.Info().Int64("business_id", created.ID).Str("name", created.Name).Msg("business created")
	return created, nil
}

func (s *businessService) Update(ctx context.Context, id int64, input ports.UpdateBusinessInput) (*domain.Business, error) {
	fields := map[string]any{}
	if input.Name != nil {
		fields["name"] = *input.Name
	}
	if input.Sector != nil {
		fields["sector"] = *input.Sector
	}
	if input.Phone != nil {
		fields["phone"] = *input.Phone
	}
	if input.Email != nil {
		fields["email"] = *input.Email
	}
	if input.Address != nil {
		fields["address"] = *input.Address
	}
	if input.Notes != nil {
		fields["notes"] = *input.Notes
	}
	if len(fields) == 0 {
		return s.businesses.FindByID(ctx, id)
	}
	return s.businesses.Update(ctx, id, fields)
}

func (s *businessService) Delete(ctx context.Context, id int64) error {
	if err := s.businesses.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete business: %w", err)
	}
	s.log.Info().Int64("business_id", id).Msg("business deleted")
	return nil
}

func (s *businessService) Incidents(ctx context.Context, businessID int64) ([]domain.Incident, error) {
	return s.incidents.ListByBusiness(ctx, businessID)
}

func (s *businessService) Sectors(ctx context.Context) ([]string, error) {
	return s.businesses.Sectors(ctx)
}
