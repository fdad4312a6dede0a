package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/trackercrm/tracker-api/internal/core/domain"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

type agentService struct {
	agents   ports.AgentRepository
	sessions ports.SessionRepository
	resets   ports.ResetTokenRepository
	log      zerolog.Logger
}

// NewAgentService returns the agent profile manager. It owns the cascade:
// removing an agent also removes its sessions and reset tokens.
func NewAgentService(
	agents ports.AgentRepository,
	sessions ports.SessionRepository,
	resets ports.ResetTokenRepository,
	log zerolog.Logger,
) ports.AgentService {
	return &agentService{agents: agents, sessions: sessions, resets: resets, log: log}
}

func (s *agentService) List(ctx context.Context, filter ports.AgentFilter) ([]domain.Agent, error) {
	return s.agents.List(ctx, filter)
}

func (s *agentService) Get(ctx context.Context, id int64) (*domain.Agent, error) {
	return s.agents.FindByID(ctx, id)
}

func (s *agentService) Create(ctx context.Context, input ports.CreateAgentInput) (*domain.Agent, error) {
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	agent := &domain.Agent{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Zone:      input.Zone,
		Role:      domain.RoleAgent,
		Active:    active,
	}
	created, err := s.agents.Create(ctx, agent)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	s.log.Info().Int64("agent_id", created.ID).Msg("agent created")
	return created, nil
}

func (s *agentService) Update(ctx context.Context, id int64, input ports.UpdateAgentInput) (*domain.Agent, error) {
	fields := map[string]any{}
	if input.FirstName != nil {
		fields["first_name"] = *input.FirstName
	}
	if input.LastName != nil {
		fields["last_name"] = *input.LastName
	}
	if input.Email != nil {
		fields["email"] = *input.Email
	}
	if input.Phone != nil {
		fields["phone"] = *input.Phone
	}
	if input.Zone != nil {
		fields["zone"] = *input.Zone
	}
	if input.Active != nil {
		fields["active"] = *input.Active
	}
	if len(fields) == 0 {
		return s.agents.FindByID(ctx, id)
	}
	return s.agents.Update(ctx, id, fields)
}

// Delete removes the agent and everything keyed to it. The session and reset
// token rows go first so a failure cannot leave credentials for a vanished
// identity.
func (s *agentService) Delete(ctx context.Context, id int64) error {
	if err := s.sessions.DeleteByAgent(ctx, id); err != nil {
		return fmt.Errorf("delete agent sessions: %w", err)
	}
	if err := s.resets.DeleteByAgent(ctx, id); err != nil {
		return fmt.Errorf("delete agent reset tokens: %w", err)
	}
	if err := s.agents.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete agent: %w", err)
	}
	s.log.Info().Int64("agent_id", id).Msg("agent deleted")
	return nil
}

func (s *agentService) Zones(ctx context.Context) ([]string, error) {
	return s.agents.Zones(ctx)
}
