package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trackercrm/tracker-api/internal/core/domain"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

const minPasswordLen = 8

// AuthConfig carries the tunables of the authentication gateway, resolved
// once at startup.
type AuthConfig struct {
	BaseURL      string
	SessionTTL   time.Duration
	ResetTTL     time.Duration
	BcryptCost   int
	NoMatchDelay time.Duration
}

func (c *AuthConfig) applyDefaults() {
	if c.SessionTTL <= 0 {
		c.SessionTTL = 7 * 24 * time.Hour
	}
	if c.ResetTTL <= 0 {
		c.ResetTTL = time.Hour
	}
}

type authService struct {
	agents   ports.AgentRepository
	sessions ports.SessionRepository
	resets   ports.ResetTokenRepository
	mail     ports.MailDispatcher
	throttle ports.Throttle
	cfg      AuthConfig
	log      zerolog.Logger

	// dummyHash is a real bcrypt hash at the configured cost, verified
	// against on unknown-username logins so they cost as much as a failed
	// password check.
	dummyHash string
}

// NewAuthService wires the authentication gateway: login, logout, session
// validation, registration and the password-reset flow.
func NewAuthService(
	agents ports.AgentRepository,
	sessions ports.SessionRepository,
	resets ports.ResetTokenRepository,
	mail ports.MailDispatcher,
	throttle ports.Throttle,
	cfg AuthConfig,
	log zerolog.Logger,
) ports.AuthService {
	cfg.applyDefaults()
	dummyHash, err := HashPassword(uuid.NewString(), cfg.BcryptCost)
	if err != nil {
		log.Warn().Err(err).Msg("failed to precompute dummy hash")
	}
	return &authService{
		agents:    agents,
		sessions:  sessions,
		resets:    resets,
		mail:      mail,
		throttle:  throttle,
		cfg:       cfg,
		log:       log,
		dummyHash: dummyHash,
	}
}

// Login verifies credentials and opens a new session. A missing username and
// a wrong password both surface as domain.ErrInvalidCredentials so the caller
// cannot probe which usernames exist.
func (s *authService) Login(ctx context.Context, username, password string) (*domain.Agent, string, error) {
	if username == "" || password == "" {
		return nil, "", domain.ErrInvalidCredentials
	}

	agent, err := s.agents.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAgentNotFound) {
			// Burn a full-cost verification against the precomputed hash so
			// the unknown-username path is not measurably faster than a
			// failed password check.
			_ = VerifyPassword(password, s.dummyHash)
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("login: %w", err)
	}

	if !VerifyPassword(password, agent.PasswordHash) {
		return nil, "", domain.ErrInvalidCredentials
	}
	if !agent.Active {
		return nil, "", domain.ErrInactiveAccount
	}

	now := time.Now().UTC()
	session := &domain.Session{
		Token:     uuid.NewString(),
		AgentID:   agent.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	s.log.Info().Int64("agent_id", agent.ID).Str("username", agent.Username).Msg("login")
	return agent, session.Token, nil
}

// Logout revokes the session. Revoking a token that no longer exists is not
// an error, so calling logout twice succeeds both times.
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Authenticate resolves a session token to its active owning agent. Expired
// sessions are deleted on sight; the middleware maps both ErrNoSession and
// ErrExpiredSession to the same 401.
func (s *authService) Authenticate(ctx context.Context, token string) (*domain.Agent, error) {
	if token == "" {
		return nil, domain.ErrNoSession
	}

	session, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNoSession) {
			return nil, domain.ErrNoSession
		}
		return nil, fmt.Errorf("fetch session: %w", err)
	}

	if session.Expired(time.Now().UTC()) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			s.log.Warn().Err(err).Msg("failed to delete expired session")
		}
		return nil, domain.ErrExpiredSession
	}

	agent, err := s.agents.FindByID(ctx, session.AgentID)
	if err != nil {
		if errors.Is(err, domain.ErrAgentNotFound) {
			// Session outlived its owner; treat as unauthenticated.
			s.log.Warn().Int64("agent_id", session.AgentID).Msg("session references missing agent")
			return nil, domain.ErrNoSession
		}
		return nil, fmt.Errorf("load agent: %w", err)
	}
	if !agent.Active {
		return nil, domain.ErrInactiveAccount
	}
	return agent, nil
}

// Register creates a new active agent account with the lowest role.
func (s *authService) Register(ctx context.Context, input ports.RegisterInput) (*domain.Agent, error) {
	if input.Username == "" || input.Password == "" || input.FirstName == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if len(input.Password) < minPasswordLen {
		return nil, domain.ErrWeakPassword
	}

	if _, err := s.agents.FindByUsername(ctx, input.Username); err == nil {
		return nil, domain.ErrDuplicateUsername
	} else if !errors.Is(err, domain.ErrAgentNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	agent := &domain.Agent{
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: hash,
		Role:         domain.RoleAgent,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	created, err := s.agents.Create(ctx, agent)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Int64("agent_id", created.ID).Str("username", created.Username).Msg("agent registered")
	return created, nil
}

// ForgotPassword issues a reset token and dispatches the recovery link. The
// no-match path waits out NoMatchDelay so its latency resembles the match
// path, and the caller receives the same outcome either way.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, "pwreset:"+email)
		if err != nil {
			s.log.Warn().Err(err).Msg("reset throttle unavailable, allowing request")
		} else if !allowed {
			s.log.Info().Str("email", email).Msg("reset request throttled")
			return nil
		}
	}

	agent, err := s.agents.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAgentNotFound) {
			time.Sleep(s.cfg.NoMatchDelay)
			return nil
		}
		return fmt.Errorf("forgot password: %w", err)
	}

	now := time.Now().UTC()
	token := &domain.ResetToken{
		Token:     uuid.NewString(),
		AgentID:   agent.ID,
		ExpiresAt: now.Add(s.cfg.ResetTTL),
		CreatedAt: now,
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.BaseURL, token.Token)
	s.mail.Enqueue(buildResetEmail(agent.Email, agent.FirstName, agent.Username, link))

	s.log.Info().Int64("agent_id", agent.ID).Msg("reset token issued")
	return nil
}

// ResetPassword consumes a reset token and applies the new password. The
// used-flag flip and the password update commit together in the repository.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return domain.ErrInvalidResetToken
	}
	if len(newPassword) < minPasswordLen {
		return domain.ErrWeakPassword
	}

	hash, err := HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	agentID, err := s.resets.Consume(ctx, token, hash)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidResetToken) {
			return domain.ErrInvalidResetToken
		}
		return fmt.Errorf("reset password: %w", err)
	}

	s.log.Info().Int64("agent_id", agentID).Msg("password reset")
	return nil
}
