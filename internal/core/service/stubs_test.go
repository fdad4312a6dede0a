package service

import (
	"context"
	"sync"
	"time"

	"github.com/trackercrm/tracker-api/internal/core/domain"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

// In-memory fakes for the repository ports. They hold clones so tests cannot
// mutate stored state through returned pointers.

type stubAgentRepo struct {
	mu     sync.Mutex
	nextID int64
	agents map[int64]*domain.Agent
}

func newStubAgentRepo() *stubAgentRepo {
	return &stubAgentRepo{agents: make(map[int64]*domain.Agent)}
}

func cloneAgent(a *domain.Agent) *domain.Agent {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAgentRepo) add(a *domain.Agent) *domain.Agent {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	clone := cloneAgent(a)
	clone.ID = r.nextID
	r.agents[clone.ID] = clone
	return cloneAgent(clone)
}

func (r *stubAgentRepo) Create(_ context.Context, agent *domain.Agent) (*domain.Agent, error) {
	r.mu.Lock()
	for _, a := range r.agents {
		if agent.Username != "" && a.Username == agent.Username {
			r.mu.Unlock()
			return nil, domain.ErrDuplicateUsername
		}
	}
	r.mu.Unlock()
	return r.add(agent), nil
}

func (r *stubAgentRepo) FindByID(_ context.Context, id int64) (*domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.agents[id]; ok {
		return cloneAgent(a), nil
	}
	return nil, domain.ErrAgentNotFound
}

func (r *stubAgentRepo) FindByUsername(_ context.Context, username string) (*domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.agents {
		if a.Username == username {
			return cloneAgent(a), nil
		}
	}
	return nil, domain.ErrAgentNotFound
}

func (r *stubAgentRepo) FindByEmail(_ context.Context, email string) (*domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.agents {
		if a.Email == email {
			return cloneAgent(a), nil
		}
	}
	return nil, domain.ErrAgentNotFound
}

func (r *stubAgentRepo) List(_ context.Context, _ ports.AgentFilter) ([]domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Agent, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, *cloneAgent(a))
	}
	return out, nil
}

func (r *stubAgentRepo) Update(_ context.Context, id int64, fields map[string]any) (*domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agents[id]
	if !ok {
		return nil, domain.ErrAgentNotFound
	}
	if v, ok := fields["active"].(bool); ok {
		a.Active = v
	}
	if v, ok := fields["first_name"].(string); ok {
		a.FirstName = v
	}
	return cloneAgent(a), nil
}

func (r *stubAgentRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agents[id]
	if !ok {
		return domain.ErrAgentNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (r *stubAgentRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.agents, id)
	return nil
}

func (r *stubAgentRepo) ListIDs(_ context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *stubAgentRepo) ListIDsBySubgroup(_ context.Context, subgroup domain.Subgroup) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for id, a := range r.agents {
		if a.Subgroup == subgroup {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *stubAgentRepo) CountActiveIn(_ context.Context, ids []int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if a, ok := r.agents[id]; ok && a.Active {
			n++
		}
	}
	return n, nil
}

func (r *stubAgentRepo) Zones(_ context.Context) ([]string, error) {
	return nil, nil
}

type stubSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *stubSessionRepo) Create(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *s
	r.sessions[s.Token] = &clone
	return nil
}

func (r *stubSessionRepo) FindByToken(_ context.Context, token string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[token]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, domain.ErrNoSession
}

func (r *stubSessionRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

func (r *stubSessionRepo) DeleteByAgent(_ context.Context, agentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, s := range r.sessions {
		if s.AgentID == agentID {
			delete(r.sessions, token)
		}
	}
	return nil
}

func (r *stubSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	var n int64
	for token, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, token)
			n++
		}
	}
	return n, nil
}

func (r *stubSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

type stubResetRepo struct {
	mu     sync.Mutex
	agents *stubAgentRepo
	tokens map[string]*domain.ResetToken
}

func newStubResetRepo(agents *stubAgentRepo) *stubResetRepo {
	return &stubResetRepo{agents: agents, tokens: make(map[string]*domain.ResetToken)}
}

func (r *stubResetRepo) Create(_ context.Context, t *domain.ResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *t
	r.tokens[t.Token] = &clone
	return nil
}

func (r *stubResetRepo) Consume(ctx context.Context, token, newHash string) (int64, error) {
	r.mu.Lock()
	t, ok := r.tokens[token]
	if !ok || !t.Consumable(time.Now().UTC()) {
		r.mu.Unlock()
		return 0, domain.ErrInvalidResetToken
	}
	t.Used = true
	agentID := t.AgentID
	r.mu.Unlock()

	if err := r.agents.UpdatePassword(ctx, agentID, newHash); err != nil {
		return 0, domain.ErrInvalidResetToken
	}
	return agentID, nil
}

func (r *stubResetRepo) DeleteByAgent(_ context.Context, agentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, t := range r.tokens {
		if t.AgentID == agentID {
			delete(r.tokens, token)
		}
	}
	return nil
}

func (r *stubResetRepo) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

type stubMailDispatcher struct {
	mu   sync.Mutex
	sent []ports.Email
}

func (d *stubMailDispatcher) Enqueue(msg ports.Email) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, msg)
}

func (d *stubMailDispatcher) messages() []ports.Email {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]ports.Email(nil), d.sent...)
}

type stubThrottle struct {
	denied map[string]bool
}

func (t *stubThrottle) Allow(_ context.Context, key string) (bool, error) {
	return !t.denied[key], nil
}
