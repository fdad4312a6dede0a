package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/trackercrm/tracker-api/internal/core/domain"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

type authFixture struct {
	agents   *stubAgentRepo
	sessions *stubSessionRepo
	resets   *stubResetRepo
	mail     *stubMailDispatcher
	throttle *stubThrottle
	svc      ports.AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	agents := newStubAgentRepo()
	sessions := newStubSessionRepo()
	resets := newStubResetRepo(agents)
	mail := &stubMailDispatcher{}
	throttle := &stubThrottle{denied: make(map[string]bool)}
	svc := NewAuthService(agents, sessions, resets, mail, throttle, AuthConfig{
		BaseURL:      "http://localhost:8080",
		SessionTTL:   time.Hour,
		ResetTTL:     time.Hour,
		BcryptCost:   4, // keep the hashing cheap in tests
		NoMatchDelay: time.Millisecond,
	}, zerolog.Nop())
	return &authFixture{agents: agents, sessions: sessions, resets: resets, mail: mail, throttle: throttle, svc: svc}
}

func (f *authFixture) seedAgent(t *testing.T, username, password string, active bool) *domain.Agent {
	t.Helper()
	hash, err := HashPassword(password, 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return f.agents.add(&domain.Agent{
		Username:     username,
		FirstName:    "Ana",
		Email:        username + "@tracker.test",
		PasswordHash: hash,
		Role:         domain.RoleAgent,
		Active:       active,
	})
}

func TestLoginSuccessOpensSession(t *testing.T) {
	f := newAuthFixture(t)
	seeded := f.seedAgent(t, "ana", "hunter2hunter2", true)
	ctx := context.Background()

	agent, token, err := f.svc.Login(ctx, "ana", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if agent.ID != seeded.ID {
		t.Fatalf("got agent %d, want %d", agent.ID, seeded.ID)
	}
	if token == "" {
		t.Fatal("expected a session token")
	}

	got, err := f.svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != seeded.ID {
		t.Fatalf("authenticated as agent %d, want %d", got.ID, seeded.ID)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAgent(t, "ana", "hunter2hunter2", true)
	ctx := context.Background()

	cases := map[string]struct {
		username string
		password string
	}{
		"unknown username": {"nobody", "hunter2hunter2"},
		"wrong password":   {"ana", "wrong-password"},
		"empty username":   {"", "hunter2hunter2"},
		"empty password":   {"ana", ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := f.svc.Login(ctx, tc.username, tc.password)
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("got %v, want ErrInvalidCredentials", err)
			}
		})
	}
	if f.sessions.count() != 0 {
		t.Fatalf("failed logins must not create sessions, found %d", f.sessions.count())
	}
}

func TestLoginUnknownUsernameBurnsFullCostVerify(t *testing.T) {
	agents := newStubAgentRepo()
	svc := NewAuthService(agents, newStubSessionRepo(), newStubResetRepo(agents), &stubMailDispatcher{},
		&stubThrottle{denied: map[string]bool{}}, AuthConfig{
			BaseURL:      "http://localhost:8080",
			BcryptCost:   10,
			NoMatchDelay: time.Millisecond,
		}, zerolog.Nop())

	hash, err := HashPassword("hunter2hunter2", 10)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	agents.add(&domain.Agent{Username: "ana", PasswordHash: hash, Role: domain.RoleAgent, Active: true})
	ctx := context.Background()

	// The precomputed hash must be a real bcrypt hash at the configured cost.
	dummy := svc.(*authService).dummyHash
	cost, err := bcrypt.Cost([]byte(dummy))
	if err != nil {
		t.Fatalf("dummy hash is not a bcrypt hash: %v", err)
	}
	if cost != 10 {
		t.Fatalf("dummy hash cost %d, want 10", cost)
	}

	// The unknown-username path may not be measurably cheaper than a wrong
	// password: both burn one verification at the configured cost.
	start := time.Now()
	if _, _, err := svc.Login(ctx, "ana", "wrong-password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
	wrongPassword := time.Since(start)

	start = time.Now()
	if _, _, err := svc.Login(ctx, "nobody", "wrong-password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
	unknownUser := time.Since(start)

	if unknownUser < wrongPassword/4 {
		t.Fatalf("unknown-username login took %v, wrong-password took %v: timing leaks username existence",
			unknownUser, wrongPassword)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAgent(t, "ana", "hunter2hunter2", false)

	_, _, err := f.svc.Login(context.Background(), "ana", "hunter2hunter2")
	if !errors.Is(err, domain.ErrInactiveAccount) {
		t.Fatalf("got %v, want ErrInactiveAccount", err)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAgent(t, "ana", "hunter2hunter2", true)
	ctx := context.Background()

	_, token, err := f.svc.Login(ctx, "ana", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := f.svc.Logout(ctx, token); err != nil {
		t.Fatalf("first Logout: %v", err)
	}
	if err := f.svc.Logout(ctx, token); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
	if err := f.svc.Logout(ctx, ""); err != nil {
		t.Fatalf("Logout with empty token: %v", err)
	}

	if _, err := f.svc.Authenticate(ctx, token); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("got %v, want ErrNoSession after logout", err)
	}
}

func TestAuthenticateRejectsMissingAndUnknownTokens(t *testing.T) {
	f := newAuthFixture(t)

	if _, err := f.svc.Authenticate(context.Background(), ""); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("empty token: got %v, want ErrNoSession", err)
	}
	if _, err := f.svc.Authenticate(context.Background(), "no-such-token"); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("unknown token: got %v, want ErrNoSession", err)
	}
}

func TestAuthenticateDeletesExpiredSession(t *testing.T) {
	f := newAuthFixture(t)
	agent := f.seedAgent(t, "ana", "hunter2hunter2", true)
	ctx := context.Background()

	stale := &domain.Session{
		Token:     "stale-token",
		AgentID:   agent.ID,
		CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	if err := f.sessions.Create(ctx, stale); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	if _, err := f.svc.Authenticate(ctx, "stale-token"); !errors.Is(err, domain.ErrExpiredSession) {
		t.Fatalf("got %v, want ErrExpiredSession", err)
	}
	if f.sessions.count() != 0 {
		t.Fatal("expired session must be deleted on authentication")
	}
	// The token is gone now, so a retry no longer reveals it ever existed.
	if _, err := f.svc.Authenticate(ctx, "stale-token"); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("got %v, want ErrNoSession on the second attempt", err)
	}
}

func TestAuthenticateExpiryBoundary(t *testing.T) {
	f := newAuthFixture(t)
	agent := f.seedAgent(t, "ana", "hunter2hunter2", true)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, s := range []*domain.Session{
		{Token: "almost-expired", AgentID: agent.ID, CreatedAt: now.Add(-time.Hour), ExpiresAt: now.Add(time.Second)},
		{Token: "just-expired", AgentID: agent.ID, CreatedAt: now.Add(-time.Hour), ExpiresAt: now.Add(-time.Second)},
	} {
		if err := f.sessions.Create(ctx, s); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}

	// One second before expiry the session still authenticates; one second
	// after, it is gone.
	if _, err := f.svc.Authenticate(ctx, "almost-expired"); err != nil {
		t.Fatalf("session inside its lifetime must authenticate: %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, "just-expired"); !errors.Is(err, domain.ErrExpiredSession) {
		t.Fatalf("got %v, want ErrExpiredSession", err)
	}
}

func TestAuthenticateInactiveOwner(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAgent(t, "ana", "hunter2hunter2", true)
	ctx := context.Background()

	_, token, err := f.svc.Login(ctx, "ana", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := f.agents.Update(ctx, 1, map[string]any{"active": false}); err != nil {
		t.Fatalf("deactivate agent: %v", err)
	}

	if _, err := f.svc.Authenticate(ctx, token); !errors.Is(err, domain.ErrInactiveAccount) {
		t.Fatalf("got %v, want ErrInactiveAccount", err)
	}
}

func TestRegisterCreatesLowestRoleAgent(t *testing.T) {
	f := newAuthFixture(t)

	agent, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Username:  "new-agent",
		Password:  "longenough",
		FirstName: "Luis",
		Email:     "luis@tracker.test",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if agent.Role != domain.RoleAgent {
		t.Fatalf("got role %q, want %q", agent.Role, domain.RoleAgent)
	}
	if !agent.Active {
		t.Fatal("new accounts must start active")
	}
	if agent.PasswordHash == "longenough" {
		t.Fatal("the password must be stored hashed")
	}
	if !VerifyPassword("longenough", agent.PasswordHash) {
		t.Fatal("stored hash must verify against the chosen password")
	}
}

func TestRegisterRejectsWeakAndDuplicate(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAgent(t, "taken", "hunter2hunter2", true)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, ports.RegisterInput{Username: "short", Password: "seven77", FirstName: "A"})
	if !errors.Is(err, domain.ErrWeakPassword) {
		t.Fatalf("got %v, want ErrWeakPassword", err)
	}

	_, err = f.svc.Register(ctx, ports.RegisterInput{Username: "taken", Password: "longenough", FirstName: "A"})
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("got %v, want ErrDuplicateUsername", err)
	}
}

func TestForgotPasswordSendsRecoveryLink(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAgent(t, "ana", "hunter2hunter2", true)

	if err := f.svc.ForgotPassword(context.Background(), "ana@tracker.test"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}

	sent := f.mail.messages()
	if len(sent) != 1 {
		t.Fatalf("expected one message, got %d", len(sent))
	}
	msg := sent[0]
	if msg.To != "ana@tracker.test" {
		t.Fatalf("got recipient %q, want ana@tracker.test", msg.To)
	}
	if !strings.Contains(msg.TextBody, "http://localhost:8080/reset-password?token=") {
		t.Fatalf("reset link missing from message body:\n%s", msg.TextBody)
	}
}

func TestForgotPasswordUnknownEmailStaysSilent(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAgent(t, "ana", "hunter2hunter2", true)

	if err := f.svc.ForgotPassword(context.Background(), "nobody@tracker.test"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	if len(f.mail.messages()) != 0 {
		t.Fatal("no message may be sent for an unknown email")
	}
}

func TestForgotPasswordThrottled(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAgent(t, "ana", "hunter2hunter2", true)
	f.throttle.denied["pwreset:ana@tracker.test"] = true

	if err := f.svc.ForgotPassword(context.Background(), "ana@tracker.test"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	if len(f.mail.messages()) != 0 {
		t.Fatal("a throttled request must not send mail")
	}
}

func TestResetPasswordConsumesTokenOnce(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAgent(t, "ana", "hunter2hunter2", true)
	ctx := context.Background()

	if err := f.svc.ForgotPassword(ctx, "ana@tracker.test"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	body := f.mail.messages()[0].TextBody
	marker := "/reset-password?token="
	start := strings.Index(body, marker)
	if start < 0 {
		t.Fatalf("reset link missing from message body:\n%s", body)
	}
	token := strings.Fields(body[start+len(marker):])[0]

	if err := f.svc.ResetPassword(ctx, token, "a-new-password"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	if _, _, err := f.svc.Login(ctx, "ana", "hunter2hunter2"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password: got %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := f.svc.Login(ctx, "ana", "a-new-password"); err != nil {
		t.Fatalf("new password: %v", err)
	}

	// Second consumption of the same token must fail.
	if err := f.svc.ResetPassword(ctx, token, "yet-another-pass"); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("got %v, want ErrInvalidResetToken on reuse", err)
	}
}

func TestResetPasswordRejectsBadInput(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if err := f.svc.ResetPassword(ctx, "", "a-new-password"); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("empty token: got %v, want ErrInvalidResetToken", err)
	}
	if err := f.svc.ResetPassword(ctx, "some-token", "short"); !errors.Is(err, domain.ErrWeakPassword) {
		t.Fatalf("weak password: got %v, want ErrWeakPassword", err)
	}
	if err := f.svc.ResetPassword(ctx, "never-issued", "a-new-password"); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("unknown token: got %v, want ErrInvalidResetToken", err)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	agent := f.seedAgent(t, "ana", "hunter2hunter2", true)
	ctx := context.Background()

	expired := &domain.ResetToken{
		Token:     "expired-token",
		AgentID:   agent.ID,
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
		CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
	}
	if err := f.resets.Create(ctx, expired); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	if err := f.svc.ResetPassword(ctx, "expired-token", "a-new-password"); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("got %v, want ErrInvalidResetToken", err)
	}
}
