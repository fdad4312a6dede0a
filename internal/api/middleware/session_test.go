package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/trackercrm/tracker-api/internal/core/domain"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

type stubAuthService struct {
	agents map[string]*domain.Agent
	errs   map[string]error
}

func (s *stubAuthService) Login(context.Context, string, string) (*domain.Agent, string, error) {
	return nil, "", nil
}
func (s *stubAuthService) Logout(context.Context, string) error { return nil }
func (s *stubAuthService) Authenticate(_ context.Context, token string) (*domain.Agent, error) {
	if err := s.errs[token]; err != nil {
		return nil, err
	}
	if agent, ok := s.agents[token]; ok {
		return agent, nil
	}
	return nil, domain.ErrNoSession
}
func (s *stubAuthService) Register(context.Context, ports.RegisterInput) (*domain.Agent, error) {
	return nil, nil
}
func (s *stubAuthService) ForgotPassword(context.Context, string) error        { return nil }
func (s *stubAuthService) ResetPassword(context.Context, string, string) error { return nil }

func TestSession_ValidCookie(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "tok-1"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	auth := &stubAuthService{agents: map[string]*domain.Agent{
		"tok-1": {ID: 7, Username: "alice", Role: domain.RoleAgent, Active: true},
	}}

	called := false
	handler := Session(auth)(func(c echo.Context) error {
		called = true
		agent, _ := c.Get(AgentContextKey).(*domain.Agent)
		if agent == nil || agent.ID != 7 {
			t.Fatalf("agent not injected into context")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestSession_MissingCookie(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Session(&stubAuthService{})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSession_UnknownAndExpiredFailAlike(t *testing.T) {
	for name, err := range map[string]error{
		"unknown": domain.ErrNoSession,
		"expired": domain.ErrExpiredSession,
	} {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "tok-x"})
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			auth := &stubAuthService{errs: map[string]error{"tok-x": err}}
			handler := Session(auth)(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			got := handler(c)
			if got == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
