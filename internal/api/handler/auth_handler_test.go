package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trackercrm/tracker-api/internal/core/domain"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

type stubAuthService struct {
	agent      *domain.Agent
	token      string
	loginErr   error
	registered *domain.Agent
	regErr     error
	resetErr   error

	loggedOut []string
	forgotten []string
}

func (s *stubAuthService) Login(context.Context, string, string) (*domain.Agent, string, error) {
	if s.loginErr != nil {
		return nil, "", s.loginErr
	}
	return s.agent, s.token, nil
}

func (s *stubAuthService) Logout(_ context.Context, token string) error {
	s.loggedOut = append(s.loggedOut, token)
	return nil
}

func (s *stubAuthService) Authenticate(context.Context, string) (*domain.Agent, error) {
	return s.agent, nil
}

func (s *stubAuthService) Register(context.Context, ports.RegisterInput) (*domain.Agent, error) {
	if s.regErr != nil {
		return nil, s.regErr
	}
	return s.registered, nil
}

func (s *stubAuthService) ForgotPassword(_ context.Context, email string) error {
	s.forgotten = append(s.forgotten, email)
	return nil
}

func (s *stubAuthService) ResetPassword(context.Context, string, string) error {
	return s.resetErr
}

func newAuthTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestAuthHandlerLoginSetsSessionCookie(t *testing.T) {
	svc := &stubAuthService{
		agent: &domain.Agent{ID: 1, Username: "ana", Role: domain.RoleAgent, Active: true},
		token: "tok-abc",
	}
	h := NewAuthHandler(svc, time.Hour, false)
	c, rec := newAuthTestContext(t, http.MethodPost, "/auth/login", `{"username":"ana","password":"hunter2hunter2"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}

	cookie := findCookie(t, rec, "session_id")
	if cookie.Value != "tok-abc" {
		t.Fatalf("got cookie value %q, want tok-abc", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Fatal("session cookie must be HttpOnly")
	}
	if cookie.Path != "/" {
		t.Fatalf("got path %q, want /", cookie.Path)
	}
	if cookie.MaxAge != 3600 {
		t.Fatalf("got MaxAge %d, want 3600", cookie.MaxAge)
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("got SameSite %v, want Lax", cookie.SameSite)
	}
	if cookie.Secure {
		t.Fatal("cookie must not be Secure outside production")
	}
}

func TestAuthHandlerLoginSecureCookieInProduction(t *testing.T) {
	svc := &stubAuthService{agent: &domain.Agent{ID: 1}, token: "tok"}
	h := NewAuthHandler(svc, time.Hour, true)
	c, rec := newAuthTestContext(t, http.MethodPost, "/auth/login", `{"username":"ana","password":"hunter2hunter2"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !findCookie(t, rec, "session_id").Secure {
		t.Fatal("cookie must be Secure in production")
	}
}

func TestAuthHandlerLoginPropagatesCredentialErrors(t *testing.T) {
	svc := &stubAuthService{loginErr: domain.ErrInvalidCredentials}
	h := NewAuthHandler(svc, time.Hour, false)
	c, rec := newAuthTestContext(t, http.MethodPost, "/auth/login", `{"username":"ana","password":"wrong-password"}`)

	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("no cookie may be set on a failed login")
	}
}

func TestAuthHandlerLoginRejectsMissingFields(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, time.Hour, false)
	c, _ := newAuthTestContext(t, http.MethodPost, "/auth/login", `{"username":"ana"}`)

	err := h.Login(c)
	httpErr := &echo.HTTPError{}
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("got %v, want a 400", err)
	}
}

func TestAuthHandlerLogoutRevokesAndExpiresCookie(t *testing.T) {
	svc := &stubAuthService{}
	h := NewAuthHandler(svc, time.Hour, false)
	c, rec := newAuthTestContext(t, http.MethodPost, "/auth/logout", "")
	c.Request().AddCookie(&http.Cookie{Name: "session_id", Value: "tok-abc"})

	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	if len(svc.loggedOut) != 1 || svc.loggedOut[0] != "tok-abc" {
		t.Fatalf("expected the session to be revoked, got %v", svc.loggedOut)
	}
	if cookie := findCookie(t, rec, "session_id"); cookie.MaxAge >= 0 || cookie.Value != "" {
		t.Fatalf("expected an expiring empty cookie, got value=%q maxAge=%d", cookie.Value, cookie.MaxAge)
	}
}

func TestAuthHandlerLogoutWithoutSession(t *testing.T) {
	svc := &stubAuthService{}
	h := NewAuthHandler(svc, time.Hour, false)
	c, rec := newAuthTestContext(t, http.MethodPost, "/auth/logout", "")

	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	if len(svc.loggedOut) != 0 {
		t.Fatal("no revocation expected without a cookie")
	}
	// The expiring cookie is still set so stale client state gets cleared.
	findCookie(t, rec, "session_id")
}

func TestAuthHandlerRegister(t *testing.T) {
	svc := &stubAuthService{registered: &domain.Agent{ID: 2, Username: "luis", Role: domain.RoleAgent}}
	h := NewAuthHandler(svc, time.Hour, false)
	c, rec := newAuthTestContext(t, http.MethodPost, "/auth/register",
		`{"username":"luis","password":"longenough","first_name":"Luis"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("got %d, want 201", rec.Code)
	}
}

func TestAuthHandlerRegisterDuplicate(t *testing.T) {
	svc := &stubAuthService{regErr: domain.ErrDuplicateUsername}
	h := NewAuthHandler(svc, time.Hour, false)
	c, _ := newAuthTestContext(t, http.MethodPost, "/auth/register",
		`{"username":"luis","password":"longenough","first_name":"Luis"}`)

	if err := h.Register(c); !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("got %v, want ErrDuplicateUsername", err)
	}
}

func TestAuthHandlerForgotPasswordUniformResponse(t *testing.T) {
	svc := &stubAuthService{}
	h := NewAuthHandler(svc, time.Hour, false)

	// The service hides whether the email matched; the handler answers the
	// same 200 either way.
	for _, email := range []string{"ana@tracker.test", "nobody@tracker.test"} {
		c, rec := newAuthTestContext(t, http.MethodPost, "/auth/forgot-password",
			`{"email":"`+email+`"}`)
		if err := h.ForgotPassword(c); err != nil {
			t.Fatalf("ForgotPassword(%s): %v", email, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("got %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "if the email exists") {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	}
	if len(svc.forgotten) != 2 {
		t.Fatalf("expected both requests forwarded, got %v", svc.forgotten)
	}
}

func TestAuthHandlerResetPassword(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, time.Hour, false)
	c, rec := newAuthTestContext(t, http.MethodPost, "/auth/reset-password",
		`{"token":"tok","new_password":"a-new-password"}`)

	if err := h.ResetPassword(c); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
}

func TestAuthHandlerResetPasswordInvalidToken(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{resetErr: domain.ErrInvalidResetToken}, time.Hour, false)
	c, _ := newAuthTestContext(t, http.MethodPost, "/auth/reset-password",
		`{"token":"burned","new_password":"a-new-password"}`)

	if err := h.ResetPassword(c); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("got %v, want ErrInvalidResetToken", err)
	}
}
