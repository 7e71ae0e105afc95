package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/skillbridge/platform/internal/core/domain"
)

type stubAuthService struct {
	loginFn   func(ctx context.Context, email, password string) (*domain.TokenPair, *domain.Principal, error)
	refreshFn func(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, *domain.Principal, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	return s.refreshFn(ctx, refreshToken)
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*domain.TokenPair, *domain.Principal, error) {
			if email != "alice@example.com" || password != "pass123" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &domain.TokenPair{AccessToken: "at", RefreshToken: "rt"},
				&domain.Principal{ID: "p_123", Email: email, Roles: []domain.Role{domain.RoleClient}},
				nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"pass123"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	tokens, ok := resp["tokens"].(map[string]any)
	if !ok || tokens["access_token"] != "at" || tokens["refresh_token"] != "rt" {
		t.Fatalf("unexpected tokens: %v", resp["tokens"])
	}
	if _, ok := resp["principal"].(map[string]any); !ok {
		t.Fatalf("principal missing from response")
	}
}

func TestAuthHandler_Login_ValidationFailure(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := newTestContext(t, http.MethodPost, "/auth/login", `{"email":"not-an-email","password":"x"}`)
	err := h.Login(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Login_ServiceErrorPropagates(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*domain.TokenPair, *domain.Principal, error) {
			return nil, nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/auth/login", `{"email":"a@example.com","password":"bad"}`)
	if err := h.Login(c); err != domain.ErrInvalidCredentials {
		t.Fatalf("err = %v, want ErrInvalidCredentials passed to the error handler", err)
	}
}

func TestAuthHandler_Refresh_Success(t *testing.T) {
	stub := &stubAuthService{
		refreshFn: func(_ context.Context, token string) (*domain.TokenPair, error) {
			if token != "rt_old" {
				t.Fatalf("unexpected token: %s", token)
			}
			return &domain.TokenPair{AccessToken: "at_new", RefreshToken: "rt_new"}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/auth/refresh", `{"refresh_token":"rt_old"}`)
	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Refresh_InvalidToken(t *testing.T) {
	stub := &stubAuthService{
		refreshFn: func(context.Context, string) (*domain.TokenPair, error) {
			return nil, domain.ErrInvalidToken
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/auth/refresh", `{"refresh_token":"junk"}`)
	if err := h.Refresh(c); err != domain.ErrInvalidToken {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestAuthHandler_Refresh_MissingToken(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := newTestContext(t, http.MethodPost, "/auth/refresh", `{}`)
	err := h.Refresh(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}
