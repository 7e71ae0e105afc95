package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/skillbridge/platform/internal/api/middleware"
	"github.com/skillbridge/platform/internal/core/domain"
	"github.com/skillbridge/platform/internal/core/service"
	"github.com/skillbridge/platform/pkg/logger"
)

func testTable() *middleware.RuleTable {
	return middleware.NewRuleTable(
		middleware.Public("/api/projects/featured"),
		middleware.RequireRoles("/api/projects/**", domain.RoleClient, domain.RoleFreelancer),
		middleware.RequireRoles("/api/admin/**", domain.RoleAdmin),
		middleware.Authenticated("/api/**"),
	)
}

func testTokens() *service.TokenService {
	return service.NewTokenService("secret", time.Hour, 24*time.Hour)
}

// run sends one request through the gateway and reports the HTTP status and
// whether the inner handler ran.
func run(t *testing.T, tokens *service.TokenService, path, authHeader string) (status int, reachedHandler bool, c echo.Context) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c = e.NewContext(req, rec)

	mw := middleware.Gateway(tokens, testTable(), logger.Init(logger.Options{Level: "error"}))
	handler := mw(func(c echo.Context) error {
		reachedHandler = true
		return c.NoContent(http.StatusOK)
	})

	err := handler(c)
	if err == nil {
		return rec.Code, reachedHandler, c
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("unexpected error type: %v", err)
	}
	return he.Code, reachedHandler, c
}

func accessTokenFor(t *testing.T, tokens *service.TokenService, roles ...domain.Role) string {
	t.Helper()
	token, err := tokens.IssueAccessToken(&domain.Principal{
		ID:     "p_123",
		Email:  "alice@example.com",
		Roles:  roles,
		Active: true,
	})
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}
	return token
}

func TestGateway_PublicPathWithoutToken(t *testing.T) {
	status, reached, _ := run(t, testTokens(), "/api/projects/featured", "")
	if status != http.StatusOK || !reached {
		t.Fatalf("status = %d, reached = %v; want 200 and handler reached", status, reached)
	}
}

func TestGateway_PublicPathWithGarbageToken(t *testing.T) {
	// An invalid token does not abort the request; the rule decides.
	status, reached, _ := run(t, testTokens(), "/api/projects/featured", "Bearer garbage")
	if status != http.StatusOK || !reached {
		t.Fatalf("status = %d, reached = %v; want 200 and handler reached", status, reached)
	}
}

func TestGateway_ProtectedPathWithoutToken(t *testing.T) {
	status, reached, _ := run(t, testTokens(), "/api/projects/123", "")
	if status != http.StatusUnauthorized || reached {
		t.Fatalf("status = %d, reached = %v; want 401 and handler not reached", status, reached)
	}
}

func TestGateway_RoleGate(t *testing.T) {
	tokens := testTokens()

	// {CLIENT} on an ADMIN-only path: 403.
	clientToken := accessTokenFor(t, tokens, domain.RoleClient)
	status, reached, _ := run(t, tokens, "/api/admin/presence/online", "Bearer "+clientToken)
	if status != http.StatusForbidden || reached {
		t.Fatalf("client on admin path: status = %d, reached = %v; want 403", status, reached)
	}

	// {ADMIN, CLIENT} passes: intersection with the required set is non-empty.
	adminToken := accessTokenFor(t, tokens, domain.RoleAdmin, domain.RoleClient)
	status, reached, _ = run(t, tokens, "/api/admin/presence/online", "Bearer "+adminToken)
	if status != http.StatusOK || !reached {
		t.Fatalf("admin on admin path: status = %d, reached = %v; want 200", status, reached)
	}
}

func TestGateway_RoleIntersection(t *testing.T) {
	tokens := testTokens()
	token := accessTokenFor(t, tokens, domain.RoleFreelancer)

	status, reached, _ := run(t, tokens, "/api/projects/123", "Bearer "+token)
	if status != http.StatusOK || !reached {
		t.Fatalf("freelancer on projects path: status = %d, reached = %v; want 200", status, reached)
	}
}

func TestGateway_AttachesPrincipalToContext(t *testing.T) {
	tokens := testTokens()
	token := accessTokenFor(t, tokens, domain.RoleClient)

	_, _, c := run(t, tokens, "/api/me", "Bearer "+token)

	if got, _ := c.Get(middleware.CtxPrincipalID).(string); got != "p_123" {
		t.Fatalf("principal_id = %q, want p_123", got)
	}
	if got, _ := c.Get(middleware.CtxPrincipalEmail).(string); got != "alice@example.com" {
		t.Fatalf("principal_email = %q", got)
	}
	roles, _ := c.Get(middleware.CtxPrincipalRoles).([]domain.Role)
	if len(roles) != 1 || roles[0] != domain.RoleClient {
		t.Fatalf("principal_roles = %v", roles)
	}
}

func TestGateway_ExpiredTokenIsAnonymous(t *testing.T) {
	issuer := service.NewTokenService("secret", time.Nanosecond, 0)
	token := accessTokenFor(t, issuer, domain.RoleClient)
	time.Sleep(2 * time.Millisecond)

	status, reached, _ := run(t, issuer, "/api/projects/123", "Bearer "+token)
	if status != http.StatusUnauthorized || reached {
		t.Fatalf("expired token: status = %d, reached = %v; want 401", status, reached)
	}
}

func TestGateway_RefreshTokenRejectedAsBearer(t *testing.T) {
	tokens := testTokens()
	refresh, err := tokens.IssueRefreshToken("p_123")
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}

	// A refresh token verifies cryptographically but must not authenticate a
	// resource request, even on authenticated-any-role paths.
	status, reached, _ := run(t, tokens, "/api/me", "Bearer "+refresh)
	if status != http.StatusUnauthorized || reached {
		t.Fatalf("refresh as bearer: status = %d, reached = %v; want 401", status, reached)
	}
}

func TestGateway_UnmatchedPathRequiresAuth(t *testing.T) {
	status, reached, _ := run(t, testTokens(), "/unlisted/path", "")
	if status != http.StatusUnauthorized || reached {
		t.Fatalf("unmatched path: status = %d, reached = %v; want 401", status, reached)
	}
}
