package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/skillbridge/platform/internal/api/metrics"
	"github.com/skillbridge/platform/internal/core/domain"
	"github.com/skillbridge/platform/internal/core/ports"
)

// Context keys under which the gateway exposes the authenticated principal.
const (
	CtxPrincipalID    = "principal_id"
	CtxPrincipalEmail = "principal_email"
	CtxPrincipalRoles = "principal_roles"
)

// Gateway is the single authorization chokepoint: it resolves the bearer
// token into a principal (or leaves the request anonymous) and then lets the
// rule table decide the outcome.
//
// Token extraction never aborts the request by itself. A missing, garbage,
// expired, or refresh-type token only means "anonymous"; public routes stay
// reachable regardless of what the Authorization header contains. Refresh
// tokens are deliberately refused as bearer credentials: they carry no roles
// and authenticate nothing except the refresh exchange.
func Gateway(tokens ports.TokenService, table *RuleTable, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var roles []domain.Role
			authenticated := false

			if raw, ok := bearerToken(c.Request()); ok {
				claims, err := tokens.Validate(raw)
				switch {
				case err != nil:
					metrics.TokenValidationFailures.WithLabelValues(err.Error()).Inc()
					log.Debug().Err(err).
						Str("path", c.Request().URL.Path).
						Msg("bearer token rejected")
				case claims.IsRefresh():
					metrics.TokenValidationFailures.WithLabelValues("refresh_token_as_bearer").Inc()
					log.Debug().
						Str("path", c.Request().URL.Path).
						Msg("refresh token presented as bearer credential")
				default:
					authenticated = true
					roles = claims.Roles
					c.Set(CtxPrincipalID, claims.Subject)
					c.Set(CtxPrincipalEmail, claims.Email)
					c.Set(CtxPrincipalRoles, claims.Roles)
				}
			}

			rule := table.Match(c.Request().URL.Path)
			switch rule.Access {
			case AccessPublic:
				metrics.AuthzDecisions.WithLabelValues("allow_public").Inc()
				return next(c)

			case AccessAuthenticated:
				if !authenticated {
					metrics.AuthzDecisions.WithLabelValues("unauthenticated").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
				}
				metrics.AuthzDecisions.WithLabelValues("allow_authenticated").Inc()
				return next(c)

			default: // AccessRoles
				if !authenticated {
					metrics.AuthzDecisions.WithLabelValues("unauthenticated").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
				}
				if !hasAnyRole(roles, rule.Roles) {
					metrics.AuthzDecisions.WithLabelValues("forbidden").Inc()
					log.Info().
						Str("path", c.Request().URL.Path).
						Str("principal_id", c.Get(CtxPrincipalID).(string)).
						Msg("role check failed")
					return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
				}
				metrics.AuthzDecisions.WithLabelValues("allow_role").Inc()
				return next(c)
			}
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func hasAnyRole(held, required []domain.Role) bool {
	for _, want := range required {
		for _, have := range held {
			if have == want {
				return true
			}
		}
	}
	return false
}
