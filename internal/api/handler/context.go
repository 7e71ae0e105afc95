package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skillbridge/platform/internal/api/middleware"
	"github.com/skillbridge/platform/internal/core/domain"
)

// ctxPrincipal extracts the principal identity injected by the authorization
// gateway. A missing id means the gateway did not authenticate this request;
// handlers behind authenticated rules treat that as a wiring fault and fail
// with 401 rather than proceed anonymously.
func ctxPrincipal(c echo.Context) (id, email string, roles []domain.Role, err error) {
	id, _ = c.Get(middleware.CtxPrincipalID).(string)
	if id == "" {
		return "", "", nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	email, _ = c.Get(middleware.CtxPrincipalEmail).(string)
	roles, _ = c.Get(middleware.CtxPrincipalRoles).([]domain.Role)
	return id, email, roles, nil
}
