package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skillbridge/platform/internal/core/domain"
)

// MeHandler exposes the caller's own resolved identity. It reflects the
// validated token claims, not a store lookup: the response is exactly what
// the gateway attached to the request.
type MeHandler struct{}

func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

type meResponse struct {
	ID    string        `json:"id"`
	Email string        `json:"email,omitempty"`
	Roles []domain.Role `json:"roles"`
}

// Me returns the authenticated principal attached to the request.
//
// @Summary      Current principal
// @Tags         auth
// @Produce      json
// @Success      200  {object}  meResponse
// @Failure      401  {object}  map[string]any
// @Router       /api/me [get]
func (h *MeHandler) Me(c echo.Context) error {
	id, email, roles, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if roles == nil {
		roles = []domain.Role{}
	}
	return c.JSON(http.StatusOK, meResponse{ID: id, Email: email, Roles: roles})
}
