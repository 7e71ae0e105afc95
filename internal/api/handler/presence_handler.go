package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skillbridge/platform/internal/core/ports"
)

// PresenceHandler exposes read-only snapshots of the presence registry.
type PresenceHandler struct {
	presence ports.PresenceView
}

func NewPresenceHandler(presence ports.PresenceView) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

type onlineResponse struct {
	Count   int      `json:"count"`
	UserIDs []string `json:"user_ids"`
}

// Online lists the users currently holding at least one live realtime
// connection. The snapshot is eventually consistent with in-flight
// connect/disconnect events.
//
// @Summary      Online users
// @Tags         presence
// @Produce      json
// @Success      200  {object}  onlineResponse
// @Failure      401  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Router       /api/admin/presence/online [get]
func (h *PresenceHandler) Online(c echo.Context) error {
	ids := h.presence.OnlineUserIDs()
	return c.JSON(http.StatusOK, onlineResponse{Count: len(ids), UserIDs: ids})
}
