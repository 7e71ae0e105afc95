package realtime

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/skillbridge/platform/internal/core/domain"
)

// TokenValidator is the narrow slice of the token service the handshake
// needs. Declared here rather than importing the service package so the
// realtime layer depends only on what it uses.
type TokenValidator interface {
	Validate(token string) (*domain.Claims, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Bearer-token auth, not cookies: cross-origin requests carry no
		// ambient credentials, so origin checking adds nothing here.
		return true
	},
}

// Handler upgrades authenticated HTTP requests to websocket connections.
type Handler struct {
	hub      *Hub
	presence *Registry
	tokens   TokenValidator
	log      zerolog.Logger
}

func NewHandler(hub *Hub, presence *Registry, tokens TokenValidator, log zerolog.Logger) *Handler {
	return &Handler{hub: hub, presence: presence, tokens: tokens, log: log}
}

// Handle authenticates the handshake and runs the connection. Browsers
// cannot set an Authorization header on a websocket dial, so the token
// travels as a query parameter; it is validated exactly like an HTTP bearer
// token, including the refusal of refresh-type tokens.
func (h *Handler) Handle(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	claims, err := h.tokens.Validate(token)
	if err != nil || claims.IsRefresh() {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written its own error response.
		h.log.Debug().Err(err).Str("user_id", claims.Subject).Msg("websocket upgrade failed")
		return nil
	}

	client := newClient(h.hub, h.presence, conn, claims.Subject)
	if !h.hub.join(client) {
		_ = conn.Close()
		return nil
	}
	h.presence.Connect(client.id, client.userID)

	go client.writePump()
	// readPump blocks until the connection closes; its deferred cleanup
	// unregisters the client and fires the presence disconnect.
	client.readPump()
	return nil
}
