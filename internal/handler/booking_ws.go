package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Manikandan063/air-ambulance-backend/internal/ws"
)

// BookingWSHandler upgrades live-update connections and keeps them in the
// hub until the peer goes away.
type BookingWSHandler struct {
	Hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewBookingWSHandler(hub *ws.Hub) *BookingWSHandler {
	return &BookingWSHandler{
		Hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browsers connect from a separate frontend origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type wsFrame struct {
	Type string `json:"type"`
}

// Serve handles GET /api/bookings/ws/:clientId. The route carries no
// auth: the channel only ever pushes non-sensitive event summaries.
func (h *BookingWSHandler) Serve(c echo.Context) error {
	clientID := c.Param("clientId")

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return nil
	}
	client := ws.NewClient(conn)
	h.Hub.Register(client)
	c.Logger().Infof("ws: client %s connected (%d open)", clientID, h.Hub.Count())

	defer func() {
		h.Hub.Unregister(client)
		_ = client.Close()
		c.Logger().Infof("ws: client %s disconnected (%d open)", clientID, h.Hub.Count())
	}()

	if err := client.WriteJSON(echo.Map{
		"type":    "connection_established",
		"message": "Connected to booking updates",
	}); err != nil {
		return nil
	}

	for {
		_, raw, err := client.ReadMessage()
		if err != nil {
			return nil
		}
		var frame wsFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.Logger().Warnf("ws: client %s sent malformed frame: %v", clientID, err)
			continue
		}
		if frame.Type == "ping" {
			if err := client.WriteJSON(echo.Map{"type": "pong"}); err != nil {
				return nil
			}
		}
	}
}
