package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The route sits behind the JWT middleware, so any origin holding a
	// valid admin token may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket upgrades an authenticated admin request and subscribes it
// to hub events.
func HandleWebSocket(c echo.Context, hub *Hub, email string) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{Email: email, conn: conn, send: make(chan Event, clientBuffer)}
	client.send <- Event{Type: "connected", Message: "WebSocket connection established", At: time.Now()}
	if !hub.Register(client) {
		conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump(hub)
	return nil
}
