package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /ws  看板实时事件
func ServeWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		client := &Client{
			ID:   uuid.NewString(),
			Conn: conn,
			Send: make(chan OutgoingMessage, 32),
			Hub:  hub,
		}

		select {
		case hub.register <- client:
		case <-hub.quit:
			_ = conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}
