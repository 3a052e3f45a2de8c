package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"coffee-platform/internal/store"
	ws "coffee-platform/internal/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Store *store.Store
	Hub   *ws.Hub
}

func NewWebSocketHandler(st *store.Store, hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{Store: st, Hub: hub}
}

// ServeWs connects a creator's alert widget, authenticated by the widget
// token rather than a JWT so overlay tools can hold a long-lived URL.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	token := c.Param("token")

	user, err := h.Store.UserByWidgetToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("websocket: failed to upgrade connection:", err)
		return
	}

	client := &ws.Client{
		Hub:      h.Hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Username: user.Username,
	}

	client.Hub.Register <- client

	go h.writePump(client)
	go h.readPump(client)
}

func (h *WebSocketHandler) writePump(client *ws.Client) {
	defer client.Conn.Close()

	for message := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}

	client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (h *WebSocketHandler) readPump(client *ws.Client) {
	defer func() {
		client.Hub.Unregister <- client
		client.Conn.Close()
	}()

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket: readPump error: %v", err)
			}
			break
		}
	}
}
