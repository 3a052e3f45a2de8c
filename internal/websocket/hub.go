package websocket

import (
	"encoding/json"
	"log"

	"github.com/gorilla/websocket"

	"coffee-platform/internal/payment"
)

type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Username string
}

// Alert is what the creator's widget receives when a payment confirms. It
// mirrors the public ledger entry shape.
type Alert struct {
	ToUser  string  `json:"-"`
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
	Message string  `json:"message"`
}

// Hub fans confirmed-payment alerts out to connected creator widgets, one
// client per handle. Delivery is best-effort: a widget that is not
// connected, or whose buffer is full, simply misses the alert.
type Hub struct {
	Clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan Alert
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan Alert, 16),
	}
}

// PaymentConfirmed implements the payment service's Alerter without
// blocking the verification request.
func (h *Hub) PaymentConfirmed(username string, s payment.Supporter) {
	alert := Alert{ToUser: username, Name: s.Name, Amount: s.Amount, Message: s.Message}
	select {
	case h.Broadcast <- alert:
	default:
		log.Printf("websocket: alert channel full, dropping alert for %s", username)
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			// A reconnect displaces the old client; close its send channel
			// so its writePump exits instead of lingering until shutdown.
			if old, ok := h.Clients[client.Username]; ok && old != client {
				close(old.Send)
			}
			h.Clients[client.Username] = client
			log.Printf("websocket: widget connected for %s", client.Username)

		case client := <-h.Unregister:
			if current, ok := h.Clients[client.Username]; ok && current == client {
				delete(h.Clients, client.Username)
				close(client.Send)
				log.Printf("websocket: widget disconnected for %s", client.Username)
			}

		case alert := <-h.Broadcast:
			client, ok := h.Clients[alert.ToUser]
			if !ok {
				continue
			}
			jsonData, err := json.Marshal(alert)
			if err != nil {
				log.Println("websocket: failed to marshal alert:", err)
				continue
			}
			select {
			case client.Send <- jsonData:
			default:
				close(client.Send)
				delete(h.Clients, client.Username)
			}
		}
	}
}
