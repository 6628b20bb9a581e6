// Package websocket implements a Hub for broadcasting live game updates.
// Spectators watching an active game hold a persistent connection and receive
// the updated game document the moment a moderator changes it, without
// polling. Delivery is at-least-once: a client may see the same update twice
// and must treat the payload as the full current state.
package websocket

import (
	"encoding/json"
	"sync"
)

// Client represents a single connected spectator.
type Client struct {
	GameID string      // Which game this client is watching
	Send   chan []byte // Buffered channel of outgoing messages
}

// Message is a unit of data to broadcast to all clients watching one game.
type Message struct {
	GameID string
	Data   []byte
}

// Hub manages all active connections, grouped by game id. It runs in its own
// goroutine and processes registration, unregistration, and broadcasts
// through channels so the clients map is only ever mutated from one
// goroutine.
type Hub struct {
	// clients: gameID -> set of connected clients. A map[*Client]bool is the
	// usual Go stand-in for a set.
	clients map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	// mu guards the clients map; every branch of the Run loop mutates it.
	mu sync.RWMutex
}

// NewHub creates a Hub with empty channels and maps. The broadcast channel is
// buffered so a burst of game updates doesn't block handlers.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run is the Hub's main event loop; call it in a goroutine ("go hub.Run()").
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.GameID] == nil {
				h.clients[client.GameID] = make(map[*Client]bool)
			}
			h.clients[client.GameID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.GameID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.GameID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			clients := h.clients[msg.GameID]
			for client := range clients {
				select {
				case client.Send <- msg.Data:
				default:
					// Slow client: drop it rather than stalling everyone
					// else. Removal must happen inline; sending to
					// h.unregister from this goroutine would deadlock, since
					// this loop is that channel's only receiver.
					delete(clients, client)
					close(client.Send)
				}
			}
			if len(clients) == 0 {
				delete(h.clients, msg.GameID)
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastGame serializes payload and sends it to every client watching the
// given game. Marshal failures are reported to the caller; a game document
// that can't be serialized would also have failed the HTTP response.
func (h *Hub) BroadcastGame(gameID string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	h.broadcast <- &Message{GameID: gameID, Data: data}
	return nil
}

// Register adds a client to the Hub so it starts receiving broadcasts.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client when its connection closes.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
