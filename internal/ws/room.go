package ws

import (
	"sync"
	"time"

	"tycoon_backend/internal/logger"
)

// Room fans events out to every client watching one game.
type Room struct {
	GameID int64

	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan []byte

	mu        sync.RWMutex
	clients   map[*Client]bool
	createdAt time.Time
}

func newRoom(gameID int64) *Room {
	return &Room{
		GameID:     gameID,
		Register:   make(chan *Client, 8),
		Unregister: make(chan *Client, 8),
		Broadcast:  make(chan []byte, 64),
		clients:    make(map[*Client]bool),
		createdAt:  time.Now(),
	}
}

func (r *Room) Run() {
	for {
		select {
		case c := <-r.Register:
			r.mu.Lock()
			r.clients[c] = true
			n := len(r.clients)
			r.mu.Unlock()
			logger.Debug("ws room join", "game", r.GameID, "user", c.UserID, "clients", n)

		case c := <-r.Unregister:
			r.mu.Lock()
			if r.clients[c] {
				delete(r.clients, c)
				close(c.Send)
			}
			r.mu.Unlock()

		case msg := <-r.Broadcast:
			r.mu.RLock()
			for c := range r.clients {
				select {
				case c.Send <- msg:
				default:
				}
			}
			r.mu.RUnlock()
		}
	}
}

func (r *Room) empty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients) == 0
}
