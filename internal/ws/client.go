package ws

import (
	"time"

	"tycoon_backend/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

type Client struct {
	UserID   int64
	PlayerID int64
	GameID   int64
	Conn     *websocket.Conn
	Send     chan []byte

	room   *Room
	driver TurnDriver
}

func NewClient(userID, playerID, gameID int64, conn *websocket.Conn, driver TurnDriver) *Client {
	return &Client{
		UserID:   userID,
		PlayerID: playerID,
		GameID:   gameID,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		driver:   driver,
	}
}

// Run attaches the client to its game room and blocks until the
// connection drops.
func (c *Client) Run(hub *Hub) {
	c.room = hub.Room(c.GameID)
	c.room.Register <- c

	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.room.Unregister <- c
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read", "user", c.UserID, "error", err)
			}
			return
		}
		c.handleIntent(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) send(o Outbound) {
	select {
	case c.Send <- marshalOutbound(o):
	default:
		// Slow consumer; drop the frame rather than block the room.
		logger.Warn("ws send buffer full", "user", c.UserID, "game", c.GameID)
	}
}
