package monitorfeed

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512 * 1024
)

// Client is one subscriber connection on the monitor feed.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan *Message
}

type subscribeRequest struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

type unsubscribeRequest struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

// NewClient wraps an upgraded WebSocket connection as a feed subscriber.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{id: uuid.New().String(), hub: hub, conn: conn, send: make(chan *Message, 256)}
}

// Run starts the client's read and write pumps on their own goroutines and
// returns immediately.
func (c *Client) Run() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[monitorfeed] client %s closed unexpectedly: %v", c.id, err)
			}
			return
		}

		var raw struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			continue
		}
		switch raw.Type {
		case "subscribe":
			var req subscribeRequest
			if json.Unmarshal(data, &req) == nil {
				c.hub.Subscribe(c, req.Channels)
			}
		case "unsubscribe":
			var req unsubscribeRequest
			if json.Unmarshal(data, &req) == nil {
				c.hub.Unsubscribe(c, req.Channels)
			}
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
