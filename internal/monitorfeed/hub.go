// Package monitorfeed streams a walnats event feed (as produced by
// ConnectedEvents.Monitor) to connected WebSocket clients, for a live
// debugging dashboard. It keeps the teacher's hub/client/handler shape —
// a central broadcaster, per-connection read/write pumps, channel-scoped
// subscriptions — generalized from telemetry-specific broadcasts to
// arbitrary decoded event payloads.
package monitorfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"
)

// Hub maintains active WebSocket connections and fans out Message values to
// their subscribers.
type Hub struct {
	clients       map[*Client]bool
	broadcast     chan *Message
	register      chan *Client
	unregister    chan *Client
	subscriptions map[string]map[*Client]bool

	mu sync.RWMutex
}

// Message is one item on the feed. For event items, Channel is the Go type
// name of the decoded payload (Feed does not know the originating Event's
// name) and Data is the JSON-encoded payload.
type Message struct {
	Type      string          `json:"type"`
	Channel   string          `json:"channel,omitempty"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// NewHub creates an empty Hub. Call Run to start its event loop and Feed to
// pipe a Monitor channel into it.
func NewHub() *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		broadcast:     make(chan *Message, 256),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

// Run drives the hub's event loop until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				for channel := range h.subscriptions {
					delete(h.subscriptions[channel], client)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.dispatch(msg)

		case <-ticker.C:
			h.mu.RLock()
			ping := &Message{Type: "ping", Timestamp: time.Now().UTC().Format(time.RFC3339Nano)}
			for client := range h.clients {
				select {
				case client.send <- ping:
				default:
				}
			}
			h.mu.RUnlock()

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) dispatch(msg *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.Channel == "" {
		for client := range h.clients {
			select {
			case client.send <- msg:
			default:
				log.Printf("[monitorfeed] client %s send buffer full, dropping message", client.id)
			}
		}
		return
	}
	for client := range h.subscriptions[msg.Channel] {
		select {
		case client.send <- msg:
		default:
			log.Printf("[monitorfeed] client %s send buffer full, dropping message", client.id)
		}
	}
}

// Subscribe adds client to the given channels (event type names).
func (h *Hub) Subscribe(client *Client, channels []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range channels {
		if h.subscriptions[ch] == nil {
			h.subscriptions[ch] = make(map[*Client]bool)
		}
		h.subscriptions[ch][client] = true
	}
}

// Unsubscribe removes client from the given channels.
func (h *Hub) Unsubscribe(client *Client, channels []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range channels {
		delete(h.subscriptions[ch], client)
	}
}

// Feed pipes every value received on items into the hub as a broadcast
// message, JSON-encoding the payload and using its Go type name as the
// channel, until items is closed or ctx is done. Use it with
// ConnectedEvents.Monitor's output channel.
func (h *Hub) Feed(ctx context.Context, items <-chan any) {
	for {
		select {
		case payload, ok := <-items:
			if !ok {
				return
			}
			data, err := json.Marshal(payload)
			msg := &Message{
				Channel:   fmt.Sprintf("%T", payload),
				Type:      "event",
				Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			}
			if err != nil {
				msg.Error = err.Error()
			} else {
				msg.Data = data
			}
			select {
			case h.broadcast <- msg:
			default:
				log.Printf("[monitorfeed] broadcast buffer full, dropping message for %s", msg.Channel)
			}
		case <-ctx.Done():
			return
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
