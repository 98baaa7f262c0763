package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"modeon/internal/core/tracker"
	"modeon/internal/ui/notify"
)

const writeTimeout = 10 * time.Second

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		send: make(chan []byte, 64),
	}
	go c.writePump()
	return c
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *client) close() {
	close(c.send)
}

// SnapshotFunc produces the full state pushed to new and idle clients.
type SnapshotFunc func() SnapshotPayload

// Broadcaster fans tracker updates out to WebSocket clients.
type Broadcaster struct {
	mu       sync.RWMutex
	clients  map[*client]bool
	snapshot SnapshotFunc
	logger   *slog.Logger
}

// NewBroadcaster creates a Broadcaster that reads full state from snapshot.
func NewBroadcaster(snapshot SnapshotFunc, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		clients:  make(map[*client]bool),
		snapshot: snapshot,
		logger:   logger.With("component", "ws"),
	}
}

// AddClient registers conn and sends it the current snapshot.
func (b *Broadcaster) AddClient(conn *websocket.Conn) *client {
	c := newClient(conn)

	data, err := json.Marshal(WSMessage{Type: MsgSnapshot, Payload: b.snapshot()})
	if err != nil {
		b.logger.Error("marshal snapshot failed", "error", err)
	} else {
		c.send <- data
	}

	b.mu.Lock()
	b.clients[c] = true
	b.mu.Unlock()

	return c
}

// RemoveClient unregisters c and closes its connection.
func (b *Broadcaster) RemoveClient(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		c.close()
	}
	b.mu.Unlock()
}

// Run forwards tracker events and pushes a periodic snapshot until ctx is done
// or events is closed. All clients are disconnected on return.
func (b *Broadcaster) Run(ctx context.Context, events <-chan tracker.Event, snapshotInterval time.Duration) {
	if snapshotInterval <= 0 {
		snapshotInterval = 5 * time.Second
	}
	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()
	defer b.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			b.broadcast(WSMessage{Type: messageTypeFor(event.Type), Payload: event.Status})
		case <-ticker.C:
			if b.ClientCount() > 0 {
				b.broadcast(WSMessage{Type: MsgSnapshot, Payload: b.snapshot()})
			}
		}
	}
}

// Deliver pushes a notification to every client so the browser can show it.
func (b *Broadcaster) Deliver(message notify.Message) {
	b.broadcast(WSMessage{Type: MsgNotification, Payload: message})
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *Broadcaster) broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error("broadcast marshal failed", "type", msg.Type, "error", err)
		return
	}

	var slow []*client
	b.mu.RLock()
	for c := range b.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	b.mu.RUnlock()

	for _, c := range slow {
		b.logger.Warn("ws client too slow, disconnecting")
		b.RemoveClient(c)
	}
}

func (b *Broadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		delete(b.clients, c)
		c.close()
	}
}

func messageTypeFor(eventType tracker.EventType) MessageType {
	if eventType == tracker.EventBreakStateChanged {
		return MsgBreakStateChanged
	}
	return MsgSessionChanged
}
