package client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
	writeTimeout       = 10 * time.Second
	pongTimeout        = 60 * time.Second
	pingInterval       = 30 * time.Second
)

// Message is one envelope from the live feed.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// WSClient follows the server's WebSocket feed.
type WSClient struct {
	url    string
	token  string
	logger *slog.Logger
}

// NewWSClient creates a client that connects to the given WebSocket URL.
func NewWSClient(url, token string, logger *slog.Logger) *WSClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSClient{url: url, token: token, logger: logger.With("component", "ws-client")}
}

// Watch delivers every message to handle until ctx is done, reconnecting
// with exponential backoff when the connection drops.
func (c *WSClient) Watch(ctx context.Context, handle func(Message)) error {
	delay := reconnectBaseDelay
	for {
		connected, err := c.watchOnce(ctx, handle)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			delay = reconnectBaseDelay
		}
		c.logger.Warn("feed disconnected", "error", err, "retry_in", delay)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		delay = min(delay*2, reconnectMaxDelay)
	}
}

func (c *WSClient) watchOnce(ctx context.Context, handle func(Message)) (bool, error) {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
	if err != nil {
		return false, err
	}

	var writeMu sync.Mutex
	pingCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-pingCtx.Done()
		writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeTimeout))
		writeMu.Unlock()
		conn.Close()
	}()
	go pingLoop(pingCtx, conn, &writeMu)

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return true, ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return true, errors.New("server closed the feed")
			}
			return true, err
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("skipping malformed message", "error", err)
			continue
		}
		handle(msg)
	}
}

func pingLoop(ctx context.Context, conn *websocket.Conn, writeMu *sync.Mutex) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			writeMu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
