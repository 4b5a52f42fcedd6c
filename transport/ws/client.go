package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gofiber/contrib/websocket"

	"relay-lab/domain/event"
	"relay-lab/relay"
)

var (
	errSlowConsumer     = fmt.Errorf("outbound buffer full")
	errConnectionClosed = fmt.Errorf("connection closed")
)

// Client is one live WebSocket connection. It implements contract.EventSink:
// the relay hands it events, Consume frames them, and the write pump drains
// the buffered channel onto the wire. A full buffer drops the event rather
// than blocking the relay.
type Client struct {
	ConnectionID string
	UserID       string // handshake identity, updated on registration
	UserName     string

	log    *slog.Logger
	conn   *websocket.Conn
	send   chan []byte
	mu     sync.Mutex
	closed bool
}

func NewClient(log *slog.Logger, conn *websocket.Conn, connectionID, userID, userName string, bufferSize int) *Client {
	return &Client{
		ConnectionID: connectionID,
		UserID:       userID,
		UserName:     userName,
		log:          log,
		conn:         conn,
		send:         make(chan []byte, bufferSize),
	}
}

// Consume frames the event and queues it for the write pump.
func (c *Client) Consume(ctx context.Context, e event.Event) error {
	data, err := json.Marshal(outFrame{Event: e.EventName(), Data: e})
	if err != nil {
		return err
	}
	return c.push(ctx, data)
}

// SendAck answers one acknowledged frame.
func (c *Client) SendAck(ctx context.Context, ackID int, ack relay.Ack) {
	data, err := json.Marshal(outFrame{Event: eventAck, AckID: &ackID, Data: ack})
	if err != nil {
		return
	}
	if err := c.push(ctx, data); err != nil {
		c.log.Debug("Dropping ack", "connection_id", c.ConnectionID, "error", err)
	}
}

// push queues data unless the connection already closed. The mutex makes
// close-versus-push atomic: a broadcast that resolved this sink before the
// disconnect must get an error back, never a send on a closed channel.
func (c *Client) push(ctx context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errConnectionClosed
	}
	select {
	case c.send <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errSlowConsumer
	}
}

// WritePump drains the outbound buffer onto the connection. It exits when
// Close is called.
func (c *Client) WritePump() {
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			c.log.Debug("Write failed", "connection_id", c.ConnectionID, "error", err)
			return
		}
	}
}

// Close stops the write pump and rejects further pushes. Safe to call more
// than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
