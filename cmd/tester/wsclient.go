package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/fasthttp/websocket"
)

// frame mirrors the relay's wire envelope.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	AckID *int            `json:"ackId,omitempty"`
}

// wsClient is a minimal relay client for smoke scenarios: one dialed
// connection, a background read loop, and an expect helper that waits for a
// named event while discarding everything else in between.
type wsClient struct {
	conn   *websocket.Conn
	frames chan frame
	done   chan struct{}
}

func dial(relayURL, userID, userName string) (*wsClient, error) {
	u, err := url.Parse(relayURL)
	if err != nil {
		return nil, err
	}
	query := u.Query()
	query.Set("userId", userID)
	query.Set("userName", userName)
	u.RawQuery = query.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}

	c := &wsClient{
		conn:   conn,
		frames: make(chan frame, 64),
		done:   make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *wsClient) readLoop() {
	defer close(c.done)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			continue
		}
		select {
		case c.frames <- f:
		default:
			// Inbox full: the scenario is not consuming, drop the oldest.
			<-c.frames
			c.frames <- f
		}
	}
}

func (c *wsClient) emit(eventName string, payload any, ackID *int) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.conn.WriteJSON(frame{Event: eventName, Data: data, AckID: ackID})
}

// expect returns the next frame carrying eventName, discarding unrelated
// frames, or fails once the timeout elapses.
func (c *wsClient) expect(eventName string, timeout time.Duration) (frame, error) {
	deadline := time.After(timeout)
	for {
		select {
		case f := <-c.frames:
			if f.Event == eventName {
				return f, nil
			}
		case <-c.done:
			return frame{}, fmt.Errorf("connection closed while waiting for %q", eventName)
		case <-deadline:
			return frame{}, fmt.Errorf("timed out waiting for %q", eventName)
		}
	}
}

func (c *wsClient) close() {
	_ = c.conn.Close()
	<-c.done
}
