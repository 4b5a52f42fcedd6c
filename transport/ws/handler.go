// Package ws exposes the relay over a WebSocket endpoint. Clients exchange
// JSON frames {"event": name, "data": payload, "ackId"?: n}; the handshake
// identity travels as query parameters on the upgrade request.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"relay-lab/domain"
	"relay-lab/errors"
	"relay-lab/relay"
)

type Handler struct {
	log        *slog.Logger
	engine     *relay.Engine
	validate   *validator.Validate
	bufferSize int
}

func NewHandler(log *slog.Logger, engine *relay.Engine, bufferSize int) *Handler {
	return &Handler{
		log:        log,
		engine:     engine,
		validate:   validator.New(),
		bufferSize: bufferSize,
	}
}

// Register mounts the WebSocket endpoint and the status surface.
func (h *Handler) Register(app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(h.serve))
	app.Get("/", NewStatusHandler(h.engine).Handle)
}

// serve owns one connection for its whole lifetime: bind the sink, pump
// inbound frames through the engine, and fire the disconnect event when the
// read loop ends, whatever the reason.
func (h *Handler) serve(conn *websocket.Conn) {
	ctx := context.Background()
	connectionID := uuid.NewString()
	client := NewClient(h.log, conn, connectionID, conn.Query("userId"), conn.Query("userName"), h.bufferSize)

	h.engine.Connected(connectionID, client)
	go client.WritePump()
	defer func() {
		h.engine.Disconnect(ctx, connectionID)
		client.Close()
	}()

	h.log.Debug("Connection accepted",
		"connection_id", connectionID,
		"handshake_user_id", client.UserID)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			h.log.Debug("Connection closed", "connection_id", connectionID, "error", err)
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.reject(connectionID, "", fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err))
			continue
		}
		if err := h.dispatch(ctx, client, frame); err != nil {
			h.reject(connectionID, frame.Event, err)
		}
	}
}

// dispatch routes one inbound frame. A malformed payload is an error for
// the log, never for the connection: the frame is dropped and the read
// loop keeps going.
func (h *Handler) dispatch(ctx context.Context, client *Client, frame Frame) error {
	switch frame.Event {
	case eventRegisterUser:
		var p RegisterUserPayload
		if err := h.decode(frame.Data, &p); err != nil {
			return err
		}
		client.UserID = p.UserID
		client.UserName = p.UserName
		h.engine.RegisterUser(ctx, client.ConnectionID, p.UserID, p.UserName)
		return nil

	case eventCreateChat:
		var desc domain.ChatDescriptor
		if err := json.Unmarshal(frame.Data, &desc); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
		}
		if desc.ID == "" || len(desc.Participants) == 0 {
			return fmt.Errorf("%w: createChat needs an id and participants", errors.ErrInvalidPayload)
		}
		h.engine.CreateChat(ctx, client.UserID, desc)
		return nil

	case eventJoinChat:
		var p JoinChatPayload
		if err := h.decode(frame.Data, &p); err != nil {
			return err
		}
		h.engine.JoinChat(ctx, client.ConnectionID, p.ChatID, p.UserID)
		return nil

	case eventChatMessage:
		var p ChatMessagePayload
		if err := h.decode(frame.Data, &p); err != nil {
			return err
		}
		var ack relay.AckFunc
		if frame.AckID != nil {
			ackID := *frame.AckID
			ack = func(a relay.Ack) {
				client.SendAck(ctx, ackID, a)
			}
		}
		h.engine.PostMessage(ctx, p.toDomain(), ack)
		return nil

	case eventTyping:
		var p TypingPayload
		if err := h.decode(frame.Data, &p); err != nil {
			return err
		}
		h.engine.Typing(ctx, client.ConnectionID, p.ChatID, p.UserName)
		return nil

	case eventStopTyping:
		var p TypingPayload
		if err := h.decode(frame.Data, &p); err != nil {
			return err
		}
		h.engine.StopTyping(ctx, client.ConnectionID, p.ChatID, p.UserName)
		return nil

	default:
		return fmt.Errorf("%w: %q", errors.ErrUnknownEvent, frame.Event)
	}
}

func (h *Handler) decode(data json.RawMessage, payload any) error {
	if err := json.Unmarshal(data, payload); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	if err := h.validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return nil
}

func (h *Handler) reject(connectionID, eventName string, err error) {
	h.engine.Metrics().IncrRejectedPayloads()
	h.log.Warn("Rejected inbound frame",
		"connection_id", connectionID,
		"event", eventName,
		"error", err)
}
