package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/fahimtalukderraj-lang/salesapp/internal/events"
)

const (
	// writeWait bounds a single websocket write
	writeWait = 10 * time.Second
	// heartbeatInterval keeps idle connections alive through proxies
	heartbeatInterval = 30 * time.Second
)

// EventsWSHandler streams bus events to websocket clients.
type EventsWSHandler struct {
	bus *events.Bus
	log zerolog.Logger
}

// NewEventsWSHandler creates a new websocket event stream handler.
func NewEventsWSHandler(bus *events.Bus, log zerolog.Logger) *EventsWSHandler {
	return &EventsWSHandler{
		bus: bus,
		log: log.With().Str("component", "events_ws").Logger(),
	}
}

// ServeHTTP handles GET /api/events/ws requests.
func (h *EventsWSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	h.log.Info().Msg("Client connected to event stream")

	// Buffered so a slow client cannot block bus emitters; the bus runs
	// handlers synchronously on the emitting goroutine.
	eventChan := make(chan *events.Event, 100)
	h.bus.SubscribeAll(func(event *events.Event) {
		select {
		case eventChan <- event:
		default:
			h.log.Warn().
				Str("event_type", string(event.Type)).
				Msg("Event channel full, dropping event")
		}
	})

	// CloseRead discards inbound messages and cancels the context when
	// the client goes away.
	ctx := conn.CloseRead(r.Context())

	if err := h.writeMessage(ctx, conn, map[string]interface{}{
		"type":    "connected",
		"message": "Connected to event stream",
	}); err != nil {
		h.log.Debug().Err(err).Msg("Failed to send connect message")
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Client disconnected from event stream")
			conn.Close(websocket.StatusNormalClosure, "")
			return

		case event := <-eventChan:
			h.log.Debug().
				Str("event_type", string(event.Type)).
				Msg("Sending event to client")

			err := h.writeMessage(ctx, conn, map[string]interface{}{
				"type":      string(event.Type),
				"module":    event.Module,
				"timestamp": event.Timestamp.Format(time.RFC3339),
				"data":      event.Data,
			})
			if err != nil {
				h.log.Debug().Err(err).Msg("Write failed, closing event stream")
				return
			}

		case <-heartbeat.C:
			err := h.writeMessage(ctx, conn, map[string]interface{}{
				"type":      "heartbeat",
				"timestamp": time.Now().Format(time.RFC3339),
			})
			if err != nil {
				h.log.Debug().Err(err).Msg("Heartbeat failed, closing event stream")
				return
			}
		}
	}
}

// writeMessage marshals and sends one JSON text message.
func (h *EventsWSHandler) writeMessage(ctx context.Context, conn *websocket.Conn, payload map[string]interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()

	return conn.Write(writeCtx, websocket.MessageText, data)
}
