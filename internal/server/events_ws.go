package server

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/aristath/mvt-analytics/internal/events"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const wsWriteTimeout = 5 * time.Second

// EventsWebSocketHandler pushes bus events to WebSocket clients. The client
// never sends data; the connection only carries events and pings.
type EventsWebSocketHandler struct {
	eventBus       *events.Bus
	originPatterns []string
	log            zerolog.Logger
}

// NewEventsWebSocketHandler creates a new websocket handler. origins are the
// allowed CORS origins; their hosts become accepted origin patterns.
func NewEventsWebSocketHandler(eventBus *events.Bus, origins []string, log zerolog.Logger) *EventsWebSocketHandler {
	var patterns []string
	for _, origin := range origins {
		if origin == "*" {
			patterns = append(patterns, "*")
			continue
		}
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return &EventsWebSocketHandler{
		eventBus:       eventBus,
		originPatterns: patterns,
		log:            log.With().Str("component", "events_ws").Logger(),
	}
}

// ServeHTTP handles GET /api/events/ws?types=A,B
func (h *EventsWebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket handshake failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	types := parseTypes(r)
	eventChan, unsubscribe := subscribe(h.eventBus, types, h.log)
	defer unsubscribe()

	// CloseRead discards incoming messages and cancels ctx once the peer goes away
	ctx := conn.CloseRead(r.Context())
	h.log.Info().Int("types", len(types)).Msg("WebSocket client connected")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("WebSocket client disconnected")
			return

		case event := <-eventChan:
			if err := h.write(ctx, conn, event); err != nil {
				h.log.Debug().Err(err).Msg("Failed to write event")
				return
			}

		case <-heartbeat.C:
			pingCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				h.log.Debug().Err(err).Msg("WebSocket ping failed")
				return
			}
		}
	}
}

func (h *EventsWebSocketHandler) write(ctx context.Context, conn *websocket.Conn, event *events.Event) error {
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, event)
}
