package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/roulettedraft/go/internal/draft/drafterr"
	"github.com/mcdev12/roulettedraft/go/internal/draft/events"
	"github.com/mcdev12/roulettedraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

// RoomReader loads the snapshot sent to a new subscriber.
type RoomReader interface {
	GetRoomSnapshot(ctx context.Context, roomID uuid.UUID) (*models.RoomSnapshot, error)
}

// PickMaker commits picks. Failures are fanned out to the room by the implementation.
type PickMaker interface {
	MakePick(ctx context.Context, roomID uuid.UUID, userID string, playerID string) (*models.DraftPick, error)
}

// WebSocketHandler upgrades draft clients and dispatches their messages.
type WebSocketHandler struct {
	hub      *Hub
	rooms    RoomReader
	picks    PickMaker
	upgrader websocket.Upgrader
	config   ConnectionConfig
}

func NewWebSocketHandler(hub *Hub, rooms RoomReader, picks PickMaker, config ConnectionConfig) *WebSocketHandler {
	return &WebSocketHandler{
		hub:   hub,
		rooms: rooms,
		picks: picks,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.checkOrigin,
		},
		config: config,
	}
}

// HandleDraftConnection serves /ws/draft. It blocks for the lifetime of the connection.
func (h *WebSocketHandler) HandleDraftConnection(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written an HTTP error
		log.Warn().Err(err).Msg("failed to upgrade WebSocket connection")
		return
	}

	conn := newConnection(ws, h.config)
	log.Info().
		Str("connection_id", conn.ID()).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket connection established")

	go conn.writePump()
	conn.readPump(func(message []byte) {
		h.dispatch(r.Context(), conn, message)
	})

	h.hub.UnsubscribeAll(conn)
	conn.Close()
	log.Info().
		Str("connection_id", conn.ID()).
		Msg("WebSocket connection closed")
}

func (h *WebSocketHandler) dispatch(ctx context.Context, conn *Connection, data []byte) {
	msg, err := DecodeMessage(data)
	if err != nil {
		log.Debug().Err(err).Str("connection_id", conn.ID()).Msg("rejected client message")
		h.sendError(conn, nil, drafterr.CodeProcessingError, "Error processing message: "+err.Error())
		return
	}

	switch m := msg.(type) {
	case SubscribeRoom:
		h.subscribe(ctx, conn, m)

	case UnsubscribeRoom:
		h.hub.Unsubscribe(m.RoomID, conn)

	case PickPlayer:
		log.Info().
			Str("room_id", m.RoomID.String()).
			Str("user_id", m.UserID).
			Str("player_id", m.PlayerID).
			Msg("pick requested")
		if _, err := h.picks.MakePick(ctx, m.RoomID, m.UserID, m.PlayerID); err != nil {
			log.Debug().Err(err).Str("room_id", m.RoomID.String()).Msg("pick rejected")
		}
	}
}

func (h *WebSocketHandler) subscribe(ctx context.Context, conn *Connection, m SubscribeRoom) {
	snapshot, err := h.rooms.GetRoomSnapshot(ctx, m.RoomID)
	if err != nil {
		derr := drafterr.From(err)
		h.sendError(conn, &m.RoomID, derr.Code, derr.Message)
		return
	}

	h.hub.Subscribe(m.RoomID, conn)
	log.Info().
		Str("room_id", m.RoomID.String()).
		Str("user_id", m.UserID).
		Str("connection_id", conn.ID()).
		Msg("user subscribed to room")

	ev, err := events.NewRoomUpdated(snapshot)
	if err != nil {
		log.Error().Err(err).Msg("failed to build room snapshot event")
		return
	}
	if err := h.hub.SendTo(conn, ev); err != nil && !errors.Is(err, ErrConnectionClosed) {
		log.Warn().Err(err).Str("connection_id", conn.ID()).Msg("failed to send room snapshot")
	}
}

// sendError replies to the originating connection only.
func (h *WebSocketHandler) sendError(conn *Connection, roomID *uuid.UUID, code drafterr.Code, message string) {
	ev, err := events.NewError(roomID, code, message)
	if err != nil {
		log.Error().Err(err).Msg("failed to build error event")
		return
	}
	if err := h.hub.SendTo(conn, ev); err != nil {
		log.Debug().Err(err).Str("connection_id", conn.ID()).Msg("failed to send error event")
	}
}

// HandleConnectionStats returns statistics about active subscriptions
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.hub.Stats()); err != nil {
		log.Error().Err(err).Msg("failed to encode connection stats")
	}
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/draft", h.HandleDraftConnection)
	mux.HandleFunc("GET /ws/stats", h.HandleConnectionStats)
}
