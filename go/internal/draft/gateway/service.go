package gateway

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// Service bundles the websocket endpoint and the room state endpoint around a shared Hub.
type Service struct {
	wsHandler    *WebSocketHandler
	stateHandler *StateHandler
}

func NewService(config ConnectionConfig, hub *Hub, rooms RoomReader, picks PickMaker, timers TimerView) *Service {
	return &Service{
		wsHandler:    NewWebSocketHandler(hub, rooms, picks, config),
		stateHandler: NewStateHandler(rooms, timers),
	}
}

// RegisterRoutes registers the WebSocket and state HTTP routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	s.stateHandler.RegisterStateRoutes(mux)
	log.Info().Msg("draft gateway routes registered")
}
