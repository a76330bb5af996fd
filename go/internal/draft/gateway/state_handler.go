package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/mcdev12/roulettedraft/go/internal/draft/drafterr"
	"github.com/mcdev12/roulettedraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

// TimerView exposes the countdown of a room, if one is running.
type TimerView interface {
	Remaining(roomID uuid.UUID) (int, bool)
}

// RoomStateResponse is what a reconnecting client needs to redraw a room.
type RoomStateResponse struct {
	Room          models.Room          `json:"room"`
	Participants  []models.Participant `json:"participants"`
	CurrentUserID *string              `json:"current_user_id,omitempty"`
	TimeRemaining *int                 `json:"time_remaining_sec,omitempty"`
}

// StateHandler handles HTTP requests for room state
type StateHandler struct {
	rooms  RoomReader
	timers TimerView
}

func NewStateHandler(rooms RoomReader, timers TimerView) *StateHandler {
	return &StateHandler{
		rooms:  rooms,
		timers: timers,
	}
}

// HandleGetRoomState handles GET /api/rooms/{id}/state
func (h *StateHandler) HandleGetRoomState(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid room ID format", http.StatusBadRequest)
		return
	}

	snapshot, err := h.rooms.GetRoomSnapshot(r.Context(), roomID)
	if err != nil {
		if drafterr.CodeOf(err) == drafterr.CodeRoomNotFound {
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("room_id", roomID.String()).Msg("failed to get room state")
		http.Error(w, "Failed to get room state", http.StatusInternalServerError)
		return
	}

	state := RoomStateResponse{
		Room:         snapshot.Room,
		Participants: snapshot.Participants,
	}
	if userID, ok := snapshot.Room.CurrentUserID(); ok {
		state.CurrentUserID = &userID
	}
	if remaining, ok := h.timers.Remaining(roomID); ok {
		state.TimeRemaining = &remaining
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(state); err != nil {
		log.Error().Err(err).Msg("failed to encode room state response")
	}
}

// RegisterStateRoutes registers state-related HTTP routes
func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/rooms/{id}/state", h.HandleGetRoomState)
}
