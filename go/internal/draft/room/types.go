package room

import (
	"github.com/google/uuid"
	"github.com/mcdev12/roulettedraft/go/internal/models"
)

// CreateRoomRequest represents a request to create a new room
type CreateRoomRequest struct {
	Name            string               `json:"name"`
	Formation       *string              `json:"formation,omitempty"`
	MaxParticipants *int                 `json:"max_participants,omitempty"` // nil means 5
	PickOrderMode   models.PickOrderMode `json:"pick_order_mode,omitempty"`  // empty means SINGLE
}

// JoinRoomRequest represents a request to take a seat in a room
type JoinRoomRequest struct {
	RoomID          uuid.UUID `json:"room_id"`
	UserID          string    `json:"user_id"`
	DisplayName     string    `json:"display_name"`
	RosterSizeLimit *int      `json:"roster_size_limit,omitempty"` // nil means 11
}

// UpdateSelectedTeamsRequest replaces a participant's preferred club list
type UpdateSelectedTeamsRequest struct {
	RoomID        uuid.UUID `json:"room_id"`
	UserID        string    `json:"user_id"`
	SelectedTeams []string  `json:"selected_teams"`
}
