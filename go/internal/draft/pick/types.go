package pick

import (
	"github.com/google/uuid"
	"github.com/mcdev12/roulettedraft/go/internal/models"
)

// MakePickRequest represents a request to claim a player for the caller's roster
type MakePickRequest struct {
	RoomID   uuid.UUID `json:"room_id"`
	UserID   string    `json:"user_id"`
	PlayerID string    `json:"player_id"`
}

// ListPicksRequest represents a request for a room's pick history
type ListPicksRequest struct {
	RoomID uuid.UUID `json:"room_id"`
}

// ListPicksResponse holds the picks of a room ordered by pick number
type ListPicksResponse struct {
	Picks []models.DraftPick `json:"picks"`
}
