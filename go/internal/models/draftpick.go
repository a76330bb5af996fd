package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftPick represents a committed pick in a room. Picks are never updated.
type DraftPick struct {
	ID        uuid.UUID `json:"id"`
	RoomID    uuid.UUID `json:"room_id"`
	UserID    string    `json:"user_id"`
	PlayerID  string    `json:"player_id"`
	PickNo    int       `json:"pick_no"` // 1-based, no gaps within a room
	CreatedAt time.Time `json:"created_at"`
}
