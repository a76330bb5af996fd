package events

import (
	"github.com/mcdev12/roulettedraft/go/internal/draft/drafterr"
	"github.com/mcdev12/roulettedraft/go/internal/models"
)

// Event payload types shared by the coordinators, the gateway and the outbox relay

// RoomUpdatedPayload carries a full room snapshot.
type RoomUpdatedPayload struct {
	Room         models.Room          `json:"room"`
	Participants []models.Participant `json:"participants"`
}

// PickMadePayload is the payload for a PickMade event
type PickMadePayload struct {
	RoomID           string  `json:"room_id"`
	UserID           string  `json:"user_id"`
	PlayerID         string  `json:"player_id"`
	PickNo           int     `json:"pick_no"`
	CurrentPickIndex int     `json:"current_pick_index"`
	NextUserID       *string `json:"next_user_id,omitempty"` // nil once the order is exhausted
}

// ErrorPayload is the payload for an Error event
type ErrorPayload struct {
	RoomID  *string       `json:"room_id,omitempty"`
	Reason  drafterr.Code `json:"reason"`
	Message string        `json:"message"`
}

// TimerTickPayload is the payload for a TimerTick event
type TimerTickPayload struct {
	RoomID           string  `json:"room_id"`
	RemainingSeconds int     `json:"remaining_seconds"`
	CurrentUserID    *string `json:"current_user_id,omitempty"`
}
