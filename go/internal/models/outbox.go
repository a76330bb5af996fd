package models

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEvent is a domain event recorded in the same transaction as the state change it describes.
type OutboxEvent struct {
	ID        uuid.UUID  `json:"id"`
	RoomID    uuid.UUID  `json:"room_id"`
	EventType string     `json:"event_type"`
	Payload   []byte     `json:"payload"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}
