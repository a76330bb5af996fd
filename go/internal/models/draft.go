package models

import (
	"time"

	"github.com/google/uuid"
)

// RoomStatus defines the lifecycle state of a draft room.
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "WAITING"
	RoomStatusDrafting RoomStatus = "DRAFTING"
	RoomStatusDone     RoomStatus = "DONE"
)

// PickOrderMode defines how the pick order is laid out when a draft starts.
type PickOrderMode string

const (
	// PickOrderSingle gives every participant exactly one slot in a shuffled order.
	PickOrderSingle PickOrderMode = "SINGLE"
	// PickOrderSnake repeats the shuffled order round after round, reversing every other round,
	// until every participant's roster quota has a slot.
	PickOrderSnake PickOrderMode = "SNAKE"
)

const (
	MinParticipants        = 2
	MaxParticipants        = 5
	DefaultRosterSizeLimit = 11
)

// Room represents a draft room.
type Room struct {
	ID               uuid.UUID     `json:"id"`
	Name             string        `json:"name"`
	Formation        *string       `json:"formation,omitempty"`
	Status           RoomStatus    `json:"status"`
	PickOrderMode    PickOrderMode `json:"pick_order_mode"`
	MaxParticipants  int           `json:"max_participants"`
	PickOrder        []string      `json:"pick_order"`
	CurrentPickIndex int           `json:"current_pick_index"`
	Version          int           `json:"version"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// CurrentUserID returns the user whose turn it is, if any.
func (r *Room) CurrentUserID() (string, bool) {
	if r.Status != RoomStatusDrafting || r.CurrentPickIndex < 0 || r.CurrentPickIndex >= len(r.PickOrder) {
		return "", false
	}
	return r.PickOrder[r.CurrentPickIndex], true
}

// Clone returns a deep copy of the room.
func (r *Room) Clone() *Room {
	c := *r
	c.PickOrder = append([]string(nil), r.PickOrder...)
	if r.Formation != nil {
		f := *r.Formation
		c.Formation = &f
	}
	return &c
}

// RoomSnapshot is a room together with all of its participants.
type RoomSnapshot struct {
	Room         Room          `json:"room"`
	Participants []Participant `json:"participants"`
}
