package gateway

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// MessageType discriminates inbound client frames.
type MessageType string

const (
	MessageTypeSubscribeRoom   MessageType = "SUBSCRIBE_ROOM"
	MessageTypeUnsubscribeRoom MessageType = "UNSUBSCRIBE_ROOM"
	MessageTypePickPlayer      MessageType = "PICK_PLAYER"
)

// InboundMessage is one of SubscribeRoom, UnsubscribeRoom or PickPlayer.
type InboundMessage interface {
	Type() MessageType
}

type SubscribeRoom struct {
	RoomID uuid.UUID `json:"roomId"`
	UserID string    `json:"userId"`
}

type UnsubscribeRoom struct {
	RoomID uuid.UUID `json:"roomId"`
}

type PickPlayer struct {
	RoomID   uuid.UUID `json:"roomId"`
	UserID   string    `json:"userId"`
	PlayerID string    `json:"playerId"`
}

func (SubscribeRoom) Type() MessageType   { return MessageTypeSubscribeRoom }
func (UnsubscribeRoom) Type() MessageType { return MessageTypeUnsubscribeRoom }
func (PickPlayer) Type() MessageType      { return MessageTypePickPlayer }

var (
	errMissingRoomID   = errors.New("roomId is required")
	errMissingUserID   = errors.New("userId is required")
	errMissingPlayerID = errors.New("playerId is required")
)

// DecodeMessage parses a client frame into its concrete variant.
func DecodeMessage(data []byte) (InboundMessage, error) {
	var envelope struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}

	switch envelope.Type {
	case MessageTypeSubscribeRoom:
		var msg SubscribeRoom
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("malformed %s: %w", envelope.Type, err)
		}
		if msg.RoomID == uuid.Nil {
			return nil, errMissingRoomID
		}
		if msg.UserID == "" {
			return nil, errMissingUserID
		}
		return msg, nil

	case MessageTypeUnsubscribeRoom:
		var msg UnsubscribeRoom
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("malformed %s: %w", envelope.Type, err)
		}
		if msg.RoomID == uuid.Nil {
			return nil, errMissingRoomID
		}
		return msg, nil

	case MessageTypePickPlayer:
		var msg PickPlayer
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("malformed %s: %w", envelope.Type, err)
		}
		if msg.RoomID == uuid.Nil {
			return nil, errMissingRoomID
		}
		if msg.UserID == "" {
			return nil, errMissingUserID
		}
		if msg.PlayerID == "" {
			return nil, errMissingPlayerID
		}
		return msg, nil

	case "":
		return nil, errors.New("message type is required")

	default:
		return nil, fmt.Errorf("unknown message type %q", envelope.Type)
	}
}
