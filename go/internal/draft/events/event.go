package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/roulettedraft/go/internal/draft/drafterr"
	"github.com/mcdev12/roulettedraft/go/internal/models"
)

// Event is the envelope every outbound event travels in
type Event struct {
	ID        string          `json:"id"`                // Event UUID
	RoomID    string          `json:"room_id,omitempty"` // empty for connection-level errors
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// EventType represents the type of room event
type EventType string

const (
	EventTypeRoomUpdated EventType = "RoomUpdated"
	EventTypePickMade    EventType = "PickMade"
	EventTypeError       EventType = "Error"
	EventTypeTimerTick   EventType = "TimerTick"
)

func newEvent(roomID string, eventType EventType, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Event{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}, nil
}

// NewRoomUpdated builds a RoomUpdated event from a snapshot.
func NewRoomUpdated(snapshot *models.RoomSnapshot) (*Event, error) {
	return newEvent(snapshot.Room.ID.String(), EventTypeRoomUpdated, RoomUpdatedPayload{
		Room:         snapshot.Room,
		Participants: snapshot.Participants,
	})
}

// NewPickMade builds a PickMade event.
func NewPickMade(payload PickMadePayload) (*Event, error) {
	return newEvent(payload.RoomID, EventTypePickMade, payload)
}

// NewTimerTick builds a TimerTick event.
func NewTimerTick(payload TimerTickPayload) (*Event, error) {
	return newEvent(payload.RoomID, EventTypeTimerTick, payload)
}

// NewError builds an Error event. A nil roomID scopes it to a single connection.
func NewError(roomID *uuid.UUID, reason drafterr.Code, message string) (*Event, error) {
	payload := ErrorPayload{Reason: reason, Message: message}
	var room string
	if roomID != nil {
		room = roomID.String()
		payload.RoomID = &room
	}
	return newEvent(room, EventTypeError, payload)
}

// ParseEventPayload parses event data into the appropriate payload struct
func ParseEventPayload(event *Event) (any, error) {
	switch event.Type {
	case EventTypeRoomUpdated:
		var payload RoomUpdatedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypePickMade:
		var payload PickMadePayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeError:
		var payload ErrorPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeTimerTick:
		var payload TimerTickPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, fmt.Errorf("unknown event type %q", event.Type)
	}
}

// OutboxRecord converts a room-scoped event into the outbox row that carries it to the relay.
// The row id is the event id so downstream consumers can deduplicate.
func (e *Event) OutboxRecord() (*models.OutboxEvent, error) {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid event id %q: %w", e.ID, err)
	}
	roomID, err := uuid.Parse(e.RoomID)
	if err != nil {
		return nil, fmt.Errorf("event %s is not room scoped: %w", e.ID, err)
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", e.ID, err)
	}
	return &models.OutboxEvent{
		ID:        id,
		RoomID:    roomID,
		EventType: string(e.Type),
		Payload:   payload,
	}, nil
}
