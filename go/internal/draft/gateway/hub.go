package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/roulettedraft/go/internal/draft/events"
	"github.com/mcdev12/roulettedraft/go/internal/metrics"
	"github.com/rs/zerolog/log"
)

// ErrConnectionClosed is returned by Handle.Send once the underlying connection is gone.
var ErrConnectionClosed = errors.New("connection closed")

// Handle is anything that can receive serialized room events.
type Handle interface {
	ID() string
	Send(message []byte) error
}

// Hub tracks which handles observe which rooms and fans events out to them.
type Hub struct {
	rooms   map[uuid.UUID]map[Handle]struct{}
	mu      sync.RWMutex
	metrics *metrics.Metrics
}

// HubStats is a point-in-time view of the hub's subscriptions.
type HubStats struct {
	TotalSubscriptions int            `json:"total_subscriptions"`
	ActiveRooms        int            `json:"active_rooms"`
	RoomSubscriptions  map[string]int `json:"room_subscriptions"`
}

func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		rooms:   make(map[uuid.UUID]map[Handle]struct{}),
		metrics: m,
	}
}

// Subscribe adds the handle to the room. Subscribing twice is a no-op.
func (h *Hub) Subscribe(roomID uuid.UUID, handle Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()

	handles, ok := h.rooms[roomID]
	if !ok {
		handles = make(map[Handle]struct{})
		h.rooms[roomID] = handles
	}
	if _, exists := handles[handle]; exists {
		return
	}
	handles[handle] = struct{}{}
	h.metrics.SubscriberAdded()

	log.Debug().
		Str("connection_id", handle.ID()).
		Str("room_id", roomID.String()).
		Int("subscribers", len(handles)).
		Msg("subscriber added")
}

// Unsubscribe removes the handle from the room, dropping the room once nobody is left.
func (h *Hub) Unsubscribe(roomID uuid.UUID, handle Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(roomID, handle)
}

// UnsubscribeAll removes the handle from every room it observes.
func (h *Hub) UnsubscribeAll(handle Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for roomID := range h.rooms {
		h.removeLocked(roomID, handle)
	}
}

func (h *Hub) removeLocked(roomID uuid.UUID, handle Handle) {
	handles, ok := h.rooms[roomID]
	if !ok {
		return
	}
	if _, exists := handles[handle]; !exists {
		return
	}
	delete(handles, handle)
	h.metrics.SubscriberRemoved()
	if len(handles) == 0 {
		delete(h.rooms, roomID)
	}

	log.Debug().
		Str("connection_id", handle.ID()).
		Str("room_id", roomID.String()).
		Msg("subscriber removed")
}

// Publish delivers the event to every current subscriber of the room. Handles whose send fails
// are pruned; the remaining subscribers still receive the event.
func (h *Hub) Publish(roomID uuid.UUID, event *events.Event) {
	h.mu.RLock()
	handles, ok := h.rooms[roomID]
	if !ok {
		h.mu.RUnlock()
		return
	}
	targets := make([]Handle, 0, len(handles))
	for handle := range handles {
		targets = append(targets, handle)
	}
	h.mu.RUnlock()

	message, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID.String()).Msg("failed to marshal event for broadcast")
		return
	}

	var dead []Handle
	for _, handle := range targets {
		if err := handle.Send(message); err != nil {
			log.Warn().
				Err(err).
				Str("connection_id", handle.ID()).
				Str("room_id", roomID.String()).
				Msg("send failed, pruning subscriber")
			dead = append(dead, handle)
		}
	}
	if len(dead) > 0 {
		h.mu.Lock()
		for _, handle := range dead {
			h.removeLocked(roomID, handle)
		}
		h.mu.Unlock()
	}

	h.metrics.EventPublished(string(event.Type))
	log.Debug().
		Str("event_type", string(event.Type)).
		Str("room_id", roomID.String()).
		Int("delivered", len(targets)-len(dead)).
		Msg("event broadcasted")
}

// SendTo delivers the event to a single handle regardless of its subscriptions.
func (h *Hub) SendTo(handle Handle, event *events.Event) error {
	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return handle.Send(message)
}

// SubscriberCount returns how many handles observe the room.
func (h *Hub) SubscriberCount(roomID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := HubStats{
		ActiveRooms:       len(h.rooms),
		RoomSubscriptions: make(map[string]int, len(h.rooms)),
	}
	for roomID, handles := range h.rooms {
		stats.TotalSubscriptions += len(handles)
		stats.RoomSubscriptions[roomID.String()] = len(handles)
	}
	return stats
}
