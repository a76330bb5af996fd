// Package timer drives the per-room turn countdown shown to everyone in a drafting room.
package timer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/roulettedraft/go/internal/draft/events"
	"github.com/mcdev12/roulettedraft/go/internal/metrics"
	"github.com/mcdev12/roulettedraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) clockwork.Ticker
}

// RoomLookup confirms which of the timed rooms are still drafting.
type RoomLookup interface {
	FindRoomsWithStatus(ctx context.Context, ids []uuid.UUID, status models.RoomStatus) ([]models.Room, error)
}

// Broadcaster delivers tick events to a room's observers.
type Broadcaster interface {
	Publish(roomID uuid.UUID, event *events.Event)
}

type Config struct {
	TurnSeconds  int
	TickInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		TurnSeconds:  30,
		TickInterval: time.Second,
	}
}

// Coordinator owns the remaining-seconds counter of every room with an active countdown.
// A room without an entry has no countdown. Each entry is an independent atomic counter; the
// entry itself is only replaced by Reset and only removed by compare-and-delete, so a reset
// that lands during a tick is never lost.
type Coordinator struct {
	lookup      RoomLookup
	broadcaster Broadcaster
	clock       Clock
	config      Config
	metrics     *metrics.Metrics

	remaining sync.Map // uuid.UUID -> *atomic.Int32
	active    atomic.Int64
}

func NewCoordinator(lookup RoomLookup, broadcaster Broadcaster, clock Clock, config Config, m *metrics.Metrics) *Coordinator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Coordinator{
		lookup:      lookup,
		broadcaster: broadcaster,
		clock:       clock,
		config:      config,
		metrics:     m,
	}
}

// Reset starts a fresh countdown for the room, replacing any running one.
func (c *Coordinator) Reset(roomID uuid.UUID) {
	counter := &atomic.Int32{}
	counter.Store(int32(c.config.TurnSeconds))
	if _, loaded := c.remaining.Swap(roomID, counter); !loaded {
		c.metrics.SetActiveTimers(int(c.active.Add(1)))
	}
	log.Debug().
		Str("room_id", roomID.String()).
		Int("seconds", c.config.TurnSeconds).
		Msg("turn timer reset")
}

// Remaining returns the seconds left for the room and whether a countdown is active.
func (c *Coordinator) Remaining(roomID uuid.UUID) (int, bool) {
	v, ok := c.remaining.Load(roomID)
	if !ok {
		return 0, false
	}
	return int(v.(*atomic.Int32).Load()), true
}

// Run ticks at the configured cadence until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) error {
	ticker := c.clock.NewTicker(c.config.TickInterval)
	defer ticker.Stop()

	log.Info().Dur("interval", c.config.TickInterval).Msg("turn timer started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("turn timer shutting down")
			return nil
		case <-ticker.Chan():
			if err := c.Tick(ctx); err != nil {
				log.Error().Err(err).Msg("turn timer tick failed")
			}
		}
	}
}

// Tick advances every active countdown by one step. Rooms that are no longer drafting lose their
// countdown silently; the rest emit a TimerTick and lose it once it reaches zero.
func (c *Coordinator) Tick(ctx context.Context) error {
	observed := make(map[uuid.UUID]*atomic.Int32)
	c.remaining.Range(func(key, value any) bool {
		observed[key.(uuid.UUID)] = value.(*atomic.Int32)
		return true
	})
	if len(observed) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(observed))
	for id := range observed {
		ids = append(ids, id)
	}
	rooms, err := c.lookup.FindRoomsWithStatus(ctx, ids, models.RoomStatusDrafting)
	if err != nil {
		return fmt.Errorf("failed to look up drafting rooms: %w", err)
	}
	drafting := make(map[uuid.UUID]*models.Room, len(rooms))
	for i := range rooms {
		drafting[rooms[i].ID] = &rooms[i]
	}

	for id, counter := range observed {
		room, ok := drafting[id]
		if !ok {
			c.drop(id, counter)
			log.Debug().Str("room_id", id.String()).Msg("room no longer drafting, timer dropped")
			continue
		}

		left := counter.Add(-1)
		if left <= 0 {
			left = 0
			c.drop(id, counter)
		}
		if current, ok := c.remaining.Load(id); ok && current != counter {
			// reset after we observed it; the fresh countdown speaks for itself next tick
			continue
		}

		payload := events.TimerTickPayload{
			RoomID:           id.String(),
			RemainingSeconds: int(left),
		}
		if userID, ok := room.CurrentUserID(); ok {
			payload.CurrentUserID = &userID
		}
		ev, err := events.NewTimerTick(payload)
		if err != nil {
			return err
		}
		c.broadcaster.Publish(id, ev)

		if left == 0 {
			log.Info().Str("room_id", id.String()).Msg("turn timer expired")
		}
	}
	return nil
}

func (c *Coordinator) drop(id uuid.UUID, counter *atomic.Int32) {
	if c.remaining.CompareAndDelete(id, counter) {
		c.metrics.SetActiveTimers(int(c.active.Add(-1)))
	}
}
