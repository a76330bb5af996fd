package timer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/roulettedraft/go/internal/draft/events"
	"github.com/mcdev12/roulettedraft/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLookup struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]models.Room
	calls [][]uuid.UUID
	err   error
}

func (s *stubLookup) FindRoomsWithStatus(_ context.Context, ids []uuid.UUID, status models.RoomStatus) ([]models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, ids)
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Room
	for _, id := range ids {
		if r, ok := s.rooms[id]; ok && r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []*events.Event
}

func (b *recordingBroadcaster) Publish(_ uuid.UUID, ev *events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

func (b *recordingBroadcaster) ticks(t *testing.T) []events.TimerTickPayload {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.TimerTickPayload
	for _, ev := range b.events {
		payload, err := events.ParseEventPayload(ev)
		require.NoError(t, err)
		out = append(out, payload.(events.TimerTickPayload))
	}
	return out
}

func newDraftingRoom() models.Room {
	return models.Room{
		ID:        uuid.New(),
		Status:    models.RoomStatusDrafting,
		PickOrder: []string{"a", "b"},
	}
}

func newCoordinator(lookup RoomLookup, b Broadcaster, clock Clock) *Coordinator {
	return NewCoordinator(lookup, b, clock, DefaultConfig(), nil)
}

func TestCountdownRunsToZeroThenDisappears(t *testing.T) {
	room := newDraftingRoom()
	lookup := &stubLookup{rooms: map[uuid.UUID]models.Room{room.ID: room}}
	b := &recordingBroadcaster{}
	c := newCoordinator(lookup, b, clockwork.NewFakeClock())

	c.Reset(room.ID)
	for i := 0; i < 30; i++ {
		require.NoError(t, c.Tick(context.Background()))
	}

	_, active := c.Remaining(room.ID)
	assert.False(t, active)

	ticks := b.ticks(t)
	require.Len(t, ticks, 30)
	assert.Equal(t, 29, ticks[0].RemainingSeconds)
	assert.Equal(t, 0, ticks[29].RemainingSeconds)
	require.NotNil(t, ticks[0].CurrentUserID)
	assert.Equal(t, "a", *ticks[0].CurrentUserID)

	// nothing left to tick
	require.NoError(t, c.Tick(context.Background()))
	assert.Len(t, b.ticks(t), 30)
}

func TestTickDropsRoomsNoLongerDrafting(t *testing.T) {
	room := newDraftingRoom()
	room.Status = models.RoomStatusDone
	lookup := &stubLookup{rooms: map[uuid.UUID]models.Room{room.ID: room}}
	b := &recordingBroadcaster{}
	c := newCoordinator(lookup, b, clockwork.NewFakeClock())

	c.Reset(room.ID)
	require.NoError(t, c.Tick(context.Background()))

	_, active := c.Remaining(room.ID)
	assert.False(t, active)
	assert.Empty(t, b.ticks(t))
}

func TestTickLooksUpOnlyActiveRooms(t *testing.T) {
	timed := newDraftingRoom()
	idle := newDraftingRoom()
	lookup := &stubLookup{rooms: map[uuid.UUID]models.Room{timed.ID: timed, idle.ID: idle}}
	c := newCoordinator(lookup, &recordingBroadcaster{}, clockwork.NewFakeClock())

	require.NoError(t, c.Tick(context.Background()))
	assert.Empty(t, lookup.calls, "no lookup without active timers")

	c.Reset(timed.ID)
	require.NoError(t, c.Tick(context.Background()))
	require.Len(t, lookup.calls, 1)
	assert.Equal(t, []uuid.UUID{timed.ID}, lookup.calls[0])
}

func TestResetRestartsCountdown(t *testing.T) {
	room := newDraftingRoom()
	lookup := &stubLookup{rooms: map[uuid.UUID]models.Room{room.ID: room}}
	c := newCoordinator(lookup, &recordingBroadcaster{}, clockwork.NewFakeClock())

	c.Reset(room.ID)
	for i := 0; i < 10; i++ {
		require.NoError(t, c.Tick(context.Background()))
	}
	left, _ := c.Remaining(room.ID)
	assert.Equal(t, 20, left)

	c.Reset(room.ID)
	left, active := c.Remaining(room.ID)
	assert.True(t, active)
	assert.Equal(t, 30, left)
}

func TestLookupFailureKeepsCountdowns(t *testing.T) {
	room := newDraftingRoom()
	lookup := &stubLookup{err: errors.New("db down")}
	c := newCoordinator(lookup, &recordingBroadcaster{}, clockwork.NewFakeClock())

	c.Reset(room.ID)
	assert.Error(t, c.Tick(context.Background()))

	left, active := c.Remaining(room.ID)
	assert.True(t, active)
	assert.Equal(t, 30, left)
}

func TestConcurrentResetAndTick(t *testing.T) {
	rooms := make(map[uuid.UUID]models.Room)
	var ids []uuid.UUID
	for i := 0; i < 8; i++ {
		r := newDraftingRoom()
		rooms[r.ID] = r
		ids = append(ids, r.ID)
	}
	c := newCoordinator(&stubLookup{rooms: rooms}, &recordingBroadcaster{}, clockwork.NewFakeClock())

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				c.Reset(id)
			}
		}(id)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			_ = c.Tick(context.Background())
		}
	}()
	wg.Wait()

	for _, id := range ids {
		left, active := c.Remaining(id)
		if active {
			assert.GreaterOrEqual(t, left, 0)
			assert.LessOrEqual(t, left, 30)
		}
	}
}

func TestRunTicksOnClock(t *testing.T) {
	room := newDraftingRoom()
	lookup := &stubLookup{rooms: map[uuid.UUID]models.Room{room.ID: room}}
	clock := clockwork.NewFakeClock()
	c := newCoordinator(lookup, &recordingBroadcaster{}, clock)
	c.Reset(room.ID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Second)

	assert.Eventually(t, func() bool {
		left, _ := c.Remaining(room.ID)
		return left == 29
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
