package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mcdev12/roulettedraft/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftingRoom(t *testing.T, repo *MemoryRepository) *models.Room {
	t.Helper()
	room := &models.Room{
		ID:              uuid.New(),
		Name:            "friday",
		Status:          models.RoomStatusDrafting,
		PickOrderMode:   models.PickOrderSingle,
		MaxParticipants: 2,
		PickOrder:       []string{"a", "b"},
	}
	require.NoError(t, repo.CreateRoom(context.Background(), room))
	return room
}

func TestConditionalAdvancePick(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	room := draftingRoom(t, repo)

	advanced, err := repo.ConditionalAdvancePick(ctx, room.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, advanced.CurrentPickIndex)
	assert.Equal(t, 1, advanced.Version)

	_, err = repo.ConditionalAdvancePick(ctx, room.ID, 0, 0)
	assert.ErrorIs(t, err, ErrConditionNotMet)

	_, err = repo.ConditionalAdvancePick(ctx, uuid.New(), 0, 0)
	assert.ErrorIs(t, err, ErrConditionNotMet)
}

func TestConditionalAdvancePickRequiresDrafting(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	room := draftingRoom(t, repo)

	_, err := repo.CompleteRoom(ctx, room.ID)
	require.NoError(t, err)

	_, err = repo.ConditionalAdvancePick(ctx, room.ID, 0, 0)
	assert.ErrorIs(t, err, ErrConditionNotMet)

	_, err = repo.CompleteRoom(ctx, room.ID)
	assert.ErrorIs(t, err, ErrConditionNotMet)
}

func TestInsertPickUniquePerRoomAndPlayer(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	room := draftingRoom(t, repo)
	other := draftingRoom(t, repo)

	require.NoError(t, repo.InsertPick(ctx, &models.DraftPick{ID: uuid.New(), RoomID: room.ID, UserID: "a", PlayerID: "p7", PickNo: 1}))
	err := repo.InsertPick(ctx, &models.DraftPick{ID: uuid.New(), RoomID: room.ID, UserID: "b", PlayerID: "p7", PickNo: 2})
	assert.ErrorIs(t, err, ErrDuplicatePick)

	// the same player is free in another room
	require.NoError(t, repo.InsertPick(ctx, &models.DraftPick{ID: uuid.New(), RoomID: other.ID, UserID: "a", PlayerID: "p7", PickNo: 1}))

	exists, err := repo.PickExists(ctx, room.ID, "p7")
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := repo.CountPicks(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	room := draftingRoom(t, repo)
	boom := errors.New("boom")

	err := repo.InTx(ctx, func(tx Store) error {
		if _, err := tx.ConditionalAdvancePick(ctx, room.ID, 0, 0); err != nil {
			return err
		}
		if err := tx.InsertPick(ctx, &models.DraftPick{ID: uuid.New(), RoomID: room.ID, UserID: "a", PlayerID: "p1", PickNo: 1}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := repo.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentPickIndex)
	assert.Equal(t, 0, got.Version)

	count, err := repo.CountPicks(ctx, room.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestInTxCommits(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	room := draftingRoom(t, repo)

	err := repo.InTx(ctx, func(tx Store) error {
		_, err := tx.ConditionalAdvancePick(ctx, room.ID, 0, 0)
		return err
	})
	require.NoError(t, err)

	got, err := repo.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentPickIndex)
}

func TestParticipants(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	room := draftingRoom(t, repo)

	p := &models.Participant{ID: uuid.New(), RoomID: room.ID, UserID: "a", DisplayName: "Ann", RosterSizeLimit: 1}
	require.NoError(t, repo.AddParticipant(ctx, p))
	assert.ErrorIs(t, repo.AddParticipant(ctx, &models.Participant{ID: uuid.New(), RoomID: room.ID, UserID: "a"}), ErrDuplicateParticipant)

	updated, err := repo.AppendSelectedPlayer(ctx, room.ID, "a", "p9")
	require.NoError(t, err)
	assert.Equal(t, []string{"p9"}, updated.SelectedPlayerIDs)

	_, err = repo.AppendSelectedPlayer(ctx, room.ID, "a", "p10")
	assert.Error(t, err)

	teams, err := repo.UpdateSelectedTeams(ctx, room.ID, "a", []string{"Arsenal"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Arsenal"}, teams.SelectedTeams)
	assert.Equal(t, []string{"p9"}, teams.SelectedPlayerIDs)

	_, err = repo.GetParticipant(ctx, room.ID, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindRoomsWithStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	drafting := draftingRoom(t, repo)
	done := draftingRoom(t, repo)
	_, err := repo.CompleteRoom(ctx, done.ID)
	require.NoError(t, err)

	rooms, err := repo.FindRoomsWithStatus(ctx, []uuid.UUID{drafting.ID, done.ID, uuid.New()}, models.RoomStatusDrafting)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, drafting.ID, rooms[0].ID)
}

func TestOutbox(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	first := &models.OutboxEvent{ID: uuid.New(), RoomID: uuid.New(), EventType: "PickMade", Payload: []byte(`{}`)}
	second := &models.OutboxEvent{ID: uuid.New(), RoomID: uuid.New(), EventType: "RoomUpdated", Payload: []byte(`{}`)}
	require.NoError(t, repo.InsertOutboxEvent(ctx, first))
	require.NoError(t, repo.InsertOutboxEvent(ctx, second))

	unsent, err := repo.FetchUnsentOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, unsent, 2)

	require.NoError(t, repo.MarkOutboxSent(ctx, first.ID))
	assert.Error(t, repo.MarkOutboxSent(ctx, first.ID))

	unsent, err = repo.FetchUnsentOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, unsent, 1)
	assert.Equal(t, second.ID, unsent[0].ID)
}

func TestSentOutboxRowsAreDropped(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	for range 50 {
		ev := &models.OutboxEvent{ID: uuid.New(), RoomID: uuid.New(), EventType: "PickMade", Payload: []byte(`{}`)}
		require.NoError(t, repo.InTx(ctx, func(tx Store) error { return tx.InsertOutboxEvent(ctx, ev) }))
		require.NoError(t, repo.MarkOutboxSent(ctx, ev.ID))
	}
	assert.Empty(t, repo.state.outbox)

	unsent, err := repo.FetchUnsentOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, unsent)
}

func TestInTxCopiesOnlyTouchedRooms(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	touched := draftingRoom(t, repo)
	untouched := draftingRoom(t, repo)
	untouchedBefore := repo.state.rooms[untouched.ID]
	touchedBefore := repo.state.rooms[touched.ID]

	err := repo.InTx(ctx, func(tx Store) error {
		view := tx.(*MemoryRepository)
		if _, err := tx.ConditionalAdvancePick(ctx, touched.ID, 0, 0); err != nil {
			return err
		}
		assert.Len(t, view.state.rooms, 1)
		assert.Zero(t, touchedBefore.CurrentPickIndex, "committed room is not written until commit")
		return nil
	})
	require.NoError(t, err)

	assert.Same(t, untouchedBefore, repo.state.rooms[untouched.ID])
	assert.Equal(t, 1, repo.state.rooms[touched.ID].CurrentPickIndex)
}

func TestInTxOutboxView(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	committed := &models.OutboxEvent{ID: uuid.New(), RoomID: uuid.New(), EventType: "PickMade", Payload: []byte(`{}`)}
	require.NoError(t, repo.InsertOutboxEvent(ctx, committed))
	pending := &models.OutboxEvent{ID: uuid.New(), RoomID: uuid.New(), EventType: "RoomUpdated", Payload: []byte(`{}`)}

	err := repo.InTx(ctx, func(tx Store) error {
		require.NoError(t, tx.InsertOutboxEvent(ctx, pending))
		unsent, err := tx.FetchUnsentOutbox(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, unsent, 2)
		return tx.MarkOutboxSent(ctx, committed.ID)
	})
	require.NoError(t, err)

	unsent, err := repo.FetchUnsentOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, unsent, 1)
	assert.Equal(t, pending.ID, unsent[0].ID)
}
