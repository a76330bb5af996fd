// Package pick commits picks. A pick is validated against a read of the room, then committed
// with a conditional update on (status, current pick index, version) so that concurrent
// submissions for the same turn produce exactly one pick.
package pick

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/roulettedraft/go/internal/draft/drafterr"
	"github.com/mcdev12/roulettedraft/go/internal/draft/events"
	"github.com/mcdev12/roulettedraft/go/internal/draft/repository"
	"github.com/mcdev12/roulettedraft/go/internal/metrics"
	"github.com/mcdev12/roulettedraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Catalog answers whether a player id exists in the player pool.
type Catalog interface {
	PlayerExists(ctx context.Context, playerID string) (bool, error)
}

// Broadcaster delivers room events to live observers.
type Broadcaster interface {
	Publish(roomID uuid.UUID, event *events.Event)
}

// TimerResetter restarts a room's turn countdown.
type TimerResetter interface {
	Reset(roomID uuid.UUID)
}

// App handles pick business logic
type App struct {
	store       repository.Store
	catalog     Catalog
	broadcaster Broadcaster
	timers      TimerResetter
	metrics     *metrics.Metrics
}

// NewApp creates a new pick App
func NewApp(store repository.Store, catalog Catalog, broadcaster Broadcaster, timers TimerResetter, m *metrics.Metrics) *App {
	return &App{
		store:       store,
		catalog:     catalog,
		broadcaster: broadcaster,
		timers:      timers,
		metrics:     m,
	}
}

type commitResult struct {
	pick        *models.DraftPick
	room        *models.Room
	completed   bool
	pickMade    *events.Event
	roomUpdated *events.Event
}

// MakePick records userID's claim on playerID in the room. Every failure is returned and also
// published to the room as an Error event. ConcurrentModification means another pick won the
// turn; the caller may retry.
func (a *App) MakePick(ctx context.Context, roomID uuid.UUID, userID string, playerID string) (*models.DraftPick, error) {
	room, err := a.validate(ctx, roomID, userID, playerID)
	if err != nil {
		return nil, a.fail(roomID, err)
	}

	// once the conditional update is issued the outcome must not depend on the caller hanging up
	result, err := a.commit(context.WithoutCancel(ctx), room, userID, playerID)
	if err != nil {
		return nil, a.fail(roomID, err)
	}

	a.timers.Reset(roomID)
	a.metrics.PickCommitted()
	a.broadcaster.Publish(roomID, result.pickMade)
	if result.completed {
		a.broadcaster.Publish(roomID, result.roomUpdated)
	}

	log.Info().
		Str("room_id", roomID.String()).
		Str("user_id", userID).
		Str("player_id", playerID).
		Int("pick_no", result.pick.PickNo).
		Int("current_pick_index", result.room.CurrentPickIndex).
		Bool("completed", result.completed).
		Msg("pick committed")
	return result.pick, nil
}

// validate checks the request against a read of the room, in the order clients rely on.
func (a *App) validate(ctx context.Context, roomID uuid.UUID, userID string, playerID string) (*models.Room, error) {
	room, err := a.store.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, drafterr.New(drafterr.CodeRoomNotFound, "room not found: %s", roomID)
		}
		return nil, err
	}
	if room.Status != models.RoomStatusDrafting {
		return nil, drafterr.New(drafterr.CodeInvalidRoomState, "room is not drafting, status: %s", room.Status)
	}
	if room.CurrentPickIndex >= len(room.PickOrder) {
		return nil, drafterr.New(drafterr.CodeDraftComplete, "every pick slot has been used")
	}
	if current := room.PickOrder[room.CurrentPickIndex]; current != userID {
		return nil, drafterr.New(drafterr.CodeNotYourTurn, "not your turn, current turn: %s", current)
	}

	taken, err := a.store.PickExists(ctx, roomID, playerID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, drafterr.New(drafterr.CodePlayerAlreadyPicked, "player %s already picked", playerID)
	}

	known, err := a.catalog.PlayerExists(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up player %s: %w", playerID, err)
	}
	if !known {
		return nil, drafterr.New(drafterr.CodePlayerNotFound, "player not found: %s", playerID)
	}

	participant, err := a.store.GetParticipant(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, drafterr.New(drafterr.CodeParticipantNotFound, "participant %s not found in room", userID)
		}
		return nil, err
	}
	if participant.RosterFull() {
		return nil, drafterr.New(drafterr.CodeRosterLimitReached, "roster limit of %d reached", participant.RosterSizeLimit)
	}
	return room, nil
}

func (a *App) commit(ctx context.Context, room *models.Room, userID string, playerID string) (*commitResult, error) {
	result := &commitResult{}
	err := a.store.InTx(ctx, func(tx repository.Store) error {
		advanced, err := tx.ConditionalAdvancePick(ctx, room.ID, room.CurrentPickIndex, room.Version)
		if err != nil {
			if errors.Is(err, repository.ErrConditionNotMet) {
				return drafterr.New(drafterr.CodeConcurrentModification, "room changed while the pick was in flight, retry")
			}
			return err
		}

		// counted after the conditional update so the room row lock orders pick numbers
		count, err := tx.CountPicks(ctx, room.ID)
		if err != nil {
			return err
		}
		pick := &models.DraftPick{
			ID:       uuid.New(),
			RoomID:   room.ID,
			UserID:   userID,
			PlayerID: playerID,
			PickNo:   count + 1,
		}
		if err := tx.InsertPick(ctx, pick); err != nil {
			if errors.Is(err, repository.ErrDuplicatePick) {
				return drafterr.New(drafterr.CodePlayerAlreadyPicked, "player %s already picked", playerID)
			}
			return err
		}

		if _, err := tx.AppendSelectedPlayer(ctx, room.ID, userID, playerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return drafterr.New(drafterr.CodeParticipantNotFound, "participant %s not found in room", userID)
			}
			return err
		}

		participants, err := tx.GetParticipants(ctx, room.ID)
		if err != nil {
			return err
		}
		if pick.PickNo == models.TotalRosterSize(participants) {
			advanced, err = tx.CompleteRoom(ctx, room.ID)
			if err != nil {
				return fmt.Errorf("failed to complete room: %w", err)
			}
			result.completed = true
		}

		payload := events.PickMadePayload{
			RoomID:           room.ID.String(),
			UserID:           userID,
			PlayerID:         playerID,
			PickNo:           pick.PickNo,
			CurrentPickIndex: advanced.CurrentPickIndex,
		}
		if next, ok := advanced.CurrentUserID(); ok {
			payload.NextUserID = &next
		}
		if result.pickMade, err = events.NewPickMade(payload); err != nil {
			return err
		}
		if err := recordEvent(ctx, tx, result.pickMade); err != nil {
			return err
		}

		if result.completed {
			snapshot := &models.RoomSnapshot{Room: *advanced, Participants: participants}
			if result.roomUpdated, err = events.NewRoomUpdated(snapshot); err != nil {
				return err
			}
			if err := recordEvent(ctx, tx, result.roomUpdated); err != nil {
				return err
			}
		}

		result.pick = pick
		result.room = advanced
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListPicks returns the room's picks ordered by pick number.
func (a *App) ListPicks(ctx context.Context, roomID uuid.UUID) ([]models.DraftPick, error) {
	if _, err := a.store.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, drafterr.New(drafterr.CodeRoomNotFound, "room not found: %s", roomID)
		}
		return nil, drafterr.Internal(err)
	}
	picks, err := a.store.ListPicks(ctx, roomID)
	if err != nil {
		return nil, drafterr.Internal(err)
	}
	return picks, nil
}

// fail reports err to the room's observers and returns it as a typed error.
func (a *App) fail(roomID uuid.UUID, err error) error {
	derr := drafterr.From(err)
	a.metrics.PickFailed(string(derr.Code))

	if derr.Code == drafterr.CodeInternal {
		log.Error().Err(err).Str("room_id", roomID.String()).Msg("pick failed")
	} else {
		log.Debug().Str("room_id", roomID.String()).Str("reason", string(derr.Code)).Msg(derr.Message)
	}

	ev, evErr := events.NewError(&roomID, derr.Code, derr.Message)
	if evErr != nil {
		log.Error().Err(evErr).Msg("failed to build error event")
		return derr
	}
	a.broadcaster.Publish(roomID, ev)
	return derr
}

func recordEvent(ctx context.Context, tx repository.Store, ev *events.Event) error {
	rec, err := ev.OutboxRecord()
	if err != nil {
		return err
	}
	return tx.InsertOutboxEvent(ctx, rec)
}
