// Package room implements the room lifecycle: creation, seating participants and starting the
// draft. Finishing a draft belongs to the pick coordinator.
package room

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/mcdev12/roulettedraft/go/internal/draft/drafterr"
	"github.com/mcdev12/roulettedraft/go/internal/draft/events"
	"github.com/mcdev12/roulettedraft/go/internal/draft/repository"
	"github.com/mcdev12/roulettedraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Broadcaster delivers room events to live observers.
type Broadcaster interface {
	Publish(roomID uuid.UUID, event *events.Event)
}

// TimerResetter restarts a room's turn countdown.
type TimerResetter interface {
	Reset(roomID uuid.UUID)
}

// App handles room business logic
type App struct {
	store       repository.Store
	broadcaster Broadcaster
	timers      TimerResetter
	shuffle     Shuffler
}

// NewApp creates a new room App
func NewApp(store repository.Store, broadcaster Broadcaster, timers TimerResetter) *App {
	return &App{
		store:       store,
		broadcaster: broadcaster,
		timers:      timers,
		shuffle:     RandomShuffle,
	}
}

// CreateRoom opens a WAITING room with no participants.
func (a *App) CreateRoom(ctx context.Context, req CreateRoomRequest) (*models.RoomSnapshot, error) {
	if err := normalizeCreateRoomRequest(&req); err != nil {
		return nil, err
	}

	room := &models.Room{
		ID:              uuid.New(),
		Name:            req.Name,
		Formation:       req.Formation,
		Status:          models.RoomStatusWaiting,
		PickOrderMode:   req.PickOrderMode,
		MaxParticipants: *req.MaxParticipants,
		PickOrder:       []string{},
	}

	var (
		snapshot *models.RoomSnapshot
		ev       *events.Event
	)
	err := a.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.CreateRoom(ctx, room); err != nil {
			return err
		}
		snapshot = &models.RoomSnapshot{Room: *room, Participants: []models.Participant{}}
		var err error
		ev, err = recordRoomUpdated(ctx, tx, snapshot)
		return err
	})
	if err != nil {
		derr := drafterr.Internal(fmt.Errorf("failed to create room: %w", err))
		log.Error().Err(err).Str("name", req.Name).Msg("failed to create room")
		return nil, derr
	}

	a.broadcaster.Publish(room.ID, ev)
	log.Info().
		Str("room_id", room.ID.String()).
		Str("name", room.Name).
		Int("max_participants", room.MaxParticipants).
		Str("pick_order_mode", string(room.PickOrderMode)).
		Msg("room created")
	return snapshot, nil
}

// JoinRoom seats a user in a WAITING room. Joining a room the user already sits in returns the
// current snapshot and publishes nothing.
func (a *App) JoinRoom(ctx context.Context, req JoinRoomRequest) (*models.RoomSnapshot, error) {
	if err := normalizeJoinRoomRequest(&req); err != nil {
		return nil, a.fail(req.RoomID, err)
	}

	var (
		snapshot *models.RoomSnapshot
		ev       *events.Event
	)
	err := a.store.InTx(ctx, func(tx repository.Store) error {
		room, err := tx.LockRoom(ctx, req.RoomID)
		if err != nil {
			return roomLookupError(req.RoomID, err)
		}
		if room.Status != models.RoomStatusWaiting {
			return drafterr.New(drafterr.CodeInvalidRoomState, "cannot join room in status %s", room.Status)
		}

		participants, err := tx.GetParticipants(ctx, req.RoomID)
		if err != nil {
			return err
		}
		if slices.ContainsFunc(participants, func(p models.Participant) bool { return p.UserID == req.UserID }) {
			snapshot = &models.RoomSnapshot{Room: *room, Participants: participants}
			return nil
		}
		if len(participants) >= room.MaxParticipants {
			return drafterr.New(drafterr.CodeRoomFull, "room is full, max participants: %d", room.MaxParticipants)
		}

		participant := &models.Participant{
			ID:              uuid.New(),
			RoomID:          req.RoomID,
			UserID:          req.UserID,
			DisplayName:     req.DisplayName,
			RosterSizeLimit: *req.RosterSizeLimit,
		}
		if err := tx.AddParticipant(ctx, participant); err != nil {
			return err
		}

		snapshot = &models.RoomSnapshot{Room: *room, Participants: append(participants, *participant)}
		ev, err = recordRoomUpdated(ctx, tx, snapshot)
		return err
	})
	if err != nil {
		return nil, a.fail(req.RoomID, err)
	}

	if ev == nil {
		log.Debug().
			Str("room_id", req.RoomID.String()).
			Str("user_id", req.UserID).
			Msg("user already in room")
		return snapshot, nil
	}

	a.broadcaster.Publish(req.RoomID, ev)
	log.Info().
		Str("room_id", req.RoomID.String()).
		Str("user_id", req.UserID).
		Int("participants", len(snapshot.Participants)).
		Msg("user joined room")
	return snapshot, nil
}

// StartDraft shuffles the pick order and moves the room to DRAFTING.
func (a *App) StartDraft(ctx context.Context, roomID uuid.UUID) (*models.RoomSnapshot, error) {
	var (
		snapshot *models.RoomSnapshot
		ev       *events.Event
	)
	err := a.store.InTx(ctx, func(tx repository.Store) error {
		room, err := tx.LockRoom(ctx, roomID)
		if err != nil {
			return roomLookupError(roomID, err)
		}
		if room.Status != models.RoomStatusWaiting {
			return drafterr.New(drafterr.CodeInvalidRoomState, "room is not in %s status", models.RoomStatusWaiting)
		}

		participants, err := tx.GetParticipants(ctx, roomID)
		if err != nil {
			return err
		}
		if n := len(participants); n < models.MinParticipants || n > models.MaxParticipants {
			return drafterr.New(drafterr.CodeInsufficientParticipants,
				"need %d to %d participants to start, current: %d", models.MinParticipants, models.MaxParticipants, n)
		}

		room.Status = models.RoomStatusDrafting
		room.PickOrder = BuildPickOrder(room.PickOrderMode, participants, a.shuffle)
		room.CurrentPickIndex = 0
		if err := tx.SaveRoom(ctx, room); err != nil {
			return err
		}

		snapshot = &models.RoomSnapshot{Room: *room, Participants: participants}
		ev, err = recordRoomUpdated(ctx, tx, snapshot)
		return err
	})
	if err != nil {
		return nil, a.fail(roomID, err)
	}

	a.timers.Reset(roomID)
	a.broadcaster.Publish(roomID, ev)
	log.Info().
		Str("room_id", roomID.String()).
		Strs("pick_order", snapshot.Room.PickOrder).
		Msg("draft started")
	return snapshot, nil
}

// GetRoomSnapshot returns the room with all of its participants.
func (a *App) GetRoomSnapshot(ctx context.Context, roomID uuid.UUID) (*models.RoomSnapshot, error) {
	room, err := a.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, drafterr.From(roomLookupError(roomID, err))
	}
	participants, err := a.store.GetParticipants(ctx, roomID)
	if err != nil {
		return nil, drafterr.Internal(err)
	}
	return &models.RoomSnapshot{Room: *room, Participants: participants}, nil
}

// UpdateSelectedTeams replaces the participant's preferred clubs. Rosters are frozen once the
// room is DONE.
func (a *App) UpdateSelectedTeams(ctx context.Context, req UpdateSelectedTeamsRequest) (*models.RoomSnapshot, error) {
	var (
		snapshot *models.RoomSnapshot
		ev       *events.Event
	)
	err := a.store.InTx(ctx, func(tx repository.Store) error {
		room, err := tx.LockRoom(ctx, req.RoomID)
		if err != nil {
			return roomLookupError(req.RoomID, err)
		}
		if room.Status == models.RoomStatusDone {
			return drafterr.New(drafterr.CodeInvalidRoomState, "room %s is finished", req.RoomID)
		}

		teams := req.SelectedTeams
		if teams == nil {
			teams = []string{}
		}
		if _, err := tx.UpdateSelectedTeams(ctx, req.RoomID, req.UserID, teams); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return drafterr.New(drafterr.CodeParticipantNotFound, "user %s is not in room %s", req.UserID, req.RoomID)
			}
			return err
		}

		participants, err := tx.GetParticipants(ctx, req.RoomID)
		if err != nil {
			return err
		}
		snapshot = &models.RoomSnapshot{Room: *room, Participants: participants}
		ev, err = recordRoomUpdated(ctx, tx, snapshot)
		return err
	})
	if err != nil {
		return nil, a.fail(req.RoomID, err)
	}

	a.broadcaster.Publish(req.RoomID, ev)
	log.Info().
		Str("room_id", req.RoomID.String()).
		Str("user_id", req.UserID).
		Strs("teams", req.SelectedTeams).
		Msg("selected teams updated")
	return snapshot, nil
}

// fail reports err to the room's observers and returns it as a typed error.
func (a *App) fail(roomID uuid.UUID, err error) error {
	derr := drafterr.From(err)
	if derr.Code == drafterr.CodeInternal {
		log.Error().Err(err).Str("room_id", roomID.String()).Msg("room operation failed")
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

func recordRoomUpdated(ctx context.Context, tx repository.Store, snapshot *models.RoomSnapshot) (*events.Event, error) {
	ev, err := events.NewRoomUpdated(snapshot)
	if err != nil {
		return nil, err
	}
	rec, err := ev.OutboxRecord()
	if err != nil {
		return nil, err
	}
	if err := tx.InsertOutboxEvent(ctx, rec); err != nil {
		return nil, err
	}
	return ev, nil
}

func roomLookupError(roomID uuid.UUID, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return drafterr.New(drafterr.CodeRoomNotFound, "room not found: %s", roomID)
	}
	return err
}

func normalizeCreateRoomRequest(req *CreateRoomRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return drafterr.New(drafterr.CodeInvalidConfig, "room name is required")
	}
	if req.MaxParticipants == nil {
		n := models.MaxParticipants
		req.MaxParticipants = &n
	}
	if n := *req.MaxParticipants; n < models.MinParticipants || n > models.MaxParticipants {
		return drafterr.New(drafterr.CodeInvalidConfig, "max participants must be between %d and %d",
			models.MinParticipants, models.MaxParticipants)
	}
	if req.Formation != nil && !models.IsKnownFormation(*req.Formation) {
		return drafterr.New(drafterr.CodeInvalidConfig, "unknown formation %q", *req.Formation)
	}
	switch req.PickOrderMode {
	case "":
		req.PickOrderMode = models.PickOrderSingle
	case models.PickOrderSingle, models.PickOrderSnake:
	default:
		return drafterr.New(drafterr.CodeInvalidConfig, "unknown pick order mode %q", req.PickOrderMode)
	}
	return nil
}

func normalizeJoinRoomRequest(req *JoinRoomRequest) error {
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		return drafterr.New(drafterr.CodeInvalidConfig, "user id is required")
	}
	if req.DisplayName == "" {
		req.DisplayName = req.UserID
	}
	if req.RosterSizeLimit == nil {
		n := models.DefaultRosterSizeLimit
		req.RosterSizeLimit = &n
	}
	if *req.RosterSizeLimit < 1 {
		return drafterr.New(drafterr.CodeInvalidConfig, "roster size limit must be at least 1")
	}
	return nil
}
