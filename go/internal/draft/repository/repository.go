package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/roulettedraft/go/internal/models"
	"github.com/mcdev12/roulettedraft/go/internal/sqlutil"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrConditionNotMet      = errors.New("conditional update matched no rows")
	ErrDuplicatePick        = errors.New("player already picked in room")
	ErrDuplicateParticipant = errors.New("user already in room")
)

// Store is the durable store behind rooms, participants, picks and the event outbox.
type Store interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	// LockRoom reads a room and holds its row lock until the surrounding transaction ends.
	LockRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	SaveRoom(ctx context.Context, room *models.Room) error
	// ConditionalAdvancePick increments current_pick_index and version only while the room is
	// DRAFTING at exactly expectedIndex and expectedVersion. ErrConditionNotMet otherwise.
	ConditionalAdvancePick(ctx context.Context, roomID uuid.UUID, expectedIndex, expectedVersion int) (*models.Room, error)
	// CompleteRoom moves a DRAFTING room to DONE. ErrConditionNotMet if it is not DRAFTING.
	CompleteRoom(ctx context.Context, roomID uuid.UUID) (*models.Room, error)
	FindRoomsWithStatus(ctx context.Context, ids []uuid.UUID, status models.RoomStatus) ([]models.Room, error)

	GetParticipants(ctx context.Context, roomID uuid.UUID) ([]models.Participant, error)
	GetParticipant(ctx context.Context, roomID uuid.UUID, userID string) (*models.Participant, error)
	AddParticipant(ctx context.Context, p *models.Participant) error
	AppendSelectedPlayer(ctx context.Context, roomID uuid.UUID, userID string, playerID string) (*models.Participant, error)
	UpdateSelectedTeams(ctx context.Context, roomID uuid.UUID, userID string, teams []string) (*models.Participant, error)

	PickExists(ctx context.Context, roomID uuid.UUID, playerID string) (bool, error)
	CountPicks(ctx context.Context, roomID uuid.UUID) (int, error)
	// InsertPick fails with ErrDuplicatePick when the player is already taken in the room.
	InsertPick(ctx context.Context, pick *models.DraftPick) error
	ListPicks(ctx context.Context, roomID uuid.UUID) ([]models.DraftPick, error)

	InsertOutboxEvent(ctx context.Context, event *models.OutboxEvent) error
	FetchUnsentOutbox(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	MarkOutboxSent(ctx context.Context, id uuid.UUID) error

	// InTx runs fn against a transactional view of the store. Any error rolls everything back.
	InTx(ctx context.Context, fn func(tx Store) error) error
}

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository is the postgres Store.
type Repository struct {
	db dbtx
}

var _ Store = (*Repository)(nil)

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

func (r *Repository) InTx(ctx context.Context, fn func(tx Store) error) error {
	return sqlutil.Run(ctx, r.db, func(tx pgx.Tx) *Repository {
		return &Repository{db: tx}
	}, func(q *Repository) error {
		return fn(q)
	})
}

const roomColumns = `id, name, formation, status, pick_order_mode, max_participants, pick_order,
	current_pick_index, version, created_at, updated_at`

func scanRoom(row pgx.Row) (*models.Room, error) {
	var room models.Room
	err := row.Scan(
		&room.ID,
		&room.Name,
		&room.Formation,
		&room.Status,
		&room.PickOrderMode,
		&room.MaxParticipants,
		&room.PickOrder,
		&room.CurrentPickIndex,
		&room.Version,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if room.PickOrder == nil {
		room.PickOrder = []string{}
	}
	return &room, nil
}

func (r *Repository) CreateRoom(ctx context.Context, room *models.Room) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO rooms (id, name, formation, status, pick_order_mode, max_participants, pick_order,
			current_pick_index, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		room.ID, room.Name, room.Formation, room.Status, room.PickOrderMode, room.MaxParticipants,
		orEmpty(room.PickOrder), room.CurrentPickIndex, room.Version,
	)
	if err := row.Scan(&room.CreatedAt, &room.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (r *Repository) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	room, err := scanRoom(r.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

func (r *Repository) LockRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	room, err := scanRoom(r.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to lock room: %w", err)
	}
	return room, nil
}

func (r *Repository) SaveRoom(ctx context.Context, room *models.Room) error {
	row := r.db.QueryRow(ctx, `
		UPDATE rooms
		SET name = $2, formation = $3, status = $4, pick_order_mode = $5, max_participants = $6,
			pick_order = $7, current_pick_index = $8, version = $9, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		room.ID, room.Name, room.Formation, room.Status, room.PickOrderMode, room.MaxParticipants,
		orEmpty(room.PickOrder), room.CurrentPickIndex, room.Version,
	)
	if err := row.Scan(&room.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
		}
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

func (r *Repository) ConditionalAdvancePick(ctx context.Context, roomID uuid.UUID, expectedIndex, expectedVersion int) (*models.Room, error) {
	room, err := scanRoom(r.db.QueryRow(ctx, `
		UPDATE rooms
		SET current_pick_index = current_pick_index + 1, version = version + 1, updated_at = now()
		WHERE id = $1 AND status = $2 AND current_pick_index = $3 AND version = $4
		RETURNING `+roomColumns,
		roomID, models.RoomStatusDrafting, expectedIndex, expectedVersion,
	))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrConditionNotMet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to advance pick: %w", err)
	}
	return room, nil
}

func (r *Repository) CompleteRoom(ctx context.Context, roomID uuid.UUID) (*models.Room, error) {
	room, err := scanRoom(r.db.QueryRow(ctx, `
		UPDATE rooms SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING `+roomColumns,
		roomID, models.RoomStatusDone, models.RoomStatusDrafting,
	))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrConditionNotMet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to complete room: %w", err)
	}
	return room, nil
}

func (r *Repository) FindRoomsWithStatus(ctx context.Context, ids []uuid.UUID, status models.RoomStatus) ([]models.Room, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = ANY($1::uuid[]) AND status = $2`,
		sqlutil.UUIDStrings(ids), status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find rooms: %w", err)
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, *room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to find rooms: %w", err)
	}
	return rooms, nil
}

const participantColumns = `id, room_id, user_id, display_name, roster_size_limit, selected_player_ids,
	selected_teams, created_at`

func scanParticipant(row pgx.Row) (*models.Participant, error) {
	var p models.Participant
	err := row.Scan(
		&p.ID,
		&p.RoomID,
		&p.UserID,
		&p.DisplayName,
		&p.RosterSizeLimit,
		&p.SelectedPlayerIDs,
		&p.SelectedTeams,
		&p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.SelectedPlayerIDs == nil {
		p.SelectedPlayerIDs = []string{}
	}
	if p.SelectedTeams == nil {
		p.SelectedTeams = []string{}
	}
	return &p, nil
}

func (r *Repository) GetParticipants(ctx context.Context, roomID uuid.UUID) ([]models.Participant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+participantColumns+` FROM room_participants WHERE room_id = $1 ORDER BY created_at, id`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	return participants, nil
}

func (r *Repository) GetParticipant(ctx context.Context, roomID uuid.UUID, userID string) (*models.Participant, error) {
	p, err := scanParticipant(r.db.QueryRow(ctx,
		`SELECT `+participantColumns+` FROM room_participants WHERE room_id = $1 AND user_id = $2`,
		roomID, userID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

func (r *Repository) AddParticipant(ctx context.Context, p *models.Participant) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO room_participants (id, room_id, user_id, display_name, roster_size_limit,
			selected_player_ids, selected_teams)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		p.ID, p.RoomID, p.UserID, p.DisplayName, p.RosterSizeLimit, orEmpty(p.SelectedPlayerIDs), orEmpty(p.SelectedTeams),
	)
	if err := row.Scan(&p.CreatedAt); err != nil {
		if _, ok := sqlutil.UniqueViolation(err); ok {
			return ErrDuplicateParticipant
		}
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

func (r *Repository) AppendSelectedPlayer(ctx context.Context, roomID uuid.UUID, userID string, playerID string) (*models.Participant, error) {
	p, err := scanParticipant(r.db.QueryRow(ctx, `
		UPDATE room_participants
		SET selected_player_ids = array_append(selected_player_ids, $3)
		WHERE room_id = $1 AND user_id = $2
		RETURNING `+participantColumns,
		roomID, userID, playerID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to append selected player: %w", err)
	}
	return p, nil
}

func (r *Repository) UpdateSelectedTeams(ctx context.Context, roomID uuid.UUID, userID string, teams []string) (*models.Participant, error) {
	p, err := scanParticipant(r.db.QueryRow(ctx, `
		UPDATE room_participants SET selected_teams = $3
		WHERE room_id = $1 AND user_id = $2
		RETURNING `+participantColumns,
		roomID, userID, orEmpty(teams),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update selected teams: %w", err)
	}
	return p, nil
}

// orEmpty keeps NOT NULL array columns from receiving a nil slice, which encodes as NULL.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
