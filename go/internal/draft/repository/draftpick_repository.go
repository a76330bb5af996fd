package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mcdev12/roulettedraft/go/internal/models"
	"github.com/mcdev12/roulettedraft/go/internal/sqlutil"
)

const pickRoomPlayerConstraint = "draft_picks_room_player_key"

func (r *Repository) PickExists(ctx context.Context, roomID uuid.UUID, playerID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM draft_picks WHERE room_id = $1 AND player_id = $2)`,
		roomID, playerID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pick: %w", err)
	}
	return exists, nil
}

func (r *Repository) CountPicks(ctx context.Context, roomID uuid.UUID) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM draft_picks WHERE room_id = $1`, roomID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count picks: %w", err)
	}
	return count, nil
}

func (r *Repository) InsertPick(ctx context.Context, pick *models.DraftPick) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO draft_picks (id, room_id, user_id, player_id, pick_no)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		pick.ID, pick.RoomID, pick.UserID, pick.PlayerID, pick.PickNo,
	).Scan(&pick.CreatedAt)
	if err != nil {
		if constraint, ok := sqlutil.UniqueViolation(err); ok && constraint == pickRoomPlayerConstraint {
			return ErrDuplicatePick
		}
		return fmt.Errorf("failed to insert pick: %w", err)
	}
	return nil
}

func (r *Repository) ListPicks(ctx context.Context, roomID uuid.UUID) ([]models.DraftPick, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, room_id, user_id, player_id, pick_no, created_at
		FROM draft_picks WHERE room_id = $1 ORDER BY pick_no`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}
	picks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.DraftPick, error) {
		var p models.DraftPick
		err := row.Scan(&p.ID, &p.RoomID, &p.UserID, &p.PlayerID, &p.PickNo, &p.CreatedAt)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan picks: %w", err)
	}
	return picks, nil
}

func (r *Repository) InsertOutboxEvent(ctx context.Context, event *models.OutboxEvent) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO draft_outbox (id, room_id, event_type, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		event.ID, event.RoomID, event.EventType, event.Payload,
	).Scan(&event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

func (r *Repository) FetchUnsentOutbox(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, room_id, event_type, payload, created_at
		FROM draft_outbox
		WHERE sent_at IS NULL
		ORDER BY created_at, id
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.OutboxEvent, error) {
		var e models.OutboxEvent
		err := row.Scan(&e.ID, &e.RoomID, &e.EventType, &e.Payload, &e.CreatedAt)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan outbox events: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE draft_outbox SET sent_at = now() WHERE id = $1 AND sent_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to mark outbox event sent: %w", ErrNotFound)
	}
	return nil
}
