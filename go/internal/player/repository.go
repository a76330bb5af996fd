package player

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/roulettedraft/go/internal/models"
)

// Repository is the read side of the player pool.
type Repository interface {
	GetPlayer(ctx context.Context, id string) (*models.Player, error)
	// ListPlayers returns players ordered by id. A non-positive limit returns all of them.
	ListPlayers(ctx context.Context, offset, limit int) ([]models.Player, error)
	SearchPlayers(ctx context.Context, filter models.PlayerFilter) ([]models.Player, error)
	// ListPlayersByLeague returns every player when league is empty.
	ListPlayersByLeague(ctx context.Context, league string) ([]models.Player, error)
}

const playerColumns = `id, name, team, position, nationality, league, market_value`

// PostgresRepository handles all player-related database operations
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func collectPlayers(rows pgx.Rows) ([]models.Player, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Player, error) {
		var p models.Player
		err := row.Scan(&p.ID, &p.Name, &p.Team, &p.Position, &p.Nationality, &p.League, &p.MarketValue)
		return p, err
	})
}

func (r *PostgresRepository) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	players, err := collectPlayers(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	if len(players) == 0 {
		return nil, ErrPlayerNotFound
	}
	return &players[0], nil
}

func (r *PostgresRepository) ListPlayers(ctx context.Context, offset, limit int) ([]models.Player, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.pool.Query(ctx, `SELECT `+playerColumns+` FROM players ORDER BY id OFFSET $1 LIMIT $2`, offset, limit)
	} else {
		rows, err = r.pool.Query(ctx, `SELECT `+playerColumns+` FROM players ORDER BY id`)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	players, err := collectPlayers(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan players: %w", err)
	}
	return players, nil
}

func (r *PostgresRepository) SearchPlayers(ctx context.Context, filter models.PlayerFilter) ([]models.Player, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+playerColumns+`
		FROM players
		WHERE ($1 = '' OR lower(team) = lower($1))
		  AND ($2 = '' OR lower(position) = lower($2))
		  AND ($3 = '' OR lower(nationality) = lower($3))
		ORDER BY id`,
		filter.Team, filter.Position, filter.Nationality,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search players: %w", err)
	}
	players, err := collectPlayers(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan players: %w", err)
	}
	return players, nil
}

func (r *PostgresRepository) ListPlayersByLeague(ctx context.Context, league string) ([]models.Player, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+playerColumns+`
		FROM players
		WHERE $1 = '' OR lower(league) = lower($1)
		ORDER BY id`,
		league,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list players by league: %w", err)
	}
	players, err := collectPlayers(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan players: %w", err)
	}
	return players, nil
}

// UpsertPlayers writes players in one batch, replacing rows with the same id.
func (r *PostgresRepository) UpsertPlayers(ctx context.Context, players []models.Player) error {
	batch := &pgx.Batch{}
	for _, p := range players {
		batch.Queue(`
			INSERT INTO players (`+playerColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				team = EXCLUDED.team,
				position = EXCLUDED.position,
				nationality = EXCLUDED.nationality,
				league = EXCLUDED.league,
				market_value = EXCLUDED.market_value`,
			p.ID, p.Name, p.Team, p.Position, p.Nationality, p.League, p.MarketValue,
		)
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("failed to upsert players: %w", err)
	}
	return nil
}

// IsNotFound reports whether err means the player does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlayerNotFound)
}
