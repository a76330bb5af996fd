package player

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/mcdev12/roulettedraft/go/internal/models"
)

// Catalog is what the pick coordinator needs from the player pool.
type Catalog interface {
	PlayerExists(ctx context.Context, id string) (bool, error)
}

// App handles player catalog lookups
type App struct {
	repo Repository
}

var _ Catalog = (*App)(nil)

func NewApp(repo Repository) *App {
	return &App{repo: repo}
}

// PlayerExists reports whether id is in the pool. Only store faults are returned as errors.
func (a *App) PlayerExists(ctx context.Context, id string) (bool, error) {
	_, err := a.repo.GetPlayer(ctx, id)
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to look up player %s: %w", id, err)
}

func (a *App) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	return a.repo.GetPlayer(ctx, id)
}

// ListPlayers returns one zero-based page, or every player when size is not positive.
func (a *App) ListPlayers(ctx context.Context, page, size int) ([]models.Player, error) {
	if size <= 0 {
		return a.repo.ListPlayers(ctx, 0, 0)
	}
	return a.repo.ListPlayers(ctx, max(page, 0)*size, size)
}

func (a *App) SearchPlayers(ctx context.Context, filter models.PlayerFilter) ([]models.Player, error) {
	return a.repo.SearchPlayers(ctx, filter)
}

// Teams derives the distinct clubs of a league (every league when empty), sorted by name.
// A team's league is taken from the first of its players that has one.
func (a *App) Teams(ctx context.Context, league string) ([]models.Team, error) {
	players, err := a.repo.ListPlayersByLeague(ctx, strings.TrimSpace(league))
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	index := make(map[string]int)
	teams := []models.Team{}
	for _, p := range players {
		if p.Team == "" {
			continue
		}
		i, ok := index[p.Team]
		if !ok {
			index[p.Team] = len(teams)
			teams = append(teams, models.Team{Name: p.Team, League: p.League})
			continue
		}
		if teams[i].League == "" {
			teams[i].League = p.League
		}
	}

	slices.SortFunc(teams, func(x, y models.Team) int {
		return strings.Compare(strings.ToLower(x.Name), strings.ToLower(y.Name))
	})
	return teams, nil
}
