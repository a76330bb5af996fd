// Package randomfill completes partially built squads with random players from a set of clubs.
// It is stateless: nothing it computes is stored or broadcast.
package randomfill

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"github.com/mcdev12/roulettedraft/go/internal/draft/drafterr"
	"github.com/mcdev12/roulettedraft/go/internal/draft/repository"
	"github.com/mcdev12/roulettedraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

// PlayerSearcher is the catalog query random fill draws its pool from.
type PlayerSearcher interface {
	SearchPlayers(ctx context.Context, filter models.PlayerFilter) ([]models.Player, error)
}

// RoomReader resolves the room a request is filling squads for.
type RoomReader interface {
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
}

// Shuffler permutes n elements through swap.
type Shuffler func(n int, swap func(i, j int))

type App struct {
	players PlayerSearcher
	rooms   RoomReader
	shuffle Shuffler
}

func NewApp(players PlayerSearcher, rooms RoomReader) *App {
	return &App{players: players, rooms: rooms, shuffle: rand.Shuffle}
}

// Fill assigns an unused player from the selected clubs to every empty slot of every squad.
// Players already placed in any squad, on the pitch or the bench, are never reused. A slot is
// filled with a player whose position suits it when one is left, otherwise with any unused
// player, otherwise it stays empty.
func (a *App) Fill(ctx context.Context, req Request) (*Response, error) {
	teams := normalizeTeams(req.SelectedTeams)
	if len(teams) == 0 {
		return nil, drafterr.New(drafterr.CodeInvalidConfig, "selected teams cannot be empty")
	}
	if len(req.Squads) == 0 {
		return nil, drafterr.New(drafterr.CodeInvalidConfig, "squads cannot be empty")
	}

	roomFormation, err := a.roomFormation(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	pool, err := a.pool(ctx, teams)
	if err != nil {
		return nil, err
	}

	used := make(map[string]struct{})
	for _, squad := range req.Squads {
		for _, id := range squad.Players {
			used[id] = struct{}{}
		}
		for _, id := range squad.Bench {
			used[id] = struct{}{}
		}
	}

	resp := &Response{Squads: make([]FilledSquad, 0, len(req.Squads))}
	for _, squad := range req.Squads {
		resp.Squads = append(resp.Squads, a.fillSquad(squad, roomFormation, pool, used))
	}

	log.Info().
		Int("teams", len(teams)).
		Int("pool", len(pool)).
		Int("squads", len(resp.Squads)).
		Msg("random fill completed")
	return resp, nil
}

func (a *App) roomFormation(ctx context.Context, roomID *uuid.UUID) (string, error) {
	if roomID == nil || a.rooms == nil {
		return "", nil
	}
	room, err := a.rooms.GetRoom(ctx, *roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", drafterr.New(drafterr.CodeRoomNotFound, "room not found: %s", *roomID)
		}
		return "", drafterr.Internal(fmt.Errorf("failed to get room: %w", err))
	}
	if room.Formation == nil {
		return "", nil
	}
	return *room.Formation, nil
}

// pool collects the players of every selected club once, in random order.
func (a *App) pool(ctx context.Context, teams []string) ([]models.Player, error) {
	seen := make(map[string]struct{})
	var pool []models.Player
	for _, team := range teams {
		players, err := a.players.SearchPlayers(ctx, models.PlayerFilter{Team: team})
		if err != nil {
			return nil, drafterr.Internal(fmt.Errorf("failed to search players of %s: %w", team, err))
		}
		log.Debug().Str("team", team).Int("players", len(players)).Msg("random fill pool")
		for _, p := range players {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			pool = append(pool, p)
		}
	}
	a.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool, nil
}

func (a *App) fillSquad(squad SquadConfig, roomFormation string, pool []models.Player, used map[string]struct{}) FilledSquad {
	formation := squad.Formation
	if formation == "" {
		formation = roomFormation
	}
	if !models.IsKnownFormation(formation) {
		formation = models.DefaultFormation
	}

	filled := make(map[string]string, len(squad.Players))
	maps.Copy(filled, squad.Players)

	var needed []string
	for _, slot := range models.FormationSlots(formation) {
		if _, ok := filled[slot]; !ok {
			needed = append(needed, slot)
		}
	}
	a.shuffle(len(needed), func(i, j int) { needed[i], needed[j] = needed[j], needed[i] })

	for _, slot := range needed {
		p, ok := a.choose(slot, pool, used)
		if !ok {
			log.Warn().Str("squad", squad.ID).Str("slot", slot).Msg("no player left for slot")
			continue
		}
		filled[slot] = p.ID
		used[p.ID] = struct{}{}
	}

	bench := append([]string{}, squad.Bench...)
	return FilledSquad{
		ID:        squad.ID,
		Name:      squad.Name,
		Formation: formation,
		Players:   filled,
		Bench:     bench,
	}
}

// choose picks a random unused player suited to slot, or any unused player when none is.
func (a *App) choose(slot string, pool []models.Player, used map[string]struct{}) (models.Player, bool) {
	var suited, unused []models.Player
	for _, p := range pool {
		if _, taken := used[p.ID]; taken {
			continue
		}
		unused = append(unused, p)
		if models.SlotAccepts(slot, p.Position) {
			suited = append(suited, p)
		}
	}
	candidates := suited
	if len(candidates) == 0 {
		candidates = unused
	}
	if len(candidates) == 0 {
		return models.Player{}, false
	}
	a.shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	return candidates[0], true
}

func normalizeTeams(teams []string) []string {
	out := make([]string, 0, len(teams))
	for _, t := range teams {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
