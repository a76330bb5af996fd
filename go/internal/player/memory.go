package player

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/mcdev12/roulettedraft/go/internal/models"
	"gopkg.in/yaml.v3"
)

// Seed is the layout of a catalog seed file.
type Seed struct {
	Players []models.Player `yaml:"players"`
}

// LoadSeedFile reads a YAML seed and rejects duplicate or blank ids.
func LoadSeedFile(path string) ([]models.Player, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) ([]models.Player, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}

	seen := make(map[string]struct{}, len(seed.Players))
	for _, p := range seed.Players {
		if strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("player %q has no id", p.Name)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("duplicate player id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return seed.Players, nil
}

// MemoryRepository serves a fixed player pool. It is read-only after construction.
type MemoryRepository struct {
	players []models.Player
	byID    map[string]int
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository(players []models.Player) *MemoryRepository {
	sorted := slices.Clone(players)
	slices.SortFunc(sorted, func(a, b models.Player) int { return cmp.Compare(a.ID, b.ID) })

	byID := make(map[string]int, len(sorted))
	for i, p := range sorted {
		byID[p.ID] = i
	}
	return &MemoryRepository{players: sorted, byID: byID}
}

func (r *MemoryRepository) GetPlayer(_ context.Context, id string) (*models.Player, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	p := r.players[i]
	return &p, nil
}

func (r *MemoryRepository) ListPlayers(_ context.Context, offset, limit int) ([]models.Player, error) {
	if limit <= 0 {
		return slices.Clone(r.players), nil
	}
	if offset >= len(r.players) {
		return []models.Player{}, nil
	}
	end := min(offset+limit, len(r.players))
	return slices.Clone(r.players[offset:end]), nil
}

func (r *MemoryRepository) SearchPlayers(_ context.Context, filter models.PlayerFilter) ([]models.Player, error) {
	out := []models.Player{}
	for _, p := range r.players {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *MemoryRepository) ListPlayersByLeague(_ context.Context, league string) ([]models.Player, error) {
	out := []models.Player{}
	for _, p := range r.players {
		if league == "" || strings.EqualFold(league, p.League) {
			out = append(out, p)
		}
	}
	return out, nil
}
