package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/mcdev12/roulettedraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

const defaultKeyPrefix = "roulettedraft:catalog:"

// CachedRepository fronts a Repository with redis. Player lookups and per-league listings are
// cached for ttl; a redis fault falls through to the wrapped repository.
type CachedRepository struct {
	next      Repository
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

var _ Repository = (*CachedRepository)(nil)

func NewCachedRepository(next Repository, client *redis.Client, ttl time.Duration) *CachedRepository {
	return &CachedRepository{
		next:      next,
		client:    client,
		ttl:       ttl,
		keyPrefix: defaultKeyPrefix,
	}
}

func (c *CachedRepository) playerKey(id string) string {
	return c.keyPrefix + "player:" + id
}

func (c *CachedRepository) leagueKey(league string) string {
	return c.keyPrefix + "league:" + strings.ToLower(league)
}

func (c *CachedRepository) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	key := c.playerKey(id)
	var cached models.Player
	if c.get(ctx, key, &cached) {
		return &cached, nil
	}

	p, err := c.next.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, p)
	return p, nil
}

func (c *CachedRepository) ListPlayers(ctx context.Context, offset, limit int) ([]models.Player, error) {
	return c.next.ListPlayers(ctx, offset, limit)
}

func (c *CachedRepository) SearchPlayers(ctx context.Context, filter models.PlayerFilter) ([]models.Player, error) {
	return c.next.SearchPlayers(ctx, filter)
}

func (c *CachedRepository) ListPlayersByLeague(ctx context.Context, league string) ([]models.Player, error) {
	key := c.leagueKey(league)
	var cached []models.Player
	if c.get(ctx, key, &cached) {
		return cached, nil
	}

	players, err := c.next.ListPlayersByLeague(ctx, league)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, players)
	return players, nil
}

// Invalidate drops every cached catalog entry.
func (c *CachedRepository) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan catalog keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete catalog keys: %w", err)
	}
	return nil
}

func (c *CachedRepository) get(ctx context.Context, key string, dst any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding corrupt catalog cache entry")
		return false
	}
	return true
}

func (c *CachedRepository) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
}
