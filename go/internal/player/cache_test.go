package player

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/mcdev12/roulettedraft/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRepository struct {
	Repository
	gets    int
	leagues int
}

func (r *countingRepository) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	r.gets++
	return r.Repository.GetPlayer(ctx, id)
}

func (r *countingRepository) ListPlayersByLeague(ctx context.Context, league string) ([]models.Player, error) {
	r.leagues++
	return r.Repository.ListPlayersByLeague(ctx, league)
}

func setupCache(t *testing.T) (*miniredis.Miniredis, *countingRepository, *CachedRepository) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &countingRepository{Repository: NewMemoryRepository(testPlayers(t))}
	return mr, repo, NewCachedRepository(repo, client, time.Minute)
}

func TestCachedGetPlayer(t *testing.T) {
	mr, repo, cache := setupCache(t)
	ctx := context.Background()

	p, err := cache.GetPlayer(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Erling Haaland", p.Name)
	assert.True(t, mr.Exists("roulettedraft:catalog:player:p1"))

	p, err = cache.GetPlayer(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Erling Haaland", p.Name)
	assert.Equal(t, 1, repo.gets, "second read served from redis")

	mr.FastForward(2 * time.Minute)
	_, err = cache.GetPlayer(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.gets, "expired entry reloads")
}

func TestCachedGetPlayerNotFoundIsNotCached(t *testing.T) {
	mr, repo, cache := setupCache(t)

	_, err := cache.GetPlayer(context.Background(), "p99")
	assert.True(t, IsNotFound(err))
	assert.False(t, mr.Exists("roulettedraft:catalog:player:p99"))
	assert.Equal(t, 1, repo.gets)
}

func TestCachedLeagueListing(t *testing.T) {
	mr, repo, cache := setupCache(t)
	app := NewApp(cache)
	ctx := context.Background()

	first, err := app.Teams(ctx, "Premier League")
	require.NoError(t, err)
	second, err := app.Teams(ctx, "premier league")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.leagues, "league key is case-insensitive")
	assert.True(t, mr.Exists("roulettedraft:catalog:league:premier league"))

	require.NoError(t, cache.Invalidate(ctx))
	assert.False(t, mr.Exists("roulettedraft:catalog:league:premier league"))
}

func TestCacheFaultFallsThrough(t *testing.T) {
	mr, repo, cache := setupCache(t)
	mr.Close()

	p, err := cache.GetPlayer(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, "Jude Bellingham", p.Name)
	assert.Equal(t, 1, repo.gets)
}

func TestCorruptEntryIsDiscarded(t *testing.T) {
	mr, repo, cache := setupCache(t)
	require.NoError(t, mr.Set("roulettedraft:catalog:player:p3", "{not json"))

	p, err := cache.GetPlayer(context.Background(), "p3")
	require.NoError(t, err)
	assert.Equal(t, "Rodri", p.Name)
	assert.Equal(t, 1, repo.gets)
}
