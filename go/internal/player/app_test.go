package player

import (
	"context"
	"errors"
	"testing"

	"github.com/mcdev12/roulettedraft/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = `
players:
  - id: p3
    name: Rodri
    team: Manchester City
    position: MF
    nationality: Spain
    league: Premier League
  - id: p1
    name: Erling Haaland
    team: Manchester City
    position: FW
    nationality: Norway
    league: Premier League
    market_value: 180000000
  - id: p2
    name: Jude Bellingham
    team: Real Madrid
    position: MF
    nationality: England
    league: La Liga
  - id: p4
    name: Bukayo Saka
    team: arsenal
    position: FW
    nationality: England
    league: Premier League
`

func testPlayers(t *testing.T) []models.Player {
	t.Helper()
	players, err := ParseSeed([]byte(testSeed))
	require.NoError(t, err)
	return players
}

func TestParseSeed(t *testing.T) {
	players := testPlayers(t)
	require.Len(t, players, 4)
	assert.Equal(t, int64(180000000), players[1].MarketValue)

	_, err := ParseSeed([]byte("players:\n  - id: p1\n    name: a\n  - id: p1\n    name: b\n"))
	assert.ErrorContains(t, err, `duplicate player id "p1"`)

	_, err = ParseSeed([]byte("players:\n  - name: a\n"))
	assert.ErrorContains(t, err, "has no id")

	_, err = ParseSeed([]byte("players: ["))
	assert.Error(t, err)
}

func TestPlayerExists(t *testing.T) {
	app := NewApp(NewMemoryRepository(testPlayers(t)))
	ctx := context.Background()

	ok, err := app.PlayerExists(ctx, "p2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = app.PlayerExists(ctx, "p99")
	require.NoError(t, err)
	assert.False(t, ok)
}

type brokenRepository struct{ Repository }

func (brokenRepository) GetPlayer(context.Context, string) (*models.Player, error) {
	return nil, errors.New("connection refused")
}

func TestPlayerExistsStoreFault(t *testing.T) {
	app := NewApp(brokenRepository{})
	ok, err := app.PlayerExists(context.Background(), "p1")
	assert.False(t, ok)
	assert.ErrorContains(t, err, "connection refused")
}

func TestListPlayersPaging(t *testing.T) {
	app := NewApp(NewMemoryRepository(testPlayers(t)))
	ctx := context.Background()

	all, err := app.ListPlayers(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "p1", all[0].ID, "ordered by id")

	page, err := app.ListPlayers(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "p4", page[0].ID)

	page, err = app.ListPlayers(ctx, 5, 3)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestSearchPlayersIgnoresCase(t *testing.T) {
	app := NewApp(NewMemoryRepository(testPlayers(t)))

	players, err := app.SearchPlayers(context.Background(), models.PlayerFilter{Team: "manchester city", Position: "fw"})
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Erling Haaland", players[0].Name)

	players, err = app.SearchPlayers(context.Background(), models.PlayerFilter{Nationality: "ENGLAND"})
	require.NoError(t, err)
	assert.Len(t, players, 2)
}

func TestTeams(t *testing.T) {
	app := NewApp(NewMemoryRepository(testPlayers(t)))

	teams, err := app.Teams(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []models.Team{
		{Name: "arsenal", League: "Premier League"},
		{Name: "Manchester City", League: "Premier League"},
		{Name: "Real Madrid", League: "La Liga"},
	}, teams)

	teams, err = app.Teams(context.Background(), "  la liga ")
	require.NoError(t, err)
	assert.Equal(t, []models.Team{{Name: "Real Madrid", League: "La Liga"}}, teams)
}

func TestBundledSeedLoads(t *testing.T) {
	players, err := LoadSeedFile("../assets/players.yaml")
	require.NoError(t, err)
	assert.Len(t, players, 40)

	teams, err := NewApp(NewMemoryRepository(players)).Teams(context.Background(), "Premier League")
	require.NoError(t, err)
	assert.Len(t, teams, 3)
}
