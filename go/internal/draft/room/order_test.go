package room

import (
	"testing"

	"github.com/mcdev12/roulettedraft/go/internal/models"
	"github.com/stretchr/testify/assert"
)

func noShuffle([]string) {}

func participants(quotas map[string]int, order ...string) []models.Participant {
	out := make([]models.Participant, 0, len(order))
	for _, userID := range order {
		out = append(out, models.Participant{UserID: userID, RosterSizeLimit: quotas[userID]})
	}
	return out
}

func TestBuildPickOrderSingle(t *testing.T) {
	ps := participants(map[string]int{"a": 11, "b": 11, "c": 11}, "a", "b", "c")

	assert.Equal(t, []string{"a", "b", "c"}, BuildPickOrder(models.PickOrderSingle, ps, noShuffle))
}

func TestBuildPickOrderSnake(t *testing.T) {
	ps := participants(map[string]int{"a": 3, "b": 3, "c": 3}, "a", "b", "c")

	order := BuildPickOrder(models.PickOrderSnake, ps, noShuffle)

	assert.Equal(t, []string{"a", "b", "c", "c", "b", "a", "a", "b", "c"}, order)
}

func TestBuildPickOrderSnakeUnevenQuotas(t *testing.T) {
	ps := participants(map[string]int{"a": 1, "b": 3, "c": 2}, "a", "b", "c")

	order := BuildPickOrder(models.PickOrderSnake, ps, noShuffle)

	assert.Equal(t, []string{"a", "b", "c", "c", "b", "b"}, order)
	assert.Len(t, order, models.TotalRosterSize(ps))
}

func TestRandomShuffleIsPermutation(t *testing.T) {
	ps := participants(map[string]int{"a": 1, "b": 1, "c": 1, "d": 1, "e": 1}, "a", "b", "c", "d", "e")

	for i := 0; i < 20; i++ {
		order := BuildPickOrder(models.PickOrderSingle, ps, RandomShuffle)
		assert.ElementsMatch(t, []string{"a", "b", "c", "d", "e"}, order)
	}
}
