package room

import (
	"math/rand/v2"
	"slices"

	"github.com/mcdev12/roulettedraft/go/internal/models"
)

// Shuffler permutes user ids in place.
type Shuffler func(userIDs []string)

// RandomShuffle is a uniform Fisher-Yates shuffle.
func RandomShuffle(userIDs []string) {
	rand.Shuffle(len(userIDs), func(i, j int) {
		userIDs[i], userIDs[j] = userIDs[j], userIDs[i]
	})
}

// BuildPickOrder lays out the turn sequence for a starting draft.
//
// SINGLE yields one slot per participant. SNAKE walks the shuffled order once per round,
// reversing direction every other round, and skips participants whose quota is already covered,
// so the order holds exactly the sum of all roster quotas.
func BuildPickOrder(mode models.PickOrderMode, participants []models.Participant, shuffle Shuffler) []string {
	base := make([]string, 0, len(participants))
	quota := make(map[string]int, len(participants))
	rounds := 0
	for _, p := range participants {
		base = append(base, p.UserID)
		quota[p.UserID] = p.RosterSizeLimit
		rounds = max(rounds, p.RosterSizeLimit)
	}
	shuffle(base)

	if mode != models.PickOrderSnake {
		return base
	}

	reversed := slices.Clone(base)
	slices.Reverse(reversed)

	order := make([]string, 0, models.TotalRosterSize(participants))
	for round := 0; round < rounds; round++ {
		seq := base
		if round%2 == 1 {
			seq = reversed
		}
		for _, userID := range seq {
			if quota[userID] > round {
				order = append(order, userID)
			}
		}
	}
	return order
}
