package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Participant is a user seated in a draft room.
type Participant struct {
	ID                uuid.UUID `json:"id"`
	RoomID            uuid.UUID `json:"room_id"`
	UserID            string    `json:"user_id"`
	DisplayName       string    `json:"display_name"`
	RosterSizeLimit   int       `json:"roster_size_limit"`
	SelectedPlayerIDs []string  `json:"selected_player_ids"`
	SelectedTeams     []string  `json:"selected_teams"`
	CreatedAt         time.Time `json:"created_at"`
}

// RosterFull reports whether the participant has used up their quota.
func (p *Participant) RosterFull() bool {
	return len(p.SelectedPlayerIDs) >= p.RosterSizeLimit
}

// Clone returns a deep copy of the participant.
func (p *Participant) Clone() *Participant {
	c := *p
	c.SelectedPlayerIDs = slices.Clone(p.SelectedPlayerIDs)
	c.SelectedTeams = slices.Clone(p.SelectedTeams)
	return &c
}

// TotalRosterSize sums the roster quotas of all participants.
func TotalRosterSize(participants []Participant) int {
	total := 0
	for _, p := range participants {
		total += p.RosterSizeLimit
	}
	return total
}
