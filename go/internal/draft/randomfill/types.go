package randomfill

import "github.com/google/uuid"

// Request asks for the empty slots of Squads to be filled from the players of SelectedTeams.
// When RoomID is set, squads without a formation use the room's.
type Request struct {
	SelectedTeams []string      `json:"selected_teams"`
	Squads        []SquadConfig `json:"squads"`
	RoomID        *uuid.UUID    `json:"room_id,omitempty"`
}

// SquadConfig is a squad as the client has built it so far.
type SquadConfig struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Formation string            `json:"formation,omitempty"`
	Players   map[string]string `json:"players,omitempty"` // slot id -> player id
	Bench     []string          `json:"bench,omitempty"`
}

type Response struct {
	Squads []FilledSquad `json:"squads"`
}

// FilledSquad carries the resolved formation and every slot that could be filled.
type FilledSquad struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Formation string            `json:"formation"`
	Players   map[string]string `json:"players"`
	Bench     []string          `json:"bench"`
}
