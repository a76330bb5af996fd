package models

import "strings"

// Player represents a footballer in the shared pool.
type Player struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Team        string `json:"team" yaml:"team"`
	Position    string `json:"position" yaml:"position"`
	Nationality string `json:"nationality,omitempty" yaml:"nationality"`
	League      string `json:"league,omitempty" yaml:"league"`
	MarketValue int64  `json:"market_value,omitempty" yaml:"market_value"`
}

// PlayerFilter narrows a player search. Empty fields match everything; comparison ignores case.
type PlayerFilter struct {
	Team        string
	Position    string
	Nationality string
}

// Matches reports whether p satisfies every non-empty field of f.
func (f PlayerFilter) Matches(p Player) bool {
	if f.Team != "" && !strings.EqualFold(f.Team, p.Team) {
		return false
	}
	if f.Position != "" && !strings.EqualFold(f.Position, p.Position) {
		return false
	}
	if f.Nationality != "" && !strings.EqualFold(f.Nationality, p.Nationality) {
		return false
	}
	return true
}
