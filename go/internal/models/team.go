package models

// Team is a club derived from the player pool.
type Team struct {
	Name   string `json:"name"`
	League string `json:"league,omitempty"`
}
