package models

import "strings"

// DefaultFormation is used when a squad or room names no formation or an unknown one.
const DefaultFormation = "4-3-3"

// formationSlots lists the eleven pitch slots of each supported formation, goalkeeper first.
var formationSlots = map[string][]string{
	"4-3-3":   {"GK", "LB", "LCB", "RCB", "RB", "LCM", "CM", "RCM", "LW", "ST", "RW"},
	"4-4-2":   {"GK", "LB", "LCB", "RCB", "RB", "LM", "LCM", "RCM", "RM", "LST", "RST"},
	"3-5-2":   {"GK", "LCB", "CB", "RCB", "LWB", "CDM", "RWB", "LCM", "RCM", "LST", "RST"},
	"4-2-3-1": {"GK", "LB", "LCB", "RCB", "RB", "CDM", "CDM2", "CAM", "LW", "ST", "RW"},
	"4-1-4-1": {"GK", "LB", "LCB", "RCB", "RB", "CDM", "LM", "LCM", "RCM", "RM", "ST"},
	"5-3-2":   {"GK", "LWB", "LCB", "CB", "RCB", "RWB", "LCM", "CDM", "RCM", "LST", "RST"},
	"5-2-3":   {"GK", "LWB", "LCB", "CB", "RCB", "RWB", "LCM", "RCM", "LW", "ST", "RW"},
	"4-5-1":   {"GK", "LB", "LCB", "RCB", "RB", "LM", "LCM", "CM", "RCM", "RM", "ST"},
}

// IsKnownFormation reports whether name has a slot table.
func IsKnownFormation(name string) bool {
	_, ok := formationSlots[name]
	return ok
}

// FormationSlots returns a copy of the slot ids of name, falling back to DefaultFormation.
func FormationSlots(name string) []string {
	slots, ok := formationSlots[name]
	if !ok {
		slots = formationSlots[DefaultFormation]
	}
	return append([]string(nil), slots...)
}

// SlotAccepts reports whether a player listed at position may fill slot. Positions are either
// detailed codes (CB, LWB, CDM, ST) or the catalog's broad groups (DF, MF, FW). Checks run from the
// most specific slot family to the least; a slot no rule covers takes anyone.
func SlotAccepts(slot, position string) bool {
	if position == "" {
		return false
	}
	pos := strings.ToUpper(position)
	slot = strings.ToUpper(slot)

	switch {
	case slot == "GK":
		return pos == "GK"
	case strings.Contains(slot, "CB"):
		return strings.Contains(pos, "CB") || pos == "DF"
	case strings.Contains(slot, "LB"):
		return pos == "LB" || strings.Contains(pos, "LWB") || pos == "DF"
	case strings.Contains(slot, "RB"):
		return pos == "RB" || strings.Contains(pos, "RWB") || pos == "DF"
	case strings.Contains(slot, "WB"):
		return strings.Contains(pos, "WB") || pos == "LB" || pos == "RB" || pos == "DF"
	case strings.Contains(slot, "DM"):
		return strings.Contains(pos, "DM") || pos == "MF"
	case strings.Contains(slot, "CM"):
		return strings.Contains(pos, "CM") || strings.Contains(pos, "DM") || pos == "MF"
	case strings.Contains(slot, "AM"):
		return strings.Contains(pos, "AM") || pos == "MF"
	case strings.Contains(slot, "LW"):
		return pos == "LW" || pos == "FW"
	case strings.Contains(slot, "RW"):
		return pos == "RW" || pos == "FW"
	case strings.Contains(slot, "ST"):
		return pos == "ST" || pos == "CF" || pos == "FW"
	case strings.Contains(slot, "LM"), strings.Contains(slot, "RM"):
		return strings.Contains(pos, "M")
	}
	return true
}
