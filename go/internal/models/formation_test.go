package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormationSlots(t *testing.T) {
	for name := range formationSlots {
		slots := FormationSlots(name)
		assert.Len(t, slots, 11, name)
		assert.Equal(t, "GK", slots[0], name)
	}

	assert.Equal(t, FormationSlots(DefaultFormation), FormationSlots("2-3-5"))
	assert.True(t, IsKnownFormation("4-4-2"))
	assert.False(t, IsKnownFormation("2-3-5"))

	slots := FormationSlots("4-4-2")
	slots[0] = "XX"
	assert.Equal(t, "GK", FormationSlots("4-4-2")[0], "callers get a copy")
}

func TestSlotAccepts(t *testing.T) {
	tests := []struct {
		slot, position string
		want           bool
	}{
		{"GK", "GK", true},
		{"GK", "DF", false},
		{"LCB", "CB", true},
		{"LCB", "DF", true},
		{"LCB", "MF", false},
		{"LB", "LWB", true},
		{"RB", "rb", true},
		{"LWB", "RB", true},
		{"CDM2", "CDM", true},
		{"RCM", "DM", true},
		{"CAM", "MF", true},
		{"CAM", "FW", false},
		{"LW", "FW", true},
		{"RW", "LW", false},
		{"ST", "CF", true},
		{"LST", "FW", true},
		{"LM", "RM", true},
		{"ST", "", false},
		{"SUB", "GK", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SlotAccepts(tt.slot, tt.position), "%s <- %s", tt.slot, tt.position)
	}
}
