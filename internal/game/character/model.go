// Package character defines the persistent character record and the
// progression operations outside combat.
package character

import (
	"maps"
	"slices"
	"time"

	"github.com/cory-johannsen/inkquest/internal/game/inventory"
	"github.com/cory-johannsen/inkquest/internal/game/ruleset"
	"github.com/cory-johannsen/inkquest/internal/game/stats"
)

// Counters are cumulative totals consumed by achievement tracking.
type Counters struct {
	MonstersDefeated      int `json:"monstersDefeated"`
	EliteMonstersDefeated int `json:"eliteMonstersDefeated"`
	EquipmentFound        int `json:"equipmentFound"`
	InkDropsSpent         int `json:"inkDropsSpent"`
	SessionsCompleted     int `json:"sessionsCompleted"`
	TotalWordsWritten     int `json:"totalWordsWritten"`
}

// Character represents a player character's persistent state.
//
// ID and AccountID are set by the persistence layer; zero values indicate an
// unsaved character. Max health and mana are never stored; derive them with
// a stats.Model.
type Character struct {
	ID        int64
	AccountID int64

	Name     string
	Class    string
	Level    int
	XP       int
	XPToNext int

	// Attributes is nil only for malformed records.
	Attributes *ruleset.Attributes

	Health        int
	Mana          int
	LastRegenTime time.Time

	Equipment inventory.Equipment
	Inventory inventory.Backpack

	InkDrops            int
	LuckStat            float64
	AvailableStatPoints int
	// XPBoost multiplies the next writing session's XP when greater than zero.
	XPBoost   float64
	Cosmetics []string
	SkillXP   map[string]int
	Counters  Counters

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile returns the inputs the stat model reads.
func (c *Character) Profile() stats.Profile {
	return stats.Profile{
		Attributes: c.Attributes,
		Level:      c.Level,
		Class:      c.Class,
		Equipment:  c.Equipment,
	}
}

// Stats derives the character's current combat stats.
func (c *Character) Stats(m stats.Model) stats.Combat {
	return m.Derive(c.Profile())
}

// Clone returns a deep copy of c.
func (c *Character) Clone() *Character {
	out := *c
	if c.Attributes != nil {
		attrs := *c.Attributes
		out.Attributes = &attrs
	}
	out.Inventory = c.Inventory.Clone()
	out.Cosmetics = slices.Clone(c.Cosmetics)
	out.SkillXP = maps.Clone(c.SkillXP)
	return &out
}

// Clamp bounds health and mana to [0, max] for the given stat block.
//
// Postcondition: 0 <= Health <= s.MaxHealth and 0 <= Mana <= s.MaxMana.
func (c *Character) Clamp(s stats.Combat) {
	c.Health = min(max(c.Health, 0), s.MaxHealth)
	c.Mana = min(max(c.Mana, 0), s.MaxMana)
}
