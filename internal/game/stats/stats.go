// Package stats derives combat statistics from a character's attributes,
// level, class, and equipment. Derived values are never stored.
package stats

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/inkquest/internal/game/inventory"
	"github.com/cory-johannsen/inkquest/internal/game/ruleset"
)

// Combat is the derived stat block used by combat and regeneration.
type Combat struct {
	MaxHealth      int
	MaxMana        int
	Attack         int
	Defense        int
	CritChance     float64 // percentage points, 0-100 scale
	CritMultiplier float64
	ManaRegen      int
}

// Fallback is returned for characters without an attribute block.
var Fallback = Combat{
	MaxHealth:      40,
	MaxMana:        40,
	Attack:         8,
	Defense:        3,
	CritChance:     5,
	CritMultiplier: 1.5,
	ManaRegen:      1,
}

// Profile is the subset of a character the stat model reads.
type Profile struct {
	// Attributes is nil for a malformed or partially-created character.
	Attributes *ruleset.Attributes
	Level      int
	Class      string
	Equipment  inventory.Equipment
}

// Model carries the catalogs the derivation consults.
type Model struct {
	Classes *ruleset.Registry
	Items   *inventory.Registry
}

// Derive computes the combat stat block for p.
//
// Negative attributes are treated as zero and a level below 1 as level 1.
// Unknown classes use neutral multipliers and unknown item IDs add nothing.
//
// Postcondition: MaxHealth, MaxMana, Attack, and Defense are all >= 0.
func (m Model) Derive(p Profile) Combat {
	if p.Attributes == nil {
		return Fallback
	}
	a := *p.Attributes
	focus := float64(max(a.Focus, 0))
	creativity := float64(max(a.Creativity, 0))
	persistence := float64(max(a.Persistence, 0))
	technique := float64(max(a.Technique, 0))
	level := float64(max(p.Level, 1))

	mult := m.Classes.Multipliers(p.Class)
	eq := inventory.ResolveBonuses(p.Equipment, m.Items)

	c := Combat{
		MaxHealth:      floor((50+persistence*10+level*6)*mult.Health) + eq.Health,
		MaxMana:        floor((50+focus*10+level*4)*mult.Mana) + eq.Mana,
		Attack:         floor((10+technique*3+level*1.5)*mult.Attack) + eq.Attack,
		Defense:        floor((5+persistence*1.5+math.Floor(level*0.8))*mult.Defense) + eq.Defense,
		CritChance:     2 + creativity*0.175 + eq.CritChance,
		CritMultiplier: 1.3 + creativity*0.0175,
		ManaRegen:      max(1, int(focus)/4),
	}
	if c.MaxHealth < 0 || c.MaxMana < 0 || c.Attack < 0 || c.Defense < 0 {
		panic(fmt.Sprintf("stats: Derive postcondition violated: negative stat block %+v", c))
	}
	return c
}

func floor(f float64) int {
	return int(math.Floor(f))
}
