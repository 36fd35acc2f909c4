package combat

import (
	"math"

	"github.com/cory-johannsen/inkquest/internal/game/condition"
	"github.com/cory-johannsen/inkquest/internal/game/dice"
)

// Damage formula tuning shared by players and monsters.
const (
	MinimumDamage  = 3
	DefenseScaling = 0.7
	JitterBand     = 0.10
)

// Strike holds everything the damage formula reads for one hit.
type Strike struct {
	Attack         int
	Defense        int
	Multiplier     float64
	CritChance     float64 // percentage points
	CritMultiplier float64
	// Attacker and Defender are the combatants' active conditions.
	Attacker condition.ActiveSet
	Defender condition.ActiveSet
}

// AttackResult is the audit trail of one resolved hit.
type AttackResult struct {
	// Base is the raw damage after the minimum floor and multiplier.
	Base int
	// Rolled is Base after jitter.
	Rolled int
	Crit   bool
	// Damage is the final amount applied, always >= 1.
	Damage int
}

// BaseDamage returns max(MinimumDamage, attack - floor(defense*0.7)) scaled
// by multiplier and floored.
func BaseDamage(attack, defense int, multiplier float64) int {
	raw := max(MinimumDamage, attack-int(math.Floor(float64(defense)*DefenseScaling)))
	return int(math.Floor(float64(raw) * multiplier))
}

// ResolveAttack rolls jitter then crit for s and applies condition modifiers.
//
// Postcondition: Damage >= 1.
func ResolveAttack(s Strike, roller *dice.Roller) AttackResult {
	base := BaseDamage(s.Attack, s.Defense, s.Multiplier)
	rolled := dice.Jitter(roller.Source(), base, JitterBand)

	crit := roller.Percent("crit", s.CritChance+condition.CritChanceBonus(s.Attacker))
	d := float64(rolled)
	if crit {
		d = math.Floor(d * s.CritMultiplier)
	}
	d = math.Floor(d * condition.DamageDealtFactor(s.Attacker) * condition.DamageTakenFactor(s.Defender))
	return AttackResult{
		Base:   base,
		Rolled: rolled,
		Crit:   crit,
		Damage: max(1, int(d)),
	}
}
