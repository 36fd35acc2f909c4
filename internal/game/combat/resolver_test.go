package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/inkquest/internal/game/combat"
	"github.com/cory-johannsen/inkquest/internal/game/condition"
	"github.com/cory-johannsen/inkquest/internal/game/dice"
)

func roller(src dice.Source) *dice.Roller {
	return dice.NewLoggedRoller(src, zap.NewNop())
}

func TestBaseDamage(t *testing.T) {
	assert.Equal(t, 17, combat.BaseDamage(20, 5, 1))
	assert.Equal(t, 3, combat.BaseDamage(1, 1000, 1), "minimum floor")
	assert.Equal(t, 126, combat.BaseDamage(68, 8, 2.0))
	assert.Equal(t, 37, combat.BaseDamage(68, 8, 0.6))
}

func TestResolveAttack_Scripted(t *testing.T) {
	// base 17, jitter band [16, 19]; index 2 -> 18; 99 >= 5 so no crit
	r := combat.ResolveAttack(combat.Strike{Attack: 20, Defense: 5, Multiplier: 1, CritChance: 5, CritMultiplier: 1.5},
		roller(dice.NewScriptedSource([]int{2}, []float64{0.99})))
	assert.Equal(t, combat.AttackResult{Base: 17, Rolled: 18, Crit: false, Damage: 18}, r)
}

func TestResolveAttack_Crit(t *testing.T) {
	r := combat.ResolveAttack(combat.Strike{Attack: 20, Defense: 5, Multiplier: 1, CritChance: 5, CritMultiplier: 1.5},
		roller(dice.NewScriptedSource([]int{2}, []float64{0.0})))
	assert.True(t, r.Crit)
	assert.Equal(t, 27, r.Damage)
}

func TestResolveAttack_DefenderCondition(t *testing.T) {
	var armor condition.ActiveSet
	armor.Apply(condition.ConditionDef{ID: "plot_armor", Name: "Plot Armor", Modifier: condition.DamageTaken, Magnitude: -0.35, Duration: 2})
	r := combat.ResolveAttack(combat.Strike{Attack: 20, Defense: 5, Multiplier: 1, CritMultiplier: 1.5, Defender: armor},
		roller(dice.NewScriptedSource([]int{2}, []float64{0.99})))
	assert.Equal(t, 11, r.Damage)
}

func TestResolveAttack_AttackerCritBonus(t *testing.T) {
	var wit condition.ActiveSet
	wit.Apply(condition.ConditionDef{ID: "sharp_wit", Name: "Sharp Wit", Modifier: condition.CritChance, Magnitude: 25, Duration: 3})
	// roll 20 misses a 5% chance but lands under 30%
	r := combat.ResolveAttack(combat.Strike{Attack: 20, Defense: 5, Multiplier: 1, CritChance: 5, CritMultiplier: 2, Attacker: wit},
		roller(dice.NewScriptedSource([]int{0}, []float64{0.2})))
	assert.True(t, r.Crit)
	assert.Equal(t, 32, r.Damage)
}

func TestResolveAttack_NoCritBandWithZeroChance(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		src := dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed"))
		r := combat.ResolveAttack(combat.Strike{Attack: 20, Defense: 5, Multiplier: 1, CritChance: 0, CritMultiplier: 1.5}, roller(src))
		if r.Crit {
			rt.Fatalf("crit with zero chance")
		}
		if r.Damage < 16 || r.Damage > 19 {
			rt.Fatalf("damage %d outside [16, 19]", r.Damage)
		}
	})
}

func TestResolveAttack_NeverBelowOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		src := dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed"))
		var weak condition.ActiveSet
		weak.Apply(condition.ConditionDef{ID: "binding_narrative", Modifier: condition.DamageDealt, Magnitude: -0.9, Duration: 1})
		r := combat.ResolveAttack(combat.Strike{
			Attack:         rapid.IntRange(0, 50).Draw(rt, "attack"),
			Defense:        rapid.IntRange(0, 10000).Draw(rt, "defense"),
			Multiplier:     rapid.Float64Range(0.01, 3).Draw(rt, "mult"),
			CritChance:     rapid.Float64Range(0, 100).Draw(rt, "crit"),
			CritMultiplier: 1.5,
			Attacker:       weak,
		}, roller(src))
		if r.Damage < 1 {
			rt.Fatalf("damage %d below 1", r.Damage)
		}
	})
}
