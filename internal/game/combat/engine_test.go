package combat_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/inkquest/internal/game/catalog"
	"github.com/cory-johannsen/inkquest/internal/game/character"
	"github.com/cory-johannsen/inkquest/internal/game/combat"
	"github.com/cory-johannsen/inkquest/internal/game/dice"
	"github.com/cory-johannsen/inkquest/internal/game/npc"
)

var now = time.Date(2026, 5, 4, 20, 0, 0, 0, time.UTC)

func loadCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return cat
}

func newResolver(t testing.TB, src dice.Source) (*combat.Resolver, *catalog.Catalog) {
	t.Helper()
	cat := loadCatalog(t)
	return combat.NewResolver(cat, roller(src), zap.NewNop()), cat
}

func newCharacter(t require.TestingT, cat *catalog.Catalog, class string, level int) *character.Character {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	ch, err := character.New("Ada", class, cat.Model(), now)
	require.NoError(t, err)
	ch.Level = level
	s := ch.Stats(cat.Model())
	ch.Health = s.MaxHealth
	ch.Mana = s.MaxMana
	return ch
}

func sprite(health int) *npc.Monster {
	return &npc.Monster{
		Name: "Shadow Sprite", DisplayName: "Shadow Sprite", Level: 1, BaseLevel: 1,
		Health: health, MaxHealth: health, Attack: 38, Defense: 8,
		Tier: npc.TierNormal, TierMultiplier: 1,
		CritChance: npc.MonsterCritChance, CritMultiplier: npc.MonsterCritMultiplier,
	}
}

func inCombat(m *npc.Monster, health, mana int) combat.Session {
	s := combat.NewSession()
	s.Phase = combat.PhaseCombat
	s.AreaKey = "whispering_woods"
	s.Monster = m
	s.PlayerHealth = health
	s.PlayerMana = mana
	s.Turn = 1
	return s
}

func logContains(s combat.Session, sub string) bool {
	for _, line := range s.Log {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

// 0.99 never crits and never drops loot.
func misses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.99
	}
	return out
}

func TestEnter_UnknownArea(t *testing.T) {
	r, cat := newResolver(t, dice.NewSeededSource(1))
	ch := newCharacter(t, cat, "wordsmith", 1)
	s, _, err := r.Enter(combat.NewSession(), ch, "nowhere", now)
	assert.ErrorIs(t, err, combat.ErrUnknownArea)
	assert.Equal(t, combat.PhaseAreaSelection, s.Phase)
}

func TestEnter_WrongPhase(t *testing.T) {
	r, cat := newResolver(t, dice.NewSeededSource(1))
	ch := newCharacter(t, cat, "wordsmith", 1)
	_, _, err := r.Enter(inCombat(sprite(65), 100, 100), ch, "whispering_woods", now)
	assert.ErrorIs(t, err, combat.ErrWrongPhase)
}

func TestEnter_StartsFreshEncounter(t *testing.T) {
	r, cat := newResolver(t, dice.NewSeededSource(42))
	ch := newCharacter(t, cat, "wordsmith", 1)

	prev := combat.NewSession()
	prev.Log = []string{"old line"}
	prev.Cooldowns["Precise Strike"] = 9

	s, out, err := r.Enter(prev, ch, "whispering_woods", now)
	require.NoError(t, err)
	assert.Equal(t, combat.PhaseCombat, s.Phase)
	assert.Equal(t, 1, s.Turn)
	require.NotNil(t, s.Monster)
	assert.GreaterOrEqual(t, s.Monster.Level, 1)
	assert.LessOrEqual(t, s.Monster.Level, 10)
	assert.Empty(t, s.Cooldowns)
	assert.False(t, logContains(s, "old line"))
	assert.True(t, logContains(s, "Whispering Woods"))
	assert.Equal(t, ch.Health, s.PlayerHealth)
	assert.Equal(t, ch.Mana, s.PlayerMana)
	assert.Equal(t, ch.Health, out.Health)
	assert.Equal(t, []string{"old line"}, prev.Log, "input untouched")
}

func TestEnter_AppliesRegeneration(t *testing.T) {
	r, cat := newResolver(t, dice.NewSeededSource(3))
	ch := newCharacter(t, cat, "wordsmith", 1)
	ch.Health = 10
	ch.LastRegenTime = now.Add(-10 * time.Minute)

	s, out, err := r.Enter(combat.NewSession(), ch, "whispering_woods", now)
	require.NoError(t, err)
	// 129 max health * 2.7% per minute * 10 minutes = 34
	assert.Equal(t, 44, out.Health)
	assert.Equal(t, now, out.LastRegenTime)
	assert.Equal(t, 44, s.PlayerHealth)
	assert.Equal(t, 10, ch.Health)
}

func TestEnter_FloorsHealthAtOne(t *testing.T) {
	r, cat := newResolver(t, dice.NewSeededSource(3))
	ch := newCharacter(t, cat, "wordsmith", 1)
	ch.Health = 0
	ch.LastRegenTime = now

	s, _, err := r.Enter(combat.NewSession(), ch, "whispering_woods", now)
	require.NoError(t, err)
	assert.Equal(t, 1, s.PlayerHealth)
}

func TestAttack_ExchangesBlows(t *testing.T) {
	// player 48 damage (jitter low end), monster 25 damage, no crits
	r, cat := newResolver(t, dice.NewScriptedSource([]int{0, 0}, misses(2)))
	ch := newCharacter(t, cat, "wordsmith", 1)
	sess := inCombat(sprite(65), 129, 134)

	s, out, err := r.Attack(sess, ch)
	require.NoError(t, err)
	assert.Equal(t, combat.PhaseCombat, s.Phase)
	assert.Equal(t, 17, s.Monster.Health)
	assert.Equal(t, 104, s.PlayerHealth)
	assert.Equal(t, 2, s.Turn)
	require.Len(t, s.Log, 2)
	assert.Equal(t, "You attack for 48 damage.", s.Log[0])
	assert.Equal(t, "Shadow Sprite attacks you for 25 damage.", s.Log[1])

	assert.Equal(t, 65, sess.Monster.Health, "input session untouched")
	assert.Equal(t, ch.Health, out.Health, "character only changes at transitions")
}

func TestAttack_WrongPhase(t *testing.T) {
	r, cat := newResolver(t, dice.NewSeededSource(1))
	ch := newCharacter(t, cat, "wordsmith", 1)
	_, _, err := r.Attack(combat.NewSession(), ch)
	assert.ErrorIs(t, err, combat.ErrWrongPhase)
}

func TestVictory_AtExactlyZeroGrantsRewardsOnce(t *testing.T) {
	// jitter 48 kills a 48-health monster; currency die 5 -> 1*3 + 4 = 7
	r, cat := newResolver(t, dice.NewScriptedSource([]int{0, 4}, misses(6)))
	ch := newCharacter(t, cat, "wordsmith", 1)
	sess := inCombat(sprite(48), 100, 120)

	s, out, err := r.Attack(sess, ch)
	require.NoError(t, err)
	assert.Equal(t, combat.PhaseVictory, s.Phase)
	assert.Equal(t, 0, s.Monster.Health)
	assert.Equal(t, 100, s.PlayerHealth, "no counter-turn after the killing blow")
	assert.False(t, logContains(s, "attacks you"))
	require.NotNil(t, s.Rewards)
	assert.Equal(t, 7, s.Rewards.Currency)
	assert.Nil(t, s.Rewards.Loot)

	assert.Equal(t, 100, out.Health)
	assert.Equal(t, 120, out.Mana)
	assert.Equal(t, character.StartingInkDrops+7, out.InkDrops)
	assert.Equal(t, 1, out.Counters.MonstersDefeated)
	assert.Zero(t, out.Counters.EliteMonstersDefeated)

	_, _, err = r.Attack(s, out)
	assert.ErrorIs(t, err, combat.ErrWrongPhase)

	s2, acked, err := r.Acknowledge(s, out)
	require.NoError(t, err)
	assert.Equal(t, combat.PhaseAreaSelection, s2.Phase)
	assert.Nil(t, s2.Monster)
	assert.Equal(t, out.InkDrops, acked.InkDrops)
	assert.Equal(t, 1, acked.Counters.MonstersDefeated)
}

func TestVictory_LootAndEliteCounters(t *testing.T) {
	// common roll hits on the last rarity check; pick index 1 of the common pool
	floats := append(misses(5), 0.01)
	r, cat := newResolver(t, dice.NewScriptedSource([]int{0, 0, 1}, floats))
	ch := newCharacter(t, cat, "wordsmith", 1)
	m := sprite(40)
	m.Tier = npc.TierElite
	m.TierMultiplier = 1.5
	m.DisplayName = "Shadow Sprite Elite"

	s, out, err := r.Attack(inCombat(m, 100, 100), ch)
	require.NoError(t, err)
	require.Equal(t, combat.PhaseVictory, s.Phase)
	require.NotNil(t, s.Rewards.Loot)
	assert.Equal(t, "pen_fountain", s.Rewards.Loot.ID)
	// floor((3 + 0) * 1.5)
	assert.Equal(t, 4, s.Rewards.Currency)
	require.Len(t, out.Inventory, 1)
	assert.Equal(t, s.Rewards.Loot.InstanceID, out.Inventory[0].InstanceID)
	assert.Equal(t, 1, out.Counters.EquipmentFound)
	assert.Equal(t, 1, out.Counters.EliteMonstersDefeated)
	assert.True(t, logContains(s, "You found Fountain Pen"))
}

func TestDefeat_AcknowledgeLeavesOneHealth(t *testing.T) {
	r, cat := newResolver(t, dice.NewScriptedSource([]int{0, 0}, misses(2)))
	ch := newCharacter(t, cat, "wordsmith", 1)
	m := sprite(1000)
	m.Attack = 500

	s, out, err := r.Attack(inCombat(m, 10, 30), ch)
	require.NoError(t, err)
	assert.Equal(t, combat.PhaseDefeat, s.Phase)
	assert.Equal(t, 0, s.PlayerHealth)
	assert.Nil(t, s.Rewards)
	assert.Equal(t, ch.Health, out.Health, "defeat does not touch the record until acknowledged")

	s2, acked, err := r.Acknowledge(s, out)
	require.NoError(t, err)
	assert.Equal(t, combat.PhaseAreaSelection, s2.Phase)
	assert.Equal(t, 1, acked.Health)
	assert.Equal(t, 30, acked.Mana)
	assert.Equal(t, character.StartingInkDrops, acked.InkDrops)
}

func TestAcknowledge_WrongPhase(t *testing.T) {
	r, cat := newResolver(t, dice.NewSeededSource(1))
	ch := newCharacter(t, cat, "wordsmith", 1)
	_, _, err := r.Acknowledge(inCombat(sprite(10), 10, 10), ch)
	assert.ErrorIs(t, err, combat.ErrWrongPhase)
}

func TestFlee_InsufficientMana(t *testing.T) {
	r, cat := newResolver(t, dice.NewSeededSource(1))
	ch := newCharacter(t, cat, "wordsmith", 1)
	sess := inCombat(sprite(65), 80, 3)

	s, out, err := r.Flee(sess, ch)
	require.NoError(t, err)
	assert.Equal(t, combat.PhaseCombat, s.Phase)
	assert.Equal(t, 3, s.PlayerMana)
	assert.Equal(t, 1, s.Turn)
	assert.Equal(t, 65, s.Monster.Health)
	assert.Equal(t, 80, s.PlayerHealth, "no counter-attack")
	assert.True(t, logContains(s, "Not enough mana to flee"))
	assert.Equal(t, ch.Mana, out.Mana)
}

func TestFlee_PersistsSnapshot(t *testing.T) {
	r, cat := newResolver(t, dice.NewSeededSource(1))
	ch := newCharacter(t, cat, "wordsmith", 1)

	s, out, err := r.Flee(inCombat(sprite(65), 80, 20), ch)
	require.NoError(t, err)
	assert.Equal(t, combat.PhaseAreaSelection, s.Phase)
	assert.Nil(t, s.Monster)
	assert.Equal(t, 80, out.Health)
	assert.Equal(t, 15, out.Mana)
	assert.Zero(t, out.Counters.MonstersDefeated)
}

func TestDo_Dispatches(t *testing.T) {
	r, cat := newResolver(t, dice.NewSeededSource(1))
	ch := newCharacter(t, cat, "wordsmith", 1)
	s, _, err := r.Do(inCombat(sprite(65), 80, 20), ch, combat.Action{Type: combat.ActionFlee})
	require.NoError(t, err)
	assert.Equal(t, combat.PhaseAreaSelection, s.Phase)

	_, _, err = r.Do(s, ch, combat.Action{})
	assert.Error(t, err)
}

func TestEncounter_InvariantsHoldUnderRandomPlay(t *testing.T) {
	cat := loadCatalog(t)
	classes := cat.Classes.Keys()
	rapid.Check(t, func(rt *rapid.T) {
		r := combat.NewResolver(cat, roller(dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed"))), zap.NewNop())
		class := rapid.SampledFrom(classes).Draw(rt, "class")
		ch := newCharacter(rt, cat, class, rapid.IntRange(1, 12).Draw(rt, "level"))
		m := cat.Model()

		s, ch2, err := r.Enter(combat.NewSession(), ch, "whispering_woods", now)
		if err != nil {
			rt.Fatalf("enter: %v", err)
		}
		ch = ch2
		abilities := cat.Classes.Abilities(ch.Class, ch.Level)
		victories := 0
		for step := 0; step < 60 && s.Phase == combat.PhaseCombat; step++ {
			var a combat.Action
			switch rapid.IntRange(0, 3).Draw(rt, "action") {
			case 0, 1:
				a = combat.Action{Type: combat.ActionAttack}
			case 2:
				if len(abilities) > 0 {
					a = combat.Action{Type: combat.ActionAbility, Ability: rapid.SampledFrom(abilities).Draw(rt, "ability").Name}
				} else {
					a = combat.Action{Type: combat.ActionAttack}
				}
			case 3:
				a = combat.Action{Type: combat.ActionFlee}
			}
			ink := ch.InkDrops
			s, ch, err = r.Do(s, ch, a)
			if err != nil {
				rt.Fatalf("%s: %v", a.Type, err)
			}
			ps := ch.Stats(m)
			if s.PlayerHealth < 0 || s.PlayerHealth > ps.MaxHealth || s.PlayerMana < 0 || s.PlayerMana > ps.MaxMana {
				rt.Fatalf("snapshot out of bounds: hp %d/%d mana %d/%d", s.PlayerHealth, ps.MaxHealth, s.PlayerMana, ps.MaxMana)
			}
			if ch.Health < 0 || ch.Health > ps.MaxHealth || ch.Mana < 0 || ch.Mana > ps.MaxMana {
				rt.Fatalf("character out of bounds: hp %d/%d mana %d/%d", ch.Health, ps.MaxHealth, ch.Mana, ps.MaxMana)
			}
			if ch.InkDrops != ink {
				victories++
			}
		}
		if s.Phase == combat.PhaseVictory || s.Phase == combat.PhaseDefeat {
			ink := ch.InkDrops
			s, ch, err = r.Acknowledge(s, ch)
			if err != nil {
				rt.Fatalf("acknowledge: %v", err)
			}
			if ch.InkDrops != ink {
				rt.Fatalf("acknowledge changed ink drops")
			}
			if ch.Health < 1 {
				rt.Fatalf("health %d after acknowledge", ch.Health)
			}
		}
		if victories > 1 {
			rt.Fatalf("rewards granted %d times", victories)
		}
	})
}
