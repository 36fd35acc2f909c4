// Package combat resolves turn-based encounters between a character and a
// generated monster.
package combat

import (
	"fmt"
	"maps"
	"slices"

	"github.com/cory-johannsen/inkquest/internal/game/condition"
	"github.com/cory-johannsen/inkquest/internal/game/npc"
)

// Phase is a combat session state.
type Phase string

const (
	PhaseAreaSelection Phase = "area_selection"
	PhaseCombat        Phase = "combat"
	PhaseVictory       Phase = "victory"
	PhaseDefeat        Phase = "defeat"
)

// FleeCost is the mana spent to escape an encounter.
const FleeCost = 5

// Session is the runtime state of one encounter. The character record is
// only updated at phase transitions; in between, the player's health and
// mana live in the snapshot fields here.
type Session struct {
	Phase   Phase
	AreaKey string
	// Monster is nil outside combat, victory, and defeat.
	Monster      *npc.Monster
	PlayerHealth int
	PlayerMana   int
	// Turn starts at 1 on entry and advances after each monster counter-turn.
	Turn int
	// Cooldowns maps ability name to the turn it becomes available again.
	Cooldowns         map[string]int
	PlayerConditions  condition.ActiveSet
	MonsterConditions condition.ActiveSet
	Log               []string
	// Rewards is set once on victory.
	Rewards *npc.Rewards
}

// NewSession returns a session waiting for an area choice.
func NewSession() Session {
	return Session{Phase: PhaseAreaSelection, Cooldowns: map[string]int{}}
}

// Clone returns a deep copy of s.
func (s Session) Clone() Session {
	out := s
	if s.Monster != nil {
		m := *s.Monster
		out.Monster = &m
	}
	out.Cooldowns = maps.Clone(s.Cooldowns)
	if out.Cooldowns == nil {
		out.Cooldowns = map[string]int{}
	}
	out.PlayerConditions = s.PlayerConditions.Clone()
	out.MonsterConditions = s.MonsterConditions.Clone()
	out.Log = slices.Clone(s.Log)
	if s.Rewards != nil {
		r := *s.Rewards
		if r.Loot != nil {
			loot := *r.Loot
			r.Loot = &loot
		}
		out.Rewards = &r
	}
	return out
}

// CooldownRemaining returns how many turns until ability name is usable again.
func (s Session) CooldownRemaining(name string) int {
	return max(0, s.Cooldowns[name]-s.Turn)
}

func (s *Session) logf(format string, args ...any) {
	s.Log = append(s.Log, fmt.Sprintf(format, args...))
}
