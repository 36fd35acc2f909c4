package character

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cory-johannsen/inkquest/internal/game/ruleset"
	"github.com/cory-johannsen/inkquest/internal/game/stats"
)

const (
	// StartingInkDrops is the currency a new character begins with.
	StartingInkDrops = 50
	// StatPointsPerLevel is granted on every level gained.
	StatPointsPerLevel = 3
	firstLevelXP       = 100
)

// ErrUnknownClass is returned when creating a character with a class key not in the catalog.
var ErrUnknownClass = errors.New("character: unknown class")

// ErrNotEnoughStatPoints is returned when an allocation exceeds available points.
var ErrNotEnoughStatPoints = errors.New("character: not enough stat points")

// New creates a level-1 character of the given class at full health and mana.
//
// Precondition: name must be non-empty after trimming.
// Postcondition: Returns a character ready for persistence, or a non-nil error.
func New(name, class string, m stats.Model, now time.Time) (*Character, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}
	cls, ok := m.Classes.Class(class)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}
	attrs := cls.BaseStats
	ch := &Character{
		Name:          name,
		Class:         cls.Key,
		Level:         1,
		XPToNext:      firstLevelXP,
		Attributes:    &attrs,
		LastRegenTime: now,
		InkDrops:      StartingInkDrops,
		SkillXP:       map[string]int{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s := ch.Stats(m)
	ch.Health = s.MaxHealth
	ch.Mana = s.MaxMana
	return ch, nil
}

// XPToNext returns the XP needed to advance past level.
func XPToNext(level int) int {
	return int(math.Floor(100 * math.Pow(float64(level), 1.5)))
}

// SessionResult summarises a recorded writing session.
type SessionResult struct {
	XPGained     int
	LevelsGained int
	SkillPoints  int
}

// SkillPointsFor returns the skill points a session of the given size may allocate.
func SkillPointsFor(words, minutes int) int {
	return words/500 + min(minutes, 120)/60
}

// RecordSession awards XP for a writing session, levels the character up as
// many times as the XP allows, and adds allocated skill XP. A pending XP
// boost multiplies this session's XP and is then consumed.
//
// Precondition: words and minutes are non-negative; skill allocations are non-negative
// and sum to at most SkillPointsFor(words, minutes).
// Postcondition: returns an updated copy; ch is not modified.
func RecordSession(ch *Character, words, minutes int, skills map[string]int) (*Character, SessionResult, error) {
	if words < 0 || minutes < 0 {
		return nil, SessionResult{}, errors.New("character: words and minutes must not be negative")
	}
	allowed := SkillPointsFor(words, minutes)
	used := 0
	for skill, pts := range skills {
		if pts < 0 {
			return nil, SessionResult{}, fmt.Errorf("character: negative skill points for %q", skill)
		}
		used += pts
	}
	if used > allowed {
		return nil, SessionResult{}, fmt.Errorf("character: %d skill points allocated, session allows %d", used, allowed)
	}

	out := ch.Clone()
	xp := words/10 + minutes/2
	if out.XPBoost > 0 {
		xp = int(math.Floor(float64(xp) * out.XPBoost))
		out.XPBoost = 0
	}
	res := SessionResult{XPGained: xp, SkillPoints: allowed}

	out.XP += xp
	if out.XPToNext <= 0 {
		out.XPToNext = XPToNext(max(out.Level, 1))
	}
	for out.XP >= out.XPToNext {
		out.XP -= out.XPToNext
		out.Level++
		out.AvailableStatPoints += StatPointsPerLevel
		out.XPToNext = XPToNext(out.Level)
		res.LevelsGained++
	}

	if out.SkillXP == nil {
		out.SkillXP = map[string]int{}
	}
	for skill, pts := range skills {
		if pts > 0 {
			out.SkillXP[skill] += pts
		}
	}
	out.Counters.SessionsCompleted++
	out.Counters.TotalWordsWritten += words
	return out, res, nil
}

// SkillLevel converts accumulated skill XP into a level and progress toward the next.
// Level n requires n XP to advance.
func SkillLevel(totalXP int) (level, current, toNext int) {
	level = 1
	used := 0
	for totalXP > 0 && used+level <= totalXP {
		used += level
		level++
	}
	return level, max(totalXP-used, 0), level
}

// AllocateStats spends available stat points on attributes.
//
// Postcondition: returns an updated copy; ch is not modified.
func AllocateStats(ch *Character, add ruleset.Attributes) (*Character, error) {
	if add.Focus < 0 || add.Creativity < 0 || add.Persistence < 0 || add.Technique < 0 {
		return nil, errors.New("character: stat allocation must not be negative")
	}
	total := add.Focus + add.Creativity + add.Persistence + add.Technique
	if total > ch.AvailableStatPoints {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrNotEnoughStatPoints, total, ch.AvailableStatPoints)
	}
	out := ch.Clone()
	if out.Attributes == nil {
		out.Attributes = &ruleset.Attributes{}
	}
	out.Attributes.Focus += add.Focus
	out.Attributes.Creativity += add.Creativity
	out.Attributes.Persistence += add.Persistence
	out.Attributes.Technique += add.Technique
	out.AvailableStatPoints -= total
	return out, nil
}
