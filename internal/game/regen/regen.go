// Package regen restores health and mana over elapsed wall-clock time.
package regen

import (
	"math"
	"time"

	"github.com/cory-johannsen/inkquest/internal/game/character"
	"github.com/cory-johannsen/inkquest/internal/game/stats"
)

const (
	// MinElapsed is the gap below which regeneration does nothing.
	MinElapsed = 30 * time.Second
	// MaxElapsed caps how much absence is credited.
	MaxElapsed = 24 * time.Hour
)

// HealthRate returns the fraction of max health restored per minute.
func HealthRate(persistence int) float64 {
	return (1.5 + float64(max(persistence, 0))*0.15) / 100
}

// ManaRate returns the fraction of max mana restored per minute.
func ManaRate(focus int) float64 {
	return (2.5 + float64(max(focus, 0))*0.25) / 100
}

// Apply credits the time between last and now.
//
// A zero last starts the clock: the character is returned unchanged with
// now as the new timestamp. A gap that is negative or shorter than
// MinElapsed is a no-op and last is returned as-is. Otherwise health is
// floored at 1, both pools gain their per-minute share of the elapsed time
// (capped at MaxElapsed), are clamped to their maximums, and now is returned
// even if nothing was restored.
//
// Postcondition: ch is not modified; the returned character satisfies
// 0 <= Health <= MaxHealth and 0 <= Mana <= MaxMana.
func Apply(ch *character.Character, last, now time.Time, m stats.Model) (*character.Character, time.Time) {
	out := ch.Clone()
	s := out.Stats(m)
	if last.IsZero() {
		out.Clamp(s)
		out.LastRegenTime = now
		return out, now
	}
	elapsed := now.Sub(last)
	if elapsed < MinElapsed {
		out.Clamp(s)
		return out, last
	}
	elapsed = min(elapsed, MaxElapsed)
	minutes := elapsed.Minutes()

	var persistence, focus int
	if out.Attributes != nil {
		persistence = out.Attributes.Persistence
		focus = out.Attributes.Focus
	}
	health := max(out.Health, 1)
	health += int(math.Floor(float64(s.MaxHealth) * HealthRate(persistence) * minutes))
	mana := out.Mana + int(math.Floor(float64(s.MaxMana)*ManaRate(focus)*minutes))

	out.Health = health
	out.Mana = mana
	out.Clamp(s)
	out.LastRegenTime = now
	return out, now
}
