// Package dice provides the injectable randomness used by encounter
// generation, damage rolls, and reward drops.
package dice

import (
	"fmt"
	"math"
)

// Source is the randomness provider for every roll in the game.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0, 1).
	Float64() float64
}

// Between returns a uniform integer in [lo, hi].
//
// Precondition: lo <= hi. Panics otherwise.
func Between(src Source, lo, hi int) int {
	if lo > hi {
		panic(fmt.Sprintf("dice: Between precondition violated: lo %d > hi %d", lo, hi))
	}
	return lo + src.Intn(hi-lo+1)
}

// Percent reports whether a roll on the 0-100 scale lands under chance.
// A chance of 0 or less never succeeds; 100 or more always does.
func Percent(src Source, chance float64) bool {
	return src.Float64()*100 < chance
}

// Pick returns a uniformly chosen index into a collection of length n.
//
// Precondition: n > 0.
func Pick(src Source, n int) int {
	return src.Intn(n)
}

// RollResult holds the audit trail for a single dice expression evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total returns the sum of all die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the roll as "1d10-1 → [7] -1 = 6".
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Jitter returns a uniform integer in [ceil(v*(1-band)), ceil(v*(1+band))].
//
// Precondition: band >= 0.
func Jitter(src Source, v int, band float64) int {
	if band < 0 {
		panic("dice: Jitter precondition violated: band must be >= 0")
	}
	lo := int(math.Ceil(float64(v) * (1 - band)))
	hi := int(math.Ceil(float64(v) * (1 + band)))
	if hi < lo {
		lo, hi = hi, lo
	}
	return Between(src, lo, hi)
}
