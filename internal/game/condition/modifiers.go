package condition

// DamageDealtFactor returns the multiplier applied to damage this combatant deals.
//
// Postcondition: result >= 0.
func DamageDealtFactor(s ActiveSet) float64 {
	return factor(s, DamageDealt)
}

// DamageTakenFactor returns the multiplier applied to damage this combatant receives.
//
// Postcondition: result >= 0.
func DamageTakenFactor(s ActiveSet) float64 {
	return factor(s, DamageTaken)
}

// CritChanceBonus returns the total crit chance points granted by active conditions.
func CritChanceBonus(s ActiveSet) float64 {
	total := 0.0
	for _, ac := range s.Conditions {
		if ac.Modifier == CritChance {
			total += ac.Magnitude
		}
	}
	return total
}

func factor(s ActiveSet, m Modifier) float64 {
	f := 1.0
	for _, ac := range s.Conditions {
		if ac.Modifier == m {
			f *= 1 + ac.Magnitude
		}
	}
	if f < 0 {
		return 0
	}
	return f
}
