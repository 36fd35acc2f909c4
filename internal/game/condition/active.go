package condition

// Active tracks one applied condition on a combatant.
type Active struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Modifier  Modifier `json:"modifier"`
	Magnitude float64  `json:"magnitude"`
	Remaining int      `json:"remaining"`
}

// ActiveSet tracks the conditions on one combatant in application order.
// It is not safe for concurrent use; the caller must serialise access.
type ActiveSet struct {
	Conditions []Active `json:"conditions,omitempty"`
}

// Apply adds def or refreshes it if already present. On refresh the duration
// resets to the longer of the two and the stronger magnitude is kept.
//
// Postcondition: Has(def.ID) is true.
func (s *ActiveSet) Apply(def ConditionDef) {
	for i := range s.Conditions {
		ac := &s.Conditions[i]
		if ac.ID != def.ID {
			continue
		}
		if def.Duration > ac.Remaining {
			ac.Remaining = def.Duration
		}
		if abs(def.Magnitude) > abs(ac.Magnitude) {
			ac.Magnitude = def.Magnitude
		}
		return
	}
	s.Conditions = append(s.Conditions, Active{
		ID:        def.ID,
		Name:      def.Name,
		Modifier:  def.Modifier,
		Magnitude: def.Magnitude,
		Remaining: def.Duration,
	})
}

// Remove deletes the condition with the given ID. Absent IDs are a no-op.
func (s *ActiveSet) Remove(id string) {
	kept := s.Conditions[:0]
	for _, ac := range s.Conditions {
		if ac.ID != id {
			kept = append(kept, ac)
		}
	}
	s.Conditions = kept
}

// Tick decrements every remaining duration by one completed turn and removes
// conditions that reach zero.
//
// Postcondition: for every name in the returned slice the condition is gone.
func (s *ActiveSet) Tick() []string {
	var expired []string
	kept := s.Conditions[:0]
	for _, ac := range s.Conditions {
		ac.Remaining--
		if ac.Remaining <= 0 {
			expired = append(expired, ac.Name)
			continue
		}
		kept = append(kept, ac)
	}
	s.Conditions = kept
	return expired
}

// Has reports whether the condition with id is currently active.
func (s ActiveSet) Has(id string) bool {
	for _, ac := range s.Conditions {
		if ac.ID == id {
			return true
		}
	}
	return false
}

// Remaining returns the turns left on condition id, or 0 if absent.
func (s ActiveSet) Remaining(id string) int {
	for _, ac := range s.Conditions {
		if ac.ID == id {
			return ac.Remaining
		}
	}
	return 0
}

// Clone returns an independent copy of s.
func (s ActiveSet) Clone() ActiveSet {
	if s.Conditions == nil {
		return ActiveSet{}
	}
	out := make([]Active, len(s.Conditions))
	copy(out, s.Conditions)
	return ActiveSet{Conditions: out}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
