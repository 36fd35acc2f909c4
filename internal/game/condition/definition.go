// Package condition defines timed combat effects and tracks the ones active
// on each combatant.
package condition

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Modifier names the combat quantity a condition changes.
type Modifier string

const (
	// DamageTaken scales incoming damage by (1 + Magnitude).
	DamageTaken Modifier = "damage_taken"
	// DamageDealt scales outgoing damage by (1 + Magnitude).
	DamageDealt Modifier = "damage_dealt"
	// CritChance adds Magnitude percentage points to crit chance.
	CritChance Modifier = "crit_chance"
)

// ConditionDef is the static definition of a condition, loaded from YAML.
type ConditionDef struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Modifier    Modifier `yaml:"modifier"`
	Magnitude   float64  `yaml:"magnitude"`
	// Duration is the number of completed turns the condition lasts.
	Duration int `yaml:"duration"`
}

// Validate checks that the definition satisfies its invariants.
func (d ConditionDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	switch d.Modifier {
	case DamageTaken, DamageDealt:
		if d.Magnitude <= -1 {
			errs = append(errs, fmt.Errorf("magnitude must be > -1 for %s, got %v", d.Modifier, d.Magnitude))
		}
	case CritChance:
	default:
		errs = append(errs, fmt.Errorf("unknown modifier %q", d.Modifier))
	}
	if d.Duration < 1 {
		errs = append(errs, errors.New("duration must be >= 1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("condition %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// Registry holds all known ConditionDefs keyed by ID.
type Registry struct {
	defs map[string]ConditionDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]ConditionDef)}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
func (r *Registry) Register(def ConditionDef) {
	r.defs[def.ID] = def
}

// Get returns the ConditionDef for id and whether it exists.
func (r *Registry) Get(id string) (ConditionDef, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// IDs returns every registered ID, sorted.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.defs))
	for id := range r.defs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Load parses a conditions catalog document of the form {conditions: [...]}.
//
// Postcondition: returns a Registry of validated definitions or a non-nil error.
func Load(data []byte) (*Registry, error) {
	var doc struct {
		Conditions []ConditionDef `yaml:"conditions"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("condition: parsing catalog: %w", err)
	}
	reg := NewRegistry()
	for _, d := range doc.Conditions {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("condition: %w", err)
		}
		if _, dup := reg.Get(d.ID); dup {
			return nil, fmt.Errorf("condition: %q defined twice", d.ID)
		}
		reg.Register(d)
	}
	return reg, nil
}
