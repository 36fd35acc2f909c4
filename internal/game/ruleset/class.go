// Package ruleset defines the playable classes and their abilities.
package ruleset

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Attributes are a character's four base attributes.
type Attributes struct {
	Focus       int `yaml:"focus" json:"focus"`
	Creativity  int `yaml:"creativity" json:"creativity"`
	Persistence int `yaml:"persistence" json:"persistence"`
	Technique   int `yaml:"technique" json:"technique"`
}

// Multipliers scale a class's derived health, mana, attack, and defense.
type Multipliers struct {
	Health  float64 `yaml:"health"`
	Mana    float64 `yaml:"mana"`
	Attack  float64 `yaml:"attack"`
	Defense float64 `yaml:"defense"`
}

// NeutralMultipliers applies to characters whose class is not in the catalog.
var NeutralMultipliers = Multipliers{Health: 1, Mana: 1, Attack: 1, Defense: 1}

// Class defines a playable character class.
//
// Precondition: Key and Name must be non-empty after loading.
type Class struct {
	Key         string      `yaml:"key"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	BaseStats   Attributes  `yaml:"base_stats"`
	Multipliers Multipliers `yaml:"multipliers"`
	Abilities   []Ability   `yaml:"abilities"`
}

// Validate checks that the class satisfies its invariants.
func (c Class) Validate() error {
	var errs []error
	if c.Key == "" {
		errs = append(errs, errors.New("key must not be empty"))
	}
	if c.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	m := c.Multipliers
	for name, v := range map[string]float64{"health": m.Health, "mana": m.Mana, "attack": m.Attack, "defense": m.Defense} {
		if v < 0.8 || v > 1.2 {
			errs = append(errs, fmt.Errorf("multipliers.%s must be within 0.8-1.2, got %v", name, v))
		}
	}
	b := c.BaseStats
	if b.Focus < 0 || b.Creativity < 0 || b.Persistence < 0 || b.Technique < 0 {
		errs = append(errs, errors.New("base_stats must not be negative"))
	}
	seen := make(map[string]bool)
	for _, a := range c.Abilities {
		if seen[a.Name] {
			errs = append(errs, fmt.Errorf("duplicate ability %q", a.Name))
		}
		seen[a.Name] = true
		if err := a.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("class %q: %w", c.Key, errors.Join(errs...))
	}
	return nil
}

// Registry indexes classes by key.
type Registry struct {
	classes map[string]Class
}

// LoadClasses parses a classes catalog document of the form {classes: [...]}.
//
// Postcondition: returns a Registry of validated classes or a non-nil error.
func LoadClasses(data []byte) (*Registry, error) {
	var doc struct {
		Classes []Class `yaml:"classes"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("ruleset: parsing classes: %w", err)
	}
	reg := &Registry{classes: make(map[string]Class, len(doc.Classes))}
	for _, c := range doc.Classes {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("ruleset: %w", err)
		}
		if _, dup := reg.classes[c.Key]; dup {
			return nil, fmt.Errorf("ruleset: class %q defined twice", c.Key)
		}
		reg.classes[c.Key] = c
	}
	return reg, nil
}

// Class returns the class for key and whether it exists.
func (r *Registry) Class(key string) (Class, bool) {
	if r == nil {
		return Class{}, false
	}
	c, ok := r.classes[key]
	return c, ok
}

// Multipliers returns the class multipliers for key, or NeutralMultipliers
// when the class is unknown.
func (r *Registry) Multipliers(key string) Multipliers {
	if c, ok := r.Class(key); ok {
		return c.Multipliers
	}
	return NeutralMultipliers
}

// Keys returns all class keys sorted alphabetically.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.classes))
	for k := range r.classes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Abilities returns the abilities of class key unlocked at level.
func (r *Registry) Abilities(key string, level int) []Ability {
	c, ok := r.Class(key)
	if !ok {
		return nil
	}
	var out []Ability
	for _, a := range c.Abilities {
		if level >= a.Level {
			out = append(out, a)
		}
	}
	return out
}

// Ability returns the named ability if class key has unlocked it at level.
func (r *Registry) Ability(key string, level int, name string) (Ability, bool) {
	for _, a := range r.Abilities(key, level) {
		if a.Name == name {
			return a, true
		}
	}
	return Ability{}, false
}
