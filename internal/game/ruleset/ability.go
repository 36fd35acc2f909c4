package ruleset

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Target selects which combatant a buff is placed on.
type Target string

const (
	TargetSelf  Target = "self"
	TargetEnemy Target = "enemy"
)

// Effect is the closed set of things an ability can do. The combat resolver
// switches over the concrete types below.
type Effect interface {
	effect()
}

// Damage strikes Hits times with the standard damage formula scaled by Multiplier.
type Damage struct {
	Multiplier float64
	Hits       int
}

// Heal restores Fraction of the caster's max health.
type Heal struct {
	Fraction float64
}

// ManaRestore restores a fixed amount of mana.
type ManaRestore struct {
	Amount int
}

// Buff places a timed condition on Target. Magnitude and duration come from
// the condition catalog.
type Buff struct {
	Condition string
	Target    Target
}

func (Damage) effect()      {}
func (Heal) effect()        {}
func (ManaRestore) effect() {}
func (Buff) effect()        {}

// Ability is a class skill unlocked at Level.
type Ability struct {
	Name        string
	Level       int
	ManaCost    int
	Cooldown    int
	Description string
	Effect      Effect
}

type effectDoc struct {
	Kind       string  `yaml:"kind"`
	Multiplier float64 `yaml:"multiplier"`
	Hits       int     `yaml:"hits"`
	Fraction   float64 `yaml:"fraction"`
	Amount     int     `yaml:"amount"`
	Condition  string  `yaml:"condition"`
	Target     Target  `yaml:"target"`
}

type abilityDoc struct {
	Name        string    `yaml:"name"`
	Level       int       `yaml:"level"`
	ManaCost    int       `yaml:"mana_cost"`
	Cooldown    int       `yaml:"cooldown"`
	Description string    `yaml:"description"`
	Effect      effectDoc `yaml:"effect"`
}

// UnmarshalYAML decodes an ability and its tagged effect.
func (a *Ability) UnmarshalYAML(node *yaml.Node) error {
	var raw abilityDoc
	if err := node.Decode(&raw); err != nil {
		return err
	}
	var eff Effect
	switch raw.Effect.Kind {
	case "damage":
		hits := raw.Effect.Hits
		if hits == 0 {
			hits = 1
		}
		eff = Damage{Multiplier: raw.Effect.Multiplier, Hits: hits}
	case "heal":
		eff = Heal{Fraction: raw.Effect.Fraction}
	case "mana_restore":
		eff = ManaRestore{Amount: raw.Effect.Amount}
	case "buff":
		eff = Buff{Condition: raw.Effect.Condition, Target: raw.Effect.Target}
	default:
		return fmt.Errorf("ability %q: unknown effect kind %q", raw.Name, raw.Effect.Kind)
	}
	*a = Ability{
		Name:        raw.Name,
		Level:       raw.Level,
		ManaCost:    raw.ManaCost,
		Cooldown:    raw.Cooldown,
		Description: raw.Description,
		Effect:      eff,
	}
	return nil
}

// Validate checks that the ability satisfies its invariants.
func (a Ability) Validate() error {
	var errs []error
	if a.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if a.Level < 1 {
		errs = append(errs, errors.New("level must be >= 1"))
	}
	if a.ManaCost < 0 || a.Cooldown < 0 {
		errs = append(errs, errors.New("mana_cost and cooldown must not be negative"))
	}
	switch e := a.Effect.(type) {
	case Damage:
		if e.Multiplier <= 0 || e.Hits < 1 {
			errs = append(errs, errors.New("damage effect needs multiplier > 0 and hits >= 1"))
		}
	case Heal:
		if e.Fraction <= 0 || e.Fraction > 1 {
			errs = append(errs, errors.New("heal fraction must be in (0, 1]"))
		}
	case ManaRestore:
		if e.Amount <= 0 {
			errs = append(errs, errors.New("mana_restore amount must be > 0"))
		}
	case Buff:
		if e.Condition == "" {
			errs = append(errs, errors.New("buff condition must not be empty"))
		}
		if e.Target != TargetSelf && e.Target != TargetEnemy {
			errs = append(errs, fmt.Errorf("buff target must be self or enemy, got %q", e.Target))
		}
	case nil:
		errs = append(errs, errors.New("effect must be set"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("ability %q: %w", a.Name, errors.Join(errs...))
	}
	return nil
}
