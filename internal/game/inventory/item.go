// Package inventory defines the equipment catalog, equipped slots, and the
// owned item list a character carries.
package inventory

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Rarity orders items from most to least common.
type Rarity int

const (
	Common Rarity = iota
	Uncommon
	Rare
	VeryRare
	Legendary
)

var rarityNames = [...]string{"common", "uncommon", "rare", "very-rare", "legendary"}

// Rarities lists every rarity from rarest to most common.
func Rarities() []Rarity {
	return []Rarity{Legendary, VeryRare, Rare, Uncommon, Common}
}

func (r Rarity) String() string {
	if r < Common || r > Legendary {
		return fmt.Sprintf("rarity(%d)", int(r))
	}
	return rarityNames[r]
}

// ParseRarity converts a catalog rarity name into a Rarity.
func ParseRarity(s string) (Rarity, error) {
	for i, n := range rarityNames {
		if n == s {
			return Rarity(i), nil
		}
	}
	return 0, fmt.Errorf("unknown rarity %q", s)
}

// UnmarshalYAML decodes rarity names such as "very-rare".
func (r *Rarity) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseRarity(node.Value)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MarshalYAML encodes the rarity by name.
func (r Rarity) MarshalYAML() (any, error) {
	return r.String(), nil
}

// MarshalText encodes the rarity by name for JSON save records.
func (r Rarity) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a rarity name from a JSON save record.
func (r *Rarity) UnmarshalText(b []byte) error {
	parsed, err := ParseRarity(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Slot names an equipment slot. Every catalog item fits exactly one slot.
type Slot string

const (
	SlotWeapon    Slot = "weapon"
	SlotArmor     Slot = "armor"
	SlotAccessory Slot = "accessory"
)

// Slots lists the equipment slots in display order.
func Slots() []Slot {
	return []Slot{SlotWeapon, SlotArmor, SlotAccessory}
}

func (s Slot) valid() bool {
	return s == SlotWeapon || s == SlotArmor || s == SlotAccessory
}

// Bonuses is the sparse set of stat bonuses an item grants when equipped.
type Bonuses struct {
	Attack     int     `yaml:"attack" json:"attack,omitempty"`
	Defense    int     `yaml:"defense" json:"defense,omitempty"`
	Health     int     `yaml:"health" json:"health,omitempty"`
	Mana       int     `yaml:"mana" json:"mana,omitempty"`
	CritChance float64 `yaml:"crit_chance" json:"critChance,omitempty"`
}

// Add returns the field-wise sum of b and o.
func (b Bonuses) Add(o Bonuses) Bonuses {
	return Bonuses{
		Attack:     b.Attack + o.Attack,
		Defense:    b.Defense + o.Defense,
		Health:     b.Health + o.Health,
		Mana:       b.Mana + o.Mana,
		CritChance: b.CritChance + o.CritChance,
	}
}

// Item is a catalog entry.
type Item struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description,omitempty"`
	Rarity      Rarity  `yaml:"rarity" json:"rarity"`
	Slot        Slot    `yaml:"slot" json:"slot"`
	Bonuses     Bonuses `yaml:"bonuses" json:"bonuses"`
	// Cost is non-zero for store-only equipment, which never drops as loot.
	Cost int `yaml:"cost" json:"-"`
}

// StoreOnly reports whether the item is sold rather than dropped.
func (it Item) StoreOnly() bool { return it.Cost > 0 }

// Validate checks that the Item satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (it Item) Validate() error {
	var errs []error
	if it.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if it.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !it.Slot.valid() {
		errs = append(errs, fmt.Errorf("slot must be one of weapon, armor, accessory; got %q", it.Slot))
	}
	b := it.Bonuses
	if b.Attack < 0 || b.Defense < 0 || b.Health < 0 || b.Mana < 0 || b.CritChance < 0 {
		errs = append(errs, errors.New("bonuses must not be negative"))
	}
	if it.Cost < 0 {
		errs = append(errs, errors.New("cost must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %q: %w", it.ID, errors.Join(errs...))
	}
	return nil
}

// LoadItems parses an items catalog document of the form {items: [...]}.
//
// Postcondition: returns every item, each validated, or the first error.
func LoadItems(data []byte) ([]Item, error) {
	var doc struct {
		Items []Item `yaml:"items"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("inventory: parsing items: %w", err)
	}
	for _, it := range doc.Items {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("inventory: %w", err)
		}
	}
	return doc.Items, nil
}
