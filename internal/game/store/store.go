// Package store sells equipment, consumables, and cosmetics for ink drops.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/inkquest/internal/game/character"
	"github.com/cory-johannsen/inkquest/internal/game/inventory"
	"github.com/cory-johannsen/inkquest/internal/game/stats"
)

var (
	// ErrUnknownOffer is returned when purchasing an ID the store does not sell.
	ErrUnknownOffer = errors.New("store: unknown offer")
	// ErrInsufficientFunds is returned when the character cannot afford an offer.
	ErrInsufficientFunds = errors.New("store: insufficient ink drops")
	// ErrAlreadyOwned is returned when buying a cosmetic a second time.
	ErrAlreadyOwned = errors.New("store: cosmetic already owned")
)

// ConsumableEffect names what a consumable does when bought.
type ConsumableEffect string

const (
	// RestoreMana adds Value mana immediately, clamped to max mana.
	RestoreMana ConsumableEffect = "restore_mana"
	// XPBoost multiplies the next writing session's XP by Value.
	XPBoost ConsumableEffect = "xp_boost"
)

// Consumable is a one-shot purchase applied at checkout.
type Consumable struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Cost        int              `yaml:"cost"`
	Description string           `yaml:"description"`
	Effect      ConsumableEffect `yaml:"effect"`
	Value       float64          `yaml:"value"`
}

// Cosmetic is a profile decoration with no gameplay effect.
type Cosmetic struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Cost        int    `yaml:"cost"`
	Description string `yaml:"description"`
	Kind        string `yaml:"kind"`
}

// Kind classifies a store offer.
type Kind string

const (
	KindEquipment  Kind = "equipment"
	KindConsumable Kind = "consumable"
	KindCosmetic   Kind = "cosmetic"
)

// Offer is the display view of anything the store sells.
type Offer struct {
	ID          string
	Name        string
	Description string
	Cost        int
	Kind        Kind
}

// Catalog is the store's stock.
type Catalog struct {
	Equipment   []inventory.Item `yaml:"equipment"`
	Consumables []Consumable     `yaml:"consumables"`
	Cosmetics   []Cosmetic       `yaml:"cosmetics"`
}

// Load parses and validates a store catalog document.
func Load(data []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("store: parsing catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks every offer, collecting all violations.
func (c *Catalog) Validate() error {
	var errs []error
	seen := make(map[string]bool)
	dup := func(id string) {
		if seen[id] {
			errs = append(errs, fmt.Errorf("offer %q listed twice", id))
		}
		seen[id] = true
	}
	for _, it := range c.Equipment {
		dup(it.ID)
		if err := it.Validate(); err != nil {
			errs = append(errs, err)
		}
		if it.Cost <= 0 {
			errs = append(errs, fmt.Errorf("equipment %q: cost must be > 0", it.ID))
		}
	}
	for _, cs := range c.Consumables {
		dup(cs.ID)
		if cs.ID == "" || cs.Cost <= 0 || cs.Value <= 0 {
			errs = append(errs, fmt.Errorf("consumable %q: id, cost > 0 and value > 0 are required", cs.ID))
		}
		if cs.Effect != RestoreMana && cs.Effect != XPBoost {
			errs = append(errs, fmt.Errorf("consumable %q: unknown effect %q", cs.ID, cs.Effect))
		}
	}
	for _, cm := range c.Cosmetics {
		dup(cm.ID)
		if cm.ID == "" || cm.Cost <= 0 {
			errs = append(errs, fmt.Errorf("cosmetic %q: id and cost > 0 are required", cm.ID))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("store: %w", errors.Join(errs...))
	}
	return nil
}

// Offers lists the stock in display order: equipment, consumables, cosmetics.
func (c *Catalog) Offers() []Offer {
	var out []Offer
	for _, it := range c.Equipment {
		out = append(out, Offer{ID: it.ID, Name: it.Name, Description: it.Description, Cost: it.Cost, Kind: KindEquipment})
	}
	for _, cs := range c.Consumables {
		out = append(out, Offer{ID: cs.ID, Name: cs.Name, Description: cs.Description, Cost: cs.Cost, Kind: KindConsumable})
	}
	for _, cm := range c.Cosmetics {
		out = append(out, Offer{ID: cm.ID, Name: cm.Name, Description: cm.Description, Cost: cm.Cost, Kind: KindCosmetic})
	}
	return out
}

// Receipt describes a completed purchase.
type Receipt struct {
	Offer Offer
	// Item is set for equipment purchases.
	Item *inventory.Instance
}

// Purchase buys the offer with id for ch. Equipment goes to the inventory,
// consumables apply immediately, and cosmetics are recorded on the profile.
//
// Postcondition: on success ch is not modified and the returned copy has
// InkDrops reduced and Counters.InkDropsSpent increased by the offer cost.
func Purchase(ch *character.Character, id string, c *Catalog, m stats.Model) (*character.Character, Receipt, error) {
	var offer *Offer
	for _, o := range c.Offers() {
		if o.ID == id {
			offer = &o
			break
		}
	}
	if offer == nil {
		return nil, Receipt{}, fmt.Errorf("%w: %q", ErrUnknownOffer, id)
	}
	if ch.InkDrops < offer.Cost {
		return nil, Receipt{}, fmt.Errorf("%w: %s costs %d, have %d", ErrInsufficientFunds, offer.Name, offer.Cost, ch.InkDrops)
	}

	out := ch.Clone()
	rec := Receipt{Offer: *offer}
	switch offer.Kind {
	case KindEquipment:
		idx := slices.IndexFunc(c.Equipment, func(it inventory.Item) bool { return it.ID == id })
		inst := inventory.NewInstance(c.Equipment[idx])
		out.Inventory = out.Inventory.Add(inst)
		out.Counters.EquipmentFound++
		rec.Item = &inst
	case KindConsumable:
		idx := slices.IndexFunc(c.Consumables, func(cs Consumable) bool { return cs.ID == id })
		cs := c.Consumables[idx]
		switch cs.Effect {
		case RestoreMana:
			out.Mana += int(math.Floor(cs.Value))
			out.Clamp(out.Stats(m))
		case XPBoost:
			out.XPBoost = cs.Value
		}
	case KindCosmetic:
		if slices.Contains(out.Cosmetics, id) {
			return nil, Receipt{}, fmt.Errorf("%w: %q", ErrAlreadyOwned, id)
		}
		out.Cosmetics = append(out.Cosmetics, id)
	}
	out.InkDrops -= offer.Cost
	out.Counters.InkDropsSpent += offer.Cost
	return out, rec, nil
}
