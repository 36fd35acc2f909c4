package character

import (
	"github.com/cory-johannsen/inkquest/internal/game/inventory"
	"github.com/cory-johannsen/inkquest/internal/game/stats"
)

// Equip moves an owned item into its slot. Health and mana are clamped to
// the new maximums in case the swap lowered them.
//
// Postcondition: returns an updated copy; ch is not modified.
func Equip(ch *Character, instanceID string, m stats.Model) (*Character, error) {
	eq, bp, err := inventory.Equip(ch.Equipment, ch.Inventory, instanceID, m.Items)
	if err != nil {
		return nil, err
	}
	out := ch.Clone()
	out.Equipment = eq
	out.Inventory = bp
	out.Clamp(out.Stats(m))
	return out, nil
}

// Unequip returns the item in slot to the inventory.
//
// Postcondition: returns an updated copy; ch is not modified.
func Unequip(ch *Character, slot inventory.Slot, m stats.Model) (*Character, error) {
	eq, bp, err := inventory.Unequip(ch.Equipment, ch.Inventory, slot, m.Items)
	if err != nil {
		return nil, err
	}
	out := ch.Clone()
	out.Equipment = eq
	out.Inventory = bp
	out.Clamp(out.Stats(m))
	return out, nil
}
