package inventory

// Equipment maps each slot to the catalog ID of the equipped item.
// An empty string means the slot is empty.
type Equipment struct {
	Weapon    string `json:"weapon,omitempty"`
	Armor     string `json:"armor,omitempty"`
	Accessory string `json:"accessory,omitempty"`
}

// Get returns the item ID in slot.
func (e Equipment) Get(slot Slot) string {
	switch slot {
	case SlotWeapon:
		return e.Weapon
	case SlotArmor:
		return e.Armor
	case SlotAccessory:
		return e.Accessory
	}
	return ""
}

// With returns a copy of e with slot set to id.
func (e Equipment) With(slot Slot, id string) Equipment {
	switch slot {
	case SlotWeapon:
		e.Weapon = id
	case SlotArmor:
		e.Armor = id
	case SlotAccessory:
		e.Accessory = id
	}
	return e
}

// ResolveBonuses sums the bonuses of every equipped item. Empty slots and
// IDs missing from reg contribute nothing.
func ResolveBonuses(e Equipment, reg *Registry) Bonuses {
	var total Bonuses
	if reg == nil {
		return total
	}
	for _, slot := range Slots() {
		id := e.Get(slot)
		if id == "" {
			continue
		}
		if it, ok := reg.Lookup(id); ok {
			total = total.Add(it.Bonuses)
		}
	}
	return total
}
