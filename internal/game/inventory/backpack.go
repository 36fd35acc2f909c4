package inventory

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrItemNotOwned is returned when an instance ID is not in the backpack.
var ErrItemNotOwned = errors.New("inventory: item not owned")

// ErrSlotEmpty is returned when unequipping an empty slot.
var ErrSlotEmpty = errors.New("inventory: slot is empty")

// Instance is an owned copy of a catalog item. Duplicate catalog items
// coexist because each copy carries its own InstanceID.
type Instance struct {
	Item
	InstanceID string `json:"instanceId"`
}

// NewInstance returns a fresh owned copy of it.
//
// Postcondition: InstanceID is a new random UUID.
func NewInstance(it Item) Instance {
	return Instance{Item: it, InstanceID: uuid.NewString()}
}

// Backpack is the ordered list of owned, unequipped items.
type Backpack []Instance

// Add returns a copy of b with inst appended.
func (b Backpack) Add(inst Instance) Backpack {
	out := make(Backpack, len(b), len(b)+1)
	copy(out, b)
	return append(out, inst)
}

// Find returns the instance with the given ID.
func (b Backpack) Find(instanceID string) (Instance, bool) {
	for _, inst := range b {
		if inst.InstanceID == instanceID {
			return inst, true
		}
	}
	return Instance{}, false
}

// Remove returns a copy of b without the instance, preserving order.
func (b Backpack) Remove(instanceID string) (Backpack, error) {
	for i, inst := range b {
		if inst.InstanceID == instanceID {
			out := make(Backpack, 0, len(b)-1)
			out = append(out, b[:i]...)
			return append(out, b[i+1:]...), nil
		}
	}
	return b, fmt.Errorf("%w: %s", ErrItemNotOwned, instanceID)
}

// Clone returns an independent copy of b.
func (b Backpack) Clone() Backpack {
	if b == nil {
		return nil
	}
	out := make(Backpack, len(b))
	copy(out, b)
	return out
}

// Equip moves the instance from the backpack into its slot. Any item already
// in that slot returns to the backpack as a new instance.
//
// Postcondition: on success the equipped instance is no longer in the backpack.
func Equip(e Equipment, b Backpack, instanceID string, reg *Registry) (Equipment, Backpack, error) {
	inst, ok := b.Find(instanceID)
	if !ok {
		return e, b, fmt.Errorf("%w: %s", ErrItemNotOwned, instanceID)
	}
	rest, err := b.Remove(instanceID)
	if err != nil {
		return e, b, err
	}
	if prev := e.Get(inst.Slot); prev != "" {
		if it, ok := reg.Lookup(prev); ok {
			rest = rest.Add(NewInstance(it))
		}
	}
	return e.With(inst.Slot, inst.ID), rest, nil
}

// Unequip empties slot and returns its item to the backpack.
func Unequip(e Equipment, b Backpack, slot Slot, reg *Registry) (Equipment, Backpack, error) {
	id := e.Get(slot)
	if id == "" {
		return e, b, fmt.Errorf("%w: %s", ErrSlotEmpty, slot)
	}
	it, ok := reg.Lookup(id)
	if !ok {
		// Unknown catalog entries are dropped rather than kept half-resolved.
		return e.With(slot, ""), b, nil
	}
	return e.With(slot, ""), b.Add(NewInstance(it)), nil
}
