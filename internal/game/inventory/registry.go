package inventory

import "fmt"

// Registry holds every equippable item indexed by ID, including store-only
// equipment so that purchased items resolve like dropped ones.
type Registry struct {
	items map[string]Item
	order []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Item)}
}

// Register adds it to the registry.
//
// Postcondition: Lookup(it.ID) returns (it, true); returns error if it.ID is already registered.
func (r *Registry) Register(it Item) error {
	if _, exists := r.items[it.ID]; exists {
		return fmt.Errorf("inventory: Registry.Register: item ID %q already registered", it.ID)
	}
	r.items[it.ID] = it
	r.order = append(r.order, it.ID)
	return nil
}

// Lookup returns the Item for id and whether it was found.
func (r *Registry) Lookup(id string) (Item, bool) {
	it, ok := r.items[id]
	return it, ok
}

// All returns every registered item in registration order.
func (r *Registry) All() []Item {
	out := make([]Item, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out
}

// Droppable returns the non-store items of the given rarity in registration order.
func (r *Registry) Droppable(rarity Rarity) []Item {
	var out []Item
	for _, id := range r.order {
		it := r.items[id]
		if it.Rarity == rarity && !it.StoreOnly() {
			out = append(out, it)
		}
	}
	return out
}
