package inventory_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/inkquest/content"
	"github.com/cory-johannsen/inkquest/internal/game/inventory"
)

func TestItem_Validate_RejectsEmptyID(t *testing.T) {
	it := inventory.Item{Name: "Quill", Slot: inventory.SlotWeapon}
	if err := it.Validate(); err == nil {
		t.Fatal("expected error for empty ID, got nil")
	}
}

func TestItem_Validate_RejectsUnknownSlot(t *testing.T) {
	it := inventory.Item{ID: "q", Name: "Quill", Slot: "boots"}
	if err := it.Validate(); err == nil {
		t.Fatal("expected error for unknown slot, got nil")
	}
}

func TestItem_Validate_RejectsNegativeBonus(t *testing.T) {
	it := inventory.Item{ID: "q", Name: "Quill", Slot: inventory.SlotWeapon, Bonuses: inventory.Bonuses{Attack: -1}}
	if err := it.Validate(); err == nil {
		t.Fatal("expected error for negative bonus, got nil")
	}
}

func TestItem_Validate_AcceptsMinimal(t *testing.T) {
	it := inventory.Item{ID: "q", Name: "Quill", Slot: inventory.SlotWeapon}
	if err := it.Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	assert.False(t, it.StoreOnly())
	it.Cost = 100
	assert.True(t, it.StoreOnly())
}

func TestRarity_RoundTripsByName(t *testing.T) {
	for _, r := range inventory.Rarities() {
		parsed, err := inventory.ParseRarity(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}
	_, err := inventory.ParseRarity("mythic")
	assert.Error(t, err)
	assert.Equal(t, inventory.Legendary, inventory.Rarities()[0])
}

func TestInstance_JSONUsesRarityName(t *testing.T) {
	inst := inventory.NewInstance(inventory.Item{ID: "q", Name: "Quill", Rarity: inventory.VeryRare, Slot: inventory.SlotWeapon, Cost: 40})
	data, err := json.Marshal(inst)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rarity":"very-rare"`)
	assert.NotContains(t, string(data), "Cost")

	var back inventory.Instance
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, inst.InstanceID, back.InstanceID)
	assert.Equal(t, inventory.VeryRare, back.Rarity)
}

func TestLoadItems_Content(t *testing.T) {
	data, err := content.FS.ReadFile("items.yaml")
	require.NoError(t, err)
	items, err := inventory.LoadItems(data)
	require.NoError(t, err)
	require.NotEmpty(t, items)

	reg := inventory.NewRegistry()
	for _, it := range items {
		require.NoError(t, reg.Register(it))
	}
	phoenix, ok := reg.Lookup("quill_phoenix")
	require.True(t, ok)
	assert.Equal(t, inventory.Rare, phoenix.Rarity)
	assert.Equal(t, inventory.Bonuses{Attack: 20, CritChance: 5}, phoenix.Bonuses)
	for _, it := range items {
		assert.False(t, it.StoreOnly(), it.ID)
	}
}

func TestLoadItems_RejectsUnknownField(t *testing.T) {
	_, err := inventory.LoadItems([]byte("items:\n  - {id: q, name: Q, slot: weapon, weight: 2}\n"))
	assert.Error(t, err)
}

func TestRegistry_RejectsDuplicate(t *testing.T) {
	reg := inventory.NewRegistry()
	require.NoError(t, reg.Register(inventory.Item{ID: "q", Name: "Q", Slot: inventory.SlotWeapon}))
	assert.Error(t, reg.Register(inventory.Item{ID: "q", Name: "Q2", Slot: inventory.SlotArmor}))
	assert.Len(t, reg.All(), 1)
}

func TestRegistry_DroppableExcludesStoreItems(t *testing.T) {
	reg := inventory.NewRegistry()
	require.NoError(t, reg.Register(inventory.Item{ID: "a", Name: "A", Slot: inventory.SlotWeapon, Rarity: inventory.Rare}))
	require.NoError(t, reg.Register(inventory.Item{ID: "b", Name: "B", Slot: inventory.SlotWeapon, Rarity: inventory.Rare, Cost: 500}))
	require.NoError(t, reg.Register(inventory.Item{ID: "c", Name: "C", Slot: inventory.SlotArmor, Rarity: inventory.Common}))

	got := reg.Droppable(inventory.Rare)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
	assert.Empty(t, reg.Droppable(inventory.Legendary))
}

func TestBonuses_AddIsCommutative(t *testing.T) {
	gen := rapid.Custom(func(t *rapid.T) inventory.Bonuses {
		return inventory.Bonuses{
			Attack:  rapid.IntRange(0, 100).Draw(t, "attack"),
			Defense: rapid.IntRange(0, 100).Draw(t, "defense"),
			Health:  rapid.IntRange(0, 100).Draw(t, "health"),
			Mana:    rapid.IntRange(0, 100).Draw(t, "mana"),
		}
	})
	rapid.Check(t, func(rt *rapid.T) {
		a := gen.Draw(rt, "a")
		b := gen.Draw(rt, "b")
		if a.Add(b) != b.Add(a) {
			rt.Fatalf("Add not commutative for %+v and %+v", a, b)
		}
	})
}

func TestFormatInkDrops(t *testing.T) {
	assert.Equal(t, "0 Ink Drops", inventory.FormatInkDrops(0))
	assert.Equal(t, "1 Ink Drop", inventory.FormatInkDrops(1))
	assert.Equal(t, "999 Ink Drops", inventory.FormatInkDrops(999))
	assert.Equal(t, "1,250 Ink Drops", inventory.FormatInkDrops(1250))
	assert.Equal(t, "1,000,000 Ink Drops", inventory.FormatInkDrops(1000000))
	assert.Equal(t, "-5,000 Ink Drops", inventory.FormatInkDrops(-5000))
}
