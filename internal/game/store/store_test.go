package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/inkquest/internal/game/catalog"
	"github.com/cory-johannsen/inkquest/internal/game/character"
	"github.com/cory-johannsen/inkquest/internal/game/store"
)

func setup(t *testing.T) (*catalog.Catalog, *character.Character) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	ch, err := character.New("Ada", "plotweaver", cat.Model(), time.Unix(0, 0))
	require.NoError(t, err)
	ch.InkDrops = 1000
	return cat, ch
}

func TestPurchase_Equipment(t *testing.T) {
	cat, ch := setup(t)
	out, rec, err := store.Purchase(ch, "store_quill_silver", cat.Store, cat.Model())
	require.NoError(t, err)

	assert.Equal(t, 850, out.InkDrops)
	assert.Equal(t, 150, out.Counters.InkDropsSpent)
	assert.Equal(t, 1, out.Counters.EquipmentFound)
	require.Len(t, out.Inventory, 1)
	require.NotNil(t, rec.Item)
	assert.Equal(t, rec.Item.InstanceID, out.Inventory[0].InstanceID)
	assert.Equal(t, 1000, ch.InkDrops, "input untouched")
}

func TestPurchase_RestoreManaClamps(t *testing.T) {
	cat, ch := setup(t)
	maxMana := ch.Stats(cat.Model()).MaxMana
	ch.Mana = maxMana - 10

	out, _, err := store.Purchase(ch, "coffee_strong", cat.Store, cat.Model())
	require.NoError(t, err)
	assert.Equal(t, maxMana, out.Mana)
	assert.Equal(t, 975, out.InkDrops)
}

func TestPurchase_XPBoost(t *testing.T) {
	cat, ch := setup(t)
	out, _, err := store.Purchase(ch, "inspiration_potion", cat.Store, cat.Model())
	require.NoError(t, err)
	assert.Equal(t, 1.5, out.XPBoost)
}

func TestPurchase_CosmeticOnce(t *testing.T) {
	cat, ch := setup(t)
	out, _, err := store.Purchase(ch, "desk_oak", cat.Store, cat.Model())
	require.NoError(t, err)
	assert.Equal(t, []string{"desk_oak"}, out.Cosmetics)

	_, _, err = store.Purchase(out, "desk_oak", cat.Store, cat.Model())
	assert.ErrorIs(t, err, store.ErrAlreadyOwned)
}

func TestPurchase_InsufficientFunds(t *testing.T) {
	cat, ch := setup(t)
	ch.InkDrops = 10
	_, _, err := store.Purchase(ch, "store_ring_luck", cat.Store, cat.Model())
	assert.ErrorIs(t, err, store.ErrInsufficientFunds)
}

func TestPurchase_UnknownOffer(t *testing.T) {
	cat, ch := setup(t)
	_, _, err := store.Purchase(ch, "dragon", cat.Store, cat.Model())
	assert.ErrorIs(t, err, store.ErrUnknownOffer)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]string{
		"free equipment": "equipment:\n  - { id: a, name: A, rarity: common, slot: weapon, cost: 0 }\n",
		"bad effect":     "consumables:\n  - { id: a, name: A, cost: 5, effect: teleport, value: 1 }\n",
		"duplicate":      "cosmetics:\n  - { id: a, name: A, cost: 5 }\n  - { id: a, name: B, cost: 6 }\n",
	}
	for name, doc := range cases {
		_, err := store.Load([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestOffers_Order(t *testing.T) {
	cat, _ := setup(t)
	offers := cat.Store.Offers()
	require.NotEmpty(t, offers)
	assert.Equal(t, store.KindEquipment, offers[0].Kind)
	assert.Equal(t, store.KindCosmetic, offers[len(offers)-1].Kind)
}
