package storage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/inkquest/internal/game/character"
	"github.com/cory-johannsen/inkquest/internal/game/inventory"
	"github.com/cory-johannsen/inkquest/internal/game/ruleset"
	"github.com/cory-johannsen/inkquest/internal/storage"
)

func TestHashPassword(t *testing.T) {
	hash, err := storage.HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "secret123", hash)
	assert.True(t, storage.CheckPassword("secret123", hash))
	assert.False(t, storage.CheckPassword("wrong", hash))
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := storage.HashPassword("")
	assert.Error(t, err)
}

func TestPropertyHashAndCheck(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		password := rapid.StringMatching(`[a-zA-Z0-9!@#$%^&*]{1,32}`).Draw(t, "password")
		hash, err := storage.HashPassword(password)
		if err != nil {
			t.Fatalf("HashPassword failed: %v", err)
		}
		if !storage.CheckPassword(password, hash) {
			t.Fatalf("CheckPassword failed for password %q", password)
		}
	})
}

func sampleCharacter() *character.Character {
	return &character.Character{
		Name:       "Ada",
		Class:      "wordsmith",
		Level:      4,
		Attributes: &ruleset.Attributes{Focus: 8, Creativity: 10, Persistence: 8, Technique: 13},
		Equipment:  inventory.Equipment{Weapon: "quill_of_insight"},
		Inventory: inventory.Backpack{{
			Item:       inventory.Item{ID: "pen_fountain", Name: "Fountain Pen", Rarity: inventory.Uncommon, Slot: inventory.SlotWeapon, Bonuses: inventory.Bonuses{Attack: 4}},
			InstanceID: "11111111-1111-1111-1111-111111111111",
		}},
		Cosmetics:     []string{"golden_quill"},
		SkillXP:       map[string]int{"fiction": 120},
		Counters:      character.Counters{MonstersDefeated: 3, EquipmentFound: 1},
		LastRegenTime: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBlobs_RoundTrip(t *testing.T) {
	in := sampleCharacter()
	blobs, err := storage.EncodeBlobs(in)
	require.NoError(t, err)

	var out character.Character
	require.NoError(t, storage.DecodeBlobs(blobs, &out))
	assert.Equal(t, in.Attributes, out.Attributes)
	assert.Equal(t, in.Equipment, out.Equipment)
	assert.Equal(t, in.Inventory, out.Inventory)
	assert.Equal(t, in.Cosmetics, out.Cosmetics)
	assert.Equal(t, in.SkillXP, out.SkillXP)
	assert.Equal(t, in.Counters, out.Counters)
}

func TestBlobs_NilCollectionsEncodeEmpty(t *testing.T) {
	blobs, err := storage.EncodeBlobs(&character.Character{Name: "Bare"})
	require.NoError(t, err)
	assert.JSONEq(t, "null", string(blobs.Attributes))
	assert.JSONEq(t, "[]", string(blobs.Inventory))
	assert.JSONEq(t, "[]", string(blobs.Cosmetics))
	assert.JSONEq(t, "{}", string(blobs.SkillXP))

	var out character.Character
	require.NoError(t, storage.DecodeBlobs(blobs, &out))
	assert.Nil(t, out.Attributes)
	assert.Empty(t, out.Inventory)
}

func TestBlobs_DecodeMalformed(t *testing.T) {
	blobs, err := storage.EncodeBlobs(sampleCharacter())
	require.NoError(t, err)
	blobs.Counters = []byte("{not json")
	var out character.Character
	assert.Error(t, storage.DecodeBlobs(blobs, &out))
}
