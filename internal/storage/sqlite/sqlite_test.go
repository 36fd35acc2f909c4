package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/inkquest/internal/game/catalog"
	"github.com/cory-johannsen/inkquest/internal/game/character"
	"github.com/cory-johannsen/inkquest/internal/game/inventory"
	"github.com/cory-johannsen/inkquest/internal/storage"
	"github.com/cory-johannsen/inkquest/internal/storage/sqlite"
)

var epoch = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func openDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "saves", "inkquest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newCharacter(t *testing.T, accountID int64, name string) *character.Character {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	ch, err := character.New(name, "chronicler", cat.Model(), epoch)
	require.NoError(t, err)
	ch.AccountID = accountID
	return ch
}

func setup(t *testing.T) (*sqlite.CharacterRepository, int64) {
	t.Helper()
	db := openDB(t)
	acct, err := db.Accounts().Create(context.Background(), "writer", "hunter22")
	require.NoError(t, err)
	return db.Characters(), acct.ID
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := sqlite.Open("")
	assert.Error(t, err)
}

func TestOpen_InMemory(t *testing.T) {
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inkquest.db")
	db, err := sqlite.Open(path)
	require.NoError(t, err)
	_, err = db.Accounts().Create(context.Background(), "writer", "hunter22")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = sqlite.Open(path)
	require.NoError(t, err)
	defer db.Close()
	acct, err := db.Accounts().Authenticate(context.Background(), "writer", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "writer", acct.Username)
}

func TestAccounts_CreateAndAuthenticate(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	acct, err := db.Accounts().Create(ctx, "writer", "hunter22")
	require.NoError(t, err)
	assert.Greater(t, acct.ID, int64(0))
	assert.NotEqual(t, "hunter22", acct.PasswordHash)

	got, err := db.Accounts().Authenticate(ctx, "WRITER", "hunter22")
	require.NoError(t, err, "usernames are case-insensitive")
	assert.Equal(t, acct.ID, got.ID)

	_, err = db.Accounts().Authenticate(ctx, "writer", "wrong")
	assert.ErrorIs(t, err, storage.ErrInvalidCredentials)
	_, err = db.Accounts().Authenticate(ctx, "nobody", "hunter22")
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)
}

func TestAccounts_Duplicate(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	_, err := db.Accounts().Create(ctx, "writer", "hunter22")
	require.NoError(t, err)
	_, err = db.Accounts().Create(ctx, "writer", "other")
	assert.ErrorIs(t, err, storage.ErrAccountExists)
}

func TestCharacters_CreateAndGet(t *testing.T) {
	repo, accountID := setup(t)
	ctx := context.Background()

	in := newCharacter(t, accountID, "Ada")
	created, err := repo.Create(ctx, in)
	require.NoError(t, err)
	assert.Greater(t, created.ID, int64(0))
	assert.Zero(t, in.ID, "input is not mutated")
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "chronicler", got.Class)
	assert.Equal(t, in.Attributes, got.Attributes)
	assert.Equal(t, in.Health, got.Health)
	assert.Equal(t, in.Mana, got.Mana)
	assert.Equal(t, 50, got.InkDrops)
	assert.True(t, epoch.Equal(got.LastRegenTime))
}

func TestCharacters_GetMissing(t *testing.T) {
	repo, _ := setup(t)
	_, err := repo.Get(context.Background(), 999)
	assert.ErrorIs(t, err, storage.ErrCharacterNotFound)
}

func TestCharacters_DuplicateName(t *testing.T) {
	repo, accountID := setup(t)
	ctx := context.Background()
	_, err := repo.Create(ctx, newCharacter(t, accountID, "Ada"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newCharacter(t, accountID, "Ada"))
	assert.ErrorIs(t, err, storage.ErrCharacterNameTaken)
}

func TestCharacters_ListByAccount(t *testing.T) {
	repo, accountID := setup(t)
	ctx := context.Background()
	for _, name := range []string{"Ada", "Grace", "Mary"} {
		_, err := repo.Create(ctx, newCharacter(t, accountID, name))
		require.NoError(t, err)
	}
	chars, err := repo.ListByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, chars, 3)
	assert.Equal(t, "Ada", chars[0].Name)
	assert.Equal(t, "Mary", chars[2].Name)

	none, err := repo.ListByAccount(ctx, accountID+1)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCharacters_SaveRoundTrip(t *testing.T) {
	repo, accountID := setup(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, newCharacter(t, accountID, "Ada"))
	require.NoError(t, err)

	created.Level = 5
	created.XP = 42
	created.Health = 12
	created.Mana = 3
	created.InkDrops = 777
	created.XPBoost = 1.5
	created.LastRegenTime = epoch.Add(90 * time.Minute)
	created.Equipment = inventory.Equipment{Armor: "vest_basic"}
	created.Inventory = created.Inventory.Add(inventory.Instance{
		Item:       inventory.Item{ID: "pen_fountain", Name: "Fountain Pen", Rarity: inventory.Uncommon, Slot: inventory.SlotWeapon},
		InstanceID: "22222222-2222-2222-2222-222222222222",
	})
	created.Cosmetics = []string{"golden_quill"}
	created.SkillXP = map[string]int{"poetry": 40}
	created.Counters.MonstersDefeated = 9
	require.NoError(t, repo.Save(ctx, created))

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Level)
	assert.Equal(t, 42, got.XP)
	assert.Equal(t, 12, got.Health)
	assert.Equal(t, 3, got.Mana)
	assert.Equal(t, 777, got.InkDrops)
	assert.InDelta(t, 1.5, got.XPBoost, 1e-9)
	assert.True(t, created.LastRegenTime.Equal(got.LastRegenTime))
	assert.Equal(t, created.Equipment, got.Equipment)
	assert.Equal(t, created.Inventory, got.Inventory)
	assert.Equal(t, created.Cosmetics, got.Cosmetics)
	assert.Equal(t, created.SkillXP, got.SkillXP)
	assert.Equal(t, 9, got.Counters.MonstersDefeated)
}

func TestCharacters_SaveZeroRegenTime(t *testing.T) {
	repo, accountID := setup(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, newCharacter(t, accountID, "Ada"))
	require.NoError(t, err)
	created.LastRegenTime = time.Time{}
	require.NoError(t, repo.Save(ctx, created))

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.LastRegenTime.IsZero())
}

func TestCharacters_SaveMissing(t *testing.T) {
	repo, accountID := setup(t)
	ch := newCharacter(t, accountID, "Ghost")
	ch.ID = 404
	assert.ErrorIs(t, repo.Save(context.Background(), ch), storage.ErrCharacterNotFound)
}

func TestPropertySaveRoundTripsResources(t *testing.T) {
	repo, accountID := setup(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, newCharacter(t, accountID, "Ada"))
	require.NoError(t, err)

	rapid.Check(t, func(rt *rapid.T) {
		created.Health = rapid.IntRange(0, 500).Draw(rt, "health")
		created.Mana = rapid.IntRange(0, 500).Draw(rt, "mana")
		created.InkDrops = rapid.IntRange(0, 1_000_000).Draw(rt, "ink")
		if err := repo.Save(ctx, created); err != nil {
			rt.Fatalf("save: %v", err)
		}
		got, err := repo.Get(ctx, created.ID)
		if err != nil {
			rt.Fatalf("get: %v", err)
		}
		if got.Health != created.Health || got.Mana != created.Mana || got.InkDrops != created.InkDrops {
			rt.Fatalf("round trip mismatch: got %d/%d/%d", got.Health, got.Mana, got.InkDrops)
		}
	})
}
