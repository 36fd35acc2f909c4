package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cory-johannsen/inkquest/internal/game/character"
	"github.com/cory-johannsen/inkquest/internal/storage"
)

// CharacterRepository implements storage.CharacterStore.
type CharacterRepository struct {
	db *sql.DB
}

var _ storage.CharacterStore = (*CharacterRepository)(nil)

const characterColumns = `id, account_id, name, class, level, xp, xp_to_next,
	health, mana, last_regen_time, ink_drops, luck_stat, available_stat_points, xp_boost,
	attributes, equipment, inventory, cosmetics, skill_xp, counters, created_at, updated_at`

// Create inserts c and returns a copy with ID and timestamps set.
//
// Precondition: c.AccountID must reference an existing account; c.Name must be non-empty.
// Postcondition: Returns storage.ErrCharacterNameTaken on a duplicate name for the account.
func (r *CharacterRepository) Create(ctx context.Context, c *character.Character) (*character.Character, error) {
	blobs, err := storage.EncodeBlobs(c)
	if err != nil {
		return nil, err
	}
	now := fromMillis(toMillis(time.Now().UTC()))
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO characters
			(account_id, name, class, level, xp, xp_to_next, health, mana, last_regen_time,
			 ink_drops, luck_stat, available_stat_points, xp_boost,
			 attributes, equipment, inventory, cosmetics, skill_xp, counters, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		c.AccountID, c.Name, c.Class, c.Level, c.XP, c.XPToNext, c.Health, c.Mana, toMillis(c.LastRegenTime),
		c.InkDrops, c.LuckStat, c.AvailableStatPoints, c.XPBoost,
		string(blobs.Attributes), string(blobs.Equipment), string(blobs.Inventory),
		string(blobs.Cosmetics), string(blobs.SkillXP), string(blobs.Counters),
		toMillis(now), toMillis(now),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, storage.ErrCharacterNameTaken
		}
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading character id: %w", err)
	}
	out := c.Clone()
	out.ID = id
	out.CreatedAt = now
	out.UpdatedAt = now
	return out, nil
}

// Get retrieves a character by its primary key.
//
// Postcondition: Returns the Character or storage.ErrCharacterNotFound.
func (r *CharacterRepository) Get(ctx context.Context, id int64) (*character.Character, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = ?`, id)
	c, err := scanCharacter(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	return c, nil
}

// ListByAccount returns all characters for the account, oldest first.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterRepository) ListByAccount(ctx context.Context, accountID int64) ([]*character.Character, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE account_id = ? ORDER BY created_at ASC, id ASC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	chars := make([]*character.Character, 0)
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		chars = append(chars, c)
	}
	return chars, rows.Err()
}

// Save overwrites the mutable state of an existing character.
//
// Precondition: c.ID must be > 0.
// Postcondition: Returns storage.ErrCharacterNotFound if no row was updated.
func (r *CharacterRepository) Save(ctx context.Context, c *character.Character) error {
	blobs, err := storage.EncodeBlobs(c)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE characters SET
			level = ?, xp = ?, xp_to_next = ?, health = ?, mana = ?, last_regen_time = ?,
			ink_drops = ?, luck_stat = ?, available_stat_points = ?, xp_boost = ?,
			attributes = ?, equipment = ?, inventory = ?, cosmetics = ?, skill_xp = ?, counters = ?,
			updated_at = ?
		WHERE id = ?`,
		c.Level, c.XP, c.XPToNext, c.Health, c.Mana, toMillis(c.LastRegenTime),
		c.InkDrops, c.LuckStat, c.AvailableStatPoints, c.XPBoost,
		string(blobs.Attributes), string(blobs.Equipment), string(blobs.Inventory),
		string(blobs.Cosmetics), string(blobs.SkillXP), string(blobs.Counters),
		toMillis(time.Now().UTC()), c.ID,
	)
	if err != nil {
		return fmt.Errorf("saving character: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("saving character: %w", err)
	}
	if n == 0 {
		return storage.ErrCharacterNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCharacter(row rowScanner) (*character.Character, error) {
	var (
		c                          character.Character
		lastRegen, created, update int64
		attrs, equip, inv          string
		cosmetics, skills, counts  string
	)
	if err := row.Scan(
		&c.ID, &c.AccountID, &c.Name, &c.Class, &c.Level, &c.XP, &c.XPToNext,
		&c.Health, &c.Mana, &lastRegen, &c.InkDrops, &c.LuckStat, &c.AvailableStatPoints, &c.XPBoost,
		&attrs, &equip, &inv, &cosmetics, &skills, &counts, &created, &update,
	); err != nil {
		return nil, err
	}
	blobs := storage.Blobs{
		Attributes: []byte(attrs),
		Equipment:  []byte(equip),
		Inventory:  []byte(inv),
		Cosmetics:  []byte(cosmetics),
		SkillXP:    []byte(skills),
		Counters:   []byte(counts),
	}
	if err := storage.DecodeBlobs(blobs, &c); err != nil {
		return nil, err
	}
	c.LastRegenTime = fromMillis(lastRegen)
	c.CreatedAt = fromMillis(created)
	c.UpdatedAt = fromMillis(update)
	return &c, nil
}
