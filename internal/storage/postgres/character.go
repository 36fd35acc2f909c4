package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/inkquest/internal/game/character"
	"github.com/cory-johannsen/inkquest/internal/storage"
)

// CharacterRepository implements storage.CharacterStore.
type CharacterRepository struct {
	db *pgxpool.Pool
}

var _ storage.CharacterStore = (*CharacterRepository)(nil)

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

const characterColumns = `id, account_id, name, class, level, xp, xp_to_next,
	health, mana, last_regen_time, ink_drops, luck_stat, available_stat_points, xp_boost,
	attributes, equipment, inventory, cosmetics, skill_xp, counters, created_at, updated_at`

// Create inserts a new character and returns it with ID and timestamps set.
//
// Precondition: c.AccountID must reference an existing account; c.Name must be non-empty.
// Postcondition: Returns the created character with ID set, or storage.ErrCharacterNameTaken on duplicate.
func (r *CharacterRepository) Create(ctx context.Context, c *character.Character) (*character.Character, error) {
	blobs, err := storage.EncodeBlobs(c)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO characters
			(account_id, name, class, level, xp, xp_to_next, health, mana, last_regen_time,
			 ink_drops, luck_stat, available_stat_points, xp_boost,
			 attributes, equipment, inventory, cosmetics, skill_xp, counters)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		RETURNING `+characterColumns,
		c.AccountID, c.Name, c.Class, c.Level, c.XP, c.XPToNext, c.Health, c.Mana, nullableTime(c.LastRegenTime),
		c.InkDrops, c.LuckStat, c.AvailableStatPoints, c.XPBoost,
		blobs.Attributes, blobs.Equipment, blobs.Inventory, blobs.Cosmetics, blobs.SkillXP, blobs.Counters,
	)
	out, err := scanCharacter(row)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, storage.ErrCharacterNameTaken
		}
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	return out, nil
}

// ListByAccount returns all characters for the given account ID, ordered by created_at.
//
// Precondition: accountID must be > 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterRepository) ListByAccount(ctx context.Context, accountID int64) ([]*character.Character, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE account_id = $1 ORDER BY created_at ASC, id ASC`,
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

// Get retrieves a character by its primary key.
//
// Precondition: id must be > 0.
// Postcondition: Returns the Character or storage.ErrCharacterNotFound.
func (r *CharacterRepository) Get(ctx context.Context, id int64) (*character.Character, error) {
	row := r.db.QueryRow(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = $1`, id)
	c, err := scanCharacter(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	return c, nil
}

// Save persists a character's mutable state after a command.
//
// Precondition: c.ID must be > 0.
// Postcondition: Returns nil on success, storage.ErrCharacterNotFound if no row updated.
func (r *CharacterRepository) Save(ctx context.Context, c *character.Character) error {
	blobs, err := storage.EncodeBlobs(c)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE characters SET
			level = $2, xp = $3, xp_to_next = $4, health = $5, mana = $6, last_regen_time = $7,
			ink_drops = $8, luck_stat = $9, available_stat_points = $10, xp_boost = $11,
			attributes = $12, equipment = $13, inventory = $14, cosmetics = $15, skill_xp = $16, counters = $17,
			updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.Level, c.XP, c.XPToNext, c.Health, c.Mana, nullableTime(c.LastRegenTime),
		c.InkDrops, c.LuckStat, c.AvailableStatPoints, c.XPBoost,
		blobs.Attributes, blobs.Equipment, blobs.Inventory, blobs.Cosmetics, blobs.SkillXP, blobs.Counters,
	)
	if err != nil {
		return fmt.Errorf("saving character state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrCharacterNotFound
	}
	return nil
}

// A zero last regen time is stored as NULL.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func scanCharacter(row pgx.Row) (*character.Character, error) {
	var (
		c         character.Character
		lastRegen *time.Time
		blobs     storage.Blobs
	)
	if err := row.Scan(
		&c.ID, &c.AccountID, &c.Name, &c.Class, &c.Level, &c.XP, &c.XPToNext,
		&c.Health, &c.Mana, &lastRegen, &c.InkDrops, &c.LuckStat, &c.AvailableStatPoints, &c.XPBoost,
		&blobs.Attributes, &blobs.Equipment, &blobs.Inventory, &blobs.Cosmetics, &blobs.SkillXP, &blobs.Counters,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := storage.DecodeBlobs(blobs, &c); err != nil {
		return nil, err
	}
	if lastRegen != nil {
		c.LastRegenTime = lastRegen.UTC()
	}
	return &c, nil
}
