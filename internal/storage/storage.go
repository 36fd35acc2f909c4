// Package storage defines the persistence contracts for accounts and
// characters and the column encoding shared by the sqlite and postgres
// backends.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cory-johannsen/inkquest/internal/game/character"
	"github.com/cory-johannsen/inkquest/internal/game/inventory"
	"github.com/cory-johannsen/inkquest/internal/game/ruleset"
)

var (
	// ErrCharacterNotFound is returned when a character lookup yields no results.
	ErrCharacterNotFound = errors.New("character not found")
	// ErrCharacterNameTaken is returned when creating a character with a name already used by the account.
	ErrCharacterNameTaken = errors.New("character name already taken")
	// ErrAccountNotFound is returned when an account lookup yields no results.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists is returned when attempting to create a duplicate username.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Account is a local login owning one or more characters.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// AccountStore persists accounts.
type AccountStore interface {
	// Create inserts a new account with a bcrypt-hashed password.
	Create(ctx context.Context, username, password string) (Account, error)
	// Authenticate verifies credentials and returns the matching account.
	Authenticate(ctx context.Context, username, password string) (Account, error)
}

// CharacterStore persists characters. Implementations return
// ErrCharacterNotFound and ErrCharacterNameTaken for the matching conditions.
type CharacterStore interface {
	Create(ctx context.Context, c *character.Character) (*character.Character, error)
	Get(ctx context.Context, id int64) (*character.Character, error)
	ListByAccount(ctx context.Context, accountID int64) ([]*character.Character, error)
	// Save overwrites every mutable column of an existing character.
	Save(ctx context.Context, c *character.Character) error
}

// HashPassword creates a bcrypt hash of the given password.
//
// Precondition: password must be non-empty.
// Postcondition: Returns a bcrypt hash string.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
//
// Postcondition: Returns true if password matches the hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Blobs holds the JSON-encoded nested parts of a character row.
type Blobs struct {
	Attributes []byte
	Equipment  []byte
	Inventory  []byte
	Cosmetics  []byte
	SkillXP    []byte
	Counters   []byte
}

// EncodeBlobs serialises the nested parts of c.
//
// Postcondition: every field of the result is valid JSON.
func EncodeBlobs(c *character.Character) (Blobs, error) {
	var (
		b   Blobs
		err error
	)
	if b.Attributes, err = json.Marshal(c.Attributes); err != nil {
		return Blobs{}, fmt.Errorf("encoding attributes: %w", err)
	}
	if b.Equipment, err = json.Marshal(c.Equipment); err != nil {
		return Blobs{}, fmt.Errorf("encoding equipment: %w", err)
	}
	inv := c.Inventory
	if inv == nil {
		inv = inventory.Backpack{}
	}
	if b.Inventory, err = json.Marshal(inv); err != nil {
		return Blobs{}, fmt.Errorf("encoding inventory: %w", err)
	}
	cosmetics := c.Cosmetics
	if cosmetics == nil {
		cosmetics = []string{}
	}
	if b.Cosmetics, err = json.Marshal(cosmetics); err != nil {
		return Blobs{}, fmt.Errorf("encoding cosmetics: %w", err)
	}
	skills := c.SkillXP
	if skills == nil {
		skills = map[string]int{}
	}
	if b.SkillXP, err = json.Marshal(skills); err != nil {
		return Blobs{}, fmt.Errorf("encoding skill xp: %w", err)
	}
	if b.Counters, err = json.Marshal(c.Counters); err != nil {
		return Blobs{}, fmt.Errorf("encoding counters: %w", err)
	}
	return b, nil
}

// DecodeBlobs populates the nested parts of c. A JSON null attributes
// column decodes to nil, which the stat model treats as malformed.
func DecodeBlobs(b Blobs, c *character.Character) error {
	var attrs *ruleset.Attributes
	if err := json.Unmarshal(b.Attributes, &attrs); err != nil {
		return fmt.Errorf("decoding attributes: %w", err)
	}
	c.Attributes = attrs
	if err := json.Unmarshal(b.Equipment, &c.Equipment); err != nil {
		return fmt.Errorf("decoding equipment: %w", err)
	}
	if err := json.Unmarshal(b.Inventory, &c.Inventory); err != nil {
		return fmt.Errorf("decoding inventory: %w", err)
	}
	if err := json.Unmarshal(b.Cosmetics, &c.Cosmetics); err != nil {
		return fmt.Errorf("decoding cosmetics: %w", err)
	}
	if err := json.Unmarshal(b.SkillXP, &c.SkillXP); err != nil {
		return fmt.Errorf("decoding skill xp: %w", err)
	}
	if err := json.Unmarshal(b.Counters, &c.Counters); err != nil {
		return fmt.Errorf("decoding counters: %w", err)
	}
	return nil
}
