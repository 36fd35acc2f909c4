package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cory-johannsen/inkquest/internal/storage"
)

// AccountRepository implements storage.AccountStore.
type AccountRepository struct {
	db *sql.DB
}

var _ storage.AccountStore = (*AccountRepository)(nil)

// Create inserts a new account with a bcrypt-hashed password.
//
// Precondition: username and password must be non-empty.
// Postcondition: Returns the created Account, or storage.ErrAccountExists if the username is taken.
func (r *AccountRepository) Create(ctx context.Context, username, password string) (storage.Account, error) {
	if username == "" {
		return storage.Account{}, fmt.Errorf("username must not be empty")
	}
	hash, err := storage.HashPassword(password)
	if err != nil {
		return storage.Account{}, fmt.Errorf("hashing password: %w", err)
	}
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, hash, toMillis(now),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.Account{}, storage.ErrAccountExists
		}
		return storage.Account{}, fmt.Errorf("inserting account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return storage.Account{}, fmt.Errorf("reading account id: %w", err)
	}
	return storage.Account{ID: id, Username: username, PasswordHash: hash, CreatedAt: fromMillis(toMillis(now))}, nil
}

// Authenticate verifies credentials and returns the matching account.
//
// Postcondition: Returns storage.ErrAccountNotFound or storage.ErrInvalidCredentials on failure.
func (r *AccountRepository) Authenticate(ctx context.Context, username, password string) (storage.Account, error) {
	var (
		acct    storage.Account
		created int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM accounts WHERE username = ?`,
		username,
	).Scan(&acct.ID, &acct.Username, &acct.PasswordHash, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Account{}, storage.ErrAccountNotFound
		}
		return storage.Account{}, fmt.Errorf("querying account: %w", err)
	}
	if !storage.CheckPassword(password, acct.PasswordHash) {
		return storage.Account{}, storage.ErrInvalidCredentials
	}
	acct.CreatedAt = fromMillis(created)
	return acct, nil
}
