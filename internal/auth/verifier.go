// Package auth verifies presented credentials against the users table.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"taskdesk/internal/apierr"
	"taskdesk/internal/models"
)

// dummyHash is compared against when the username does not exist, so the
// unknown-user and wrong-password paths both pay one bcrypt verification and
// fail with the same error.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

type Verifier struct {
	db      *sql.DB
	timeout time.Duration
}

func NewVerifier(db *sql.DB, timeout time.Duration) *Verifier {
	return &Verifier{db: db, timeout: timeout}
}

// Verify looks up the user and checks the presented password. Unknown
// usernames and bad passwords are indistinguishable to the caller.
func (v *Verifier) Verify(ctx context.Context, username, password string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	var user models.User
	var hash string
	err := v.db.QueryRowContext(ctx,
		"SELECT id, username, password, created_at, updated_at FROM users WHERE username = $1",
		username).Scan(&user.ID, &user.Username, &hash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, apierr.InvalidCredentials()
	}
	if err != nil {
		return nil, apierr.StorageUnavailable(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, apierr.InvalidCredentials()
	}
	return &user, nil
}
