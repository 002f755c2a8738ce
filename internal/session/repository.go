// Package session owns the authenticated user: login, registration, logout,
// background reconciliation and persistence to the local state database.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/stocktrader/internal/domain"
)

// userKey is the single local_state row holding the session
const userKey = "user"

// Repository persists the session record in the local_state table
type Repository struct {
	db *sql.DB
}

// NewRepository creates a session repository over the state database
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Load returns the persisted session. found is false when none exists.
func (r *Repository) Load(ctx context.Context) (s domain.Session, found bool, err error) {
	var data []byte
	err = r.db.QueryRowContext(ctx, "SELECT data FROM local_state WHERE key = ?", userKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return s, false, nil
	}
	if err != nil {
		return s, false, fmt.Errorf("failed to load session: %w", err)
	}

	if err := msgpack.Unmarshal(data, &s); err != nil {
		return domain.Session{}, false, fmt.Errorf("failed to decode session: %w", err)
	}
	return s, true, nil
}

// Save overwrites the persisted session
func (r *Repository) Save(ctx context.Context, s domain.Session) error {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO local_state (key, data, updated_at) VALUES (?, ?, ?)",
		userKey, data, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete erases the persisted session. Deleting a missing record is not an error.
func (r *Repository) Delete(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM local_state WHERE key = ?", userKey); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
