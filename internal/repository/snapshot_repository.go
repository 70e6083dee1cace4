package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SnapshotRepository stores whole JSON documents by key. Each Put replaces
// the previous value in a single statement.
type SnapshotRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSnapshotRepository creates a new repository instance.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db, now: time.Now}
}

// Get returns the raw value stored under key. found is false when the key
// has never been written.
func (r *SnapshotRepository) Get(ctx context.Context, key string) (value string, found bool, err error) {
	query := r.db.Rebind(`SELECT value FROM snapshots WHERE key = ?`)
	if err := r.db.GetContext(ctx, &value, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get snapshot %s: %w", key, err)
	}
	return value, true, nil
}

// Put writes value under key, replacing any previous value.
func (r *SnapshotRepository) Put(ctx context.Context, key, value string) error {
	query := r.db.Rebind(`INSERT INTO snapshots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if _, err := r.db.ExecContext(ctx, query, key, value, r.now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("put snapshot %s: %w", key, err)
	}
	return nil
}
