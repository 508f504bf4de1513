// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/notetally/db"
)

// Store runs every query the handlers need against one database.
// All statements are written with ? placeholders and rebound per driver.
type Store struct {
	db *db.DB
}

func New(database *db.DB) *Store {
	return &Store{db: database}
}

// DB exposes the underlying connection, mostly for tests.
func (s *Store) DB() *db.DB {
	return s.db
}

func now() time.Time {
	return time.Now().UTC()
}

// inTx runs fn in a transaction and commits when it returns nil.
// Nothing inside fn may touch s.db directly: SQLite runs on a single
// connection and would block on itself.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Setting implements settings.KV.
func (s *Store) Setting(ctx context.Context, name string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, s.db.Rebind(`
		SELECT value FROM settings WHERE name = ?
	`), name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s: %w", name, err)
	}
	return value, true, nil
}

// PutSetting implements settings.KV with a single upsert.
func (s *Store) PutSetting(ctx context.Context, name, value, description string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO settings (name, value, description, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE
		SET value = excluded.value, description = excluded.description, updated_at = excluded.updated_at
	`), name, value, description, now())
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", name, err)
	}
	return nil
}
