// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *DB) error {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The DDL sticks to types and clauses that PostgreSQL and SQLite share.
const schema = `
-- Users
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    is_admin BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL
);

-- Sessions
CREATE TABLE IF NOT EXISTS sessions (
    token_hash TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL,
    expires_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);

-- Records
CREATE TABLE IF NOT EXISTS records (
    id TEXT PRIMARY KEY,
    bib_id TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    source_user_id TEXT REFERENCES users(id) ON DELETE SET NULL,
    source_filename TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_source_user_id ON records(source_user_id);

-- Notes. text is matched by equality only and stays unindexed; PostgreSQL
-- btree entries cannot hold long notes.
CREATE TABLE IF NOT EXISTS notes (
    id TEXT PRIMARY KEY,
    record_id TEXT NOT NULL REFERENCES records(id) ON DELETE CASCADE,
    note_index INTEGER NOT NULL,
    text TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (record_id, note_index)
);

CREATE INDEX IF NOT EXISTS idx_notes_record_index ON notes(record_id, note_index);

-- Votes
CREATE TABLE IF NOT EXISTS votes (
    id TEXT PRIMARY KEY,
    note_id TEXT NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    classification TEXT NOT NULL CHECK (classification IN ('w', 'o', 'a', 'ow', 'aw', 'ao', '?')),
    voted_at TIMESTAMP NOT NULL,
    UNIQUE (note_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_votes_note_id ON votes(note_id);
CREATE INDEX IF NOT EXISTS idx_votes_user_id ON votes(user_id);

-- Settings
CREATE TABLE IF NOT EXISTS settings (
    name TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    description TEXT,
    updated_at TIMESTAMP NOT NULL
);
`
