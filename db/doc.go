// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connecting

Open accepts "sqlite" (modernc.org/sqlite) or "postgres" (lib/pq):

	conn, err := db.Open(db.TypeSQLite, "file:notetally.db")

SQLite connections enable foreign keys and a busy timeout, and are limited
to a single open connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - users: reviewers, with an admin flag
  - sessions: hashed login tokens
  - records: bibliographic records keyed by bib_id
  - notes: free-text notes, ordered by note_index within a record
  - votes: one classification per user per note
  - settings: named string values for tunable parameters

# Relationships

	records 1──* notes
	notes   1──* votes
	users   1──* votes
	users   1──* sessions

# Errors

CastErr maps sql.ErrNoRows to ErrNotFound and unique violations from either
driver to ErrConflict.
*/
package db
