// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the notetally API server.

notetally is a collaborative classification service for catalogue
provenance notes. Users vote one of w, o, a, ow, aw, ao or ? on each note,
and the server derives a consensus per note, flags contentious notes, and
exports the agreed classifications as XML.

# Starting the Server

Given only a session salt the server listens on port 3318 and keeps its data
in a local SQLite file:

	SESSION_SALT=change-me go run .

Or with flags and PostgreSQL:

	go run . -p 8080 --database-type postgres -d "postgres://..." --session-salt change-me

A .env file in the working directory is loaded first if present.

# Configuration

Flags win over environment variables, which win over an optional YAML file
given with --config or NOTETALLY_CONFIG. See package cliparse for the full list.

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres
  - DATABASE_URL (-d): Connection string
  - SESSION_SALT (--session-salt): Secret for session token HMAC
  - ADMIN_USERNAME (--admin-username): Login name granted admin rights
  - EXPORT_CONFIDENCE (--export-confidence): Default export threshold

# Architecture

  - handlers: HTTP request handlers (auth, records, voting, filters, admin)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, sessions, JSON helpers
  - store: SQL queries over sqlx and squirrel
  - classify: Labels, distributions and the contentious check
  - settings: Persisted tunables
  - xmlio: XML import and export format
  - models: Request/response types
  - auth: Session tokens and usernames
  - db: Connection and schema
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
