// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the notetally API.

# Handler Types

Each handler is a struct over the store, the settings and the config:

  - AuthHandler: login, logout and the current user
  - RecordsHandler: record listing, record detail and navigation
  - VotingHandler: single and bulk votes
  - FiltersHandler: unknown, contentious and pending views
  - AdminHandler: dashboard, settings, XML import and export, data reset

Handlers are created via constructor functions that accept the store and
Config:

	recordsHandler := handlers.NewRecordsHandler(st, cfg)

Every handler except Login expects the session middleware to have put the
caller into the request context.

# Distributions

Distributions are never stored. Each request loads the live votes and the
current settings and recomputes them, so a settings change or a new vote
shows up on the next request.

# Navigation

The navigate endpoints search records in bib order starting after the
current one and wrap around to the start:

	GET /navigate/{bib}/next-unclassified → notes nobody has voted on
	GET /navigate/{bib}/next-pending      → notes the caller has not voted on
	GET /navigate/{bib}/next-unknown      → notes whose consensus is "?"

When no other record qualifies the response names the current record with
found=false.

# Import and Export

POST /admin/import takes a multipart "xml_file" upload. Records are
imported one transaction each, so a duplicate bib is reported and skipped
without undoing the rest.

GET /admin/export writes every record and includes the notes whose
consensus reaches the requested confidence and the configured minimum vote
count.
*/
package handlers
