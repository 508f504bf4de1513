// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - LoginRequest: username
  - VoteRequest: bib_id, note_index, classification
  - VoteIdenticalRequest: note_text, classification
  - UpdateSettingsRequest: any subset of the tunable settings

# Response Types

Types for JSON responses:

  - LoginResponse: session token and user
  - VoteResponse: previous and current vote plus the recomputed distribution
  - VoteIdenticalResponse: created / updated / failed counts
  - RecordDetailResponse: notes with distributions, navigation, progress
  - FilterResponse: records grouped for the unknown, contentious and pending views
  - DashboardResponse, SettingsResponse, ImportResponse: admin views
  - ErrorResponse: error, message

# Domain Types

Rows as stored by package store:

  - User: reviewer, optionally admin
  - Record: bibliographic record keyed by bib_id
  - Note: free text at a position within a record
  - Vote: one classification by one user on one note

Classification values use classify.Label throughout.
*/
package models
