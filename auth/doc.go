// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides session token and username utilities.

# Session Tokens

Session tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GenerateSessionToken()

Tokens are URL-safe base64 encoded and sent back by clients in the
X-Session-Token header.

# Token Hashing

Only an HMAC-SHA256 of the token is stored:

	hash, err := auth.HashSessionToken(token, salt)

The hash is deterministic for a given salt, so lookups are a single
primary key read.

# Usernames

Login identifies a reviewer by username alone. NormalizeUsername trims
whitespace and enforces the 50 character limit. A username matching the
configured admin name (case-insensitive) is granted admin rights:

	if auth.IsAdminUsername(name, cfg.AdminUsername) { ... }
*/
package auth
