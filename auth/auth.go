// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const MaxUsernameLength = 50

var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidToken    = errors.New("invalid token format")
)

// GenerateSessionToken creates a random secure token for a logged-in user
func GenerateSessionToken() (string, error) {
	b := make([]byte, 24) // 24 bytes = 192 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// HashSessionToken derives the value stored for a session token.
// Only the hash is persisted.
func HashSessionToken(token, salt string) (string, error) {
	if token == "" || strings.ContainsAny(token, " \t\r\n") {
		return "", ErrInvalidToken
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// NormalizeUsername trims the username and checks its length.
func NormalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("%w: username is required", ErrInvalidUsername)
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return "", fmt.Errorf("%w: username must be %d characters or less", ErrInvalidUsername, MaxUsernameLength)
	}
	return username, nil
}

// IsAdminUsername reports whether username matches the configured admin
// name, ignoring case.
func IsAdminUsername(username, adminUsername string) bool {
	return adminUsername != "" && strings.EqualFold(username, adminUsername)
}
