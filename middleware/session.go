// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/notetally/auth"
	"github.com/danielhkuo/notetally/db"
	"github.com/danielhkuo/notetally/models"
)

// SessionHeader carries the session token issued by POST /login.
const SessionHeader = "X-Session-Token"

// SessionLookup resolves a hashed session token to its user.
type SessionLookup interface {
	UserBySession(ctx context.Context, tokenHash string) (models.User, error)
}

type userKey struct{}

// UserFromContext returns the user attached by RequireUser.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey{}).(models.User)
	return user, ok
}

// WithUser attaches user to ctx.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// SessionToken reads the token from X-Session-Token or a bearer
// Authorization header.
func SessionToken(r *http.Request) string {
	if token := r.Header.Get(SessionHeader); token != "" {
		return token
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// Sessions builds the authentication middleware for one session store.
type Sessions struct {
	lookup SessionLookup
	salt   string
}

func NewSessions(lookup SessionLookup, salt string) *Sessions {
	return &Sessions{lookup: lookup, salt: salt}
}

// RequireUser rejects requests without a valid session and passes the
// session's user to next through the request context.
func (s *Sessions) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := SessionToken(r)
		if token == "" {
			ErrorResponse(w, http.StatusUnauthorized, SessionHeader+" header required")
			return
		}

		hash, err := auth.HashSessionToken(token, s.salt)
		if err != nil {
			ErrorResponse(w, http.StatusUnauthorized, "Invalid session token")
			return
		}

		user, err := s.lookup.UserBySession(r.Context(), hash)
		if errors.Is(err, db.ErrNotFound) {
			ErrorResponse(w, http.StatusUnauthorized, "Session expired or invalid")
			return
		}
		if err != nil {
			slog.Error("failed to look up session", "error", err)
			ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		next(w, r.WithContext(WithUser(r.Context(), user)))
	}
}

// RequireAdmin is RequireUser restricted to admin accounts.
func (s *Sessions) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return s.RequireUser(func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFromContext(r.Context())
		if !user.IsAdmin {
			ErrorResponse(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r)
	})
}
