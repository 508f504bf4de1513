// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/notetally/db"
	"github.com/danielhkuo/notetally/models"
)

// GetOrCreateUser looks the username up and creates it when missing.
// When grantAdmin is set an existing account is promoted as well.
func (s *Store) GetOrCreateUser(ctx context.Context, username string, grantAdmin bool) (models.User, bool, error) {
	user, created, err := s.getOrCreateUser(ctx, username, grantAdmin)
	if errors.Is(err, db.ErrConflict) {
		// a concurrent login created the same user first
		return s.getOrCreateUser(ctx, username, grantAdmin)
	}
	return user, created, err
}

func (s *Store) getOrCreateUser(ctx context.Context, username string, grantAdmin bool) (models.User, bool, error) {
	var (
		user    models.User
		created bool
	)

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &user, tx.Rebind(`
			SELECT id, username, is_admin, created_at FROM users WHERE username = ?
		`), username)
		if err == nil {
			if grantAdmin && !user.IsAdmin {
				if _, err := tx.ExecContext(ctx, tx.Rebind(`
					UPDATE users SET is_admin = ? WHERE id = ?
				`), true, user.ID); err != nil {
					return fmt.Errorf("failed to grant admin: %w", err)
				}
				user.IsAdmin = true
			}
			return nil
		}
		if !errors.Is(db.CastErr(err), db.ErrNotFound) {
			return fmt.Errorf("failed to query user: %w", err)
		}

		user = models.User{
			ID:        uuid.NewString(),
			Username:  username,
			IsAdmin:   grantAdmin,
			CreatedAt: now(),
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO users (id, username, is_admin, created_at)
			VALUES (?, ?, ?, ?)
		`), user.ID, user.Username, user.IsAdmin, user.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", db.CastErr(err))
		}
		created = true
		return nil
	})

	return user, created, err
}

func (s *Store) UserByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, s.db.Rebind(`
		SELECT id, username, is_admin, created_at FROM users WHERE id = ?
	`), id)
	return user, db.CastErr(err)
}

// CreateSession stores the hash of a freshly issued session token.
func (s *Store) CreateSession(ctx context.Context, tokenHash, userID string, ttl time.Duration) error {
	created := now()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO sessions (token_hash, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`), tokenHash, userID, created, created.Add(ttl))
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", db.CastErr(err))
	}
	return nil
}

// UserBySession returns the owner of an unexpired session.
func (s *Store) UserBySession(ctx context.Context, tokenHash string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, s.db.Rebind(`
		SELECT u.id, u.username, u.is_admin, u.created_at
		FROM users u INNER JOIN sessions s ON s.user_id = u.id
		WHERE s.token_hash = ? AND s.expires_at > ?
	`), tokenHash, now())
	return user, db.CastErr(err)
}

func (s *Store) DeleteSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		DELETE FROM sessions WHERE token_hash = ?
	`), tokenHash)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions removes sessions past their expiry and reports how
// many were deleted.
func (s *Store) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		DELETE FROM sessions WHERE expires_at <= ?
	`), now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return res.RowsAffected()
}
