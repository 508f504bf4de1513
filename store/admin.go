// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/notetally/classify"
	"github.com/danielhkuo/notetally/db"
	"github.com/danielhkuo/notetally/models"
	"github.com/danielhkuo/notetally/xmlio"
)

// DefaultTitle is stored for imported records without a title.
const DefaultTitle = "No title"

// Totals returns the raw counters shown on the dashboard.
func (s *Store) Totals(ctx context.Context) (models.DashboardStats, error) {
	var row struct {
		Records    int `db:"records"`
		Notes      int `db:"notes"`
		Votes      int `db:"votes"`
		Users      int `db:"users"`
		VotedNotes int `db:"voted_notes"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT
			(SELECT COUNT(*) FROM records) AS records,
			(SELECT COUNT(*) FROM notes) AS notes,
			(SELECT COUNT(*) FROM votes) AS votes,
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(DISTINCT note_id) FROM votes) AS voted_notes
	`)
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("failed to query totals: %w", err)
	}

	stats := models.DashboardStats{
		TotalRecords: row.Records,
		TotalNotes:   row.Notes,
		TotalVotes:   row.Votes,
		TotalUsers:   row.Users,
	}
	// averaged over notes that have at least one vote
	if row.VotedNotes > 0 {
		stats.AvgVotesPerNote = float64(row.Votes) / float64(row.VotedNotes)
	}
	return stats, nil
}

func (s *Store) TopContributors(ctx context.Context, limit uint64) ([]models.Contributor, error) {
	query, args, err := s.db.Builder().
		Select("u.username", "COUNT(v.id) AS vote_count").
		From("users u").
		Join("votes v ON v.user_id = u.id").
		GroupBy("u.id", "u.username").
		OrderBy("vote_count DESC", "u.username").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, err
	}

	contributors := make([]models.Contributor, 0)
	if err := s.db.SelectContext(ctx, &contributors, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query contributors: %w", err)
	}
	return contributors, nil
}

// LabelSummary counts all votes per label, most used first.
func (s *Store) LabelSummary(ctx context.Context) ([]models.LabelCount, error) {
	counts := make([]models.LabelCount, 0)
	err := s.db.SelectContext(ctx, &counts, `
		SELECT classification, COUNT(*) AS count
		FROM votes
		GROUP BY classification
		ORDER BY count DESC, classification
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query label summary: %w", err)
	}
	return counts, nil
}

func (s *Store) RecentActivity(ctx context.Context, limit uint64) ([]models.Activity, error) {
	query, args, err := s.db.Builder().
		Select("u.username", "v.classification", "r.bib_id", "v.voted_at").
		From("votes v").
		Join("users u ON u.id = v.user_id").
		Join("notes n ON n.id = v.note_id").
		Join("records r ON r.id = n.record_id").
		OrderBy("v.voted_at DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, err
	}

	activity := make([]models.Activity, 0)
	if err := s.db.SelectContext(ctx, &activity, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query recent activity: %w", err)
	}
	return activity, nil
}

// ImportOptions controls ImportRecords.
type ImportOptions struct {
	// UserID is recorded as the source of every imported record.
	UserID string
	// Filename of the upload, stored with each record.
	Filename string
	// CreateVotes turns valid type attributes into votes by UserID.
	CreateVotes bool
}

// ImportRecords stores records in document order. Each record is written
// in its own transaction: a bad record is reported in the result and
// skipped without undoing the others.
func (s *Store) ImportRecords(ctx context.Context, records []xmlio.Record, opts ImportOptions) (models.ImportResponse, error) {
	result := models.ImportResponse{Errors: make([]string, 0)}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		bib := strings.TrimSpace(rec.BibID)
		if bib == "" {
			result.Errors = append(result.Errors, "Record without bib ID skipped")
			continue
		}

		var notes, votes int
		err := s.inTx(ctx, func(tx *sqlx.Tx) error {
			var n int
			err := tx.GetContext(ctx, &n, tx.Rebind(`SELECT COUNT(*) FROM records WHERE bib_id = ?`), bib)
			if err != nil {
				return err
			}
			if n > 0 {
				return db.ErrConflict
			}

			notes, votes, err = insertRecord(ctx, tx, bib, rec, opts)
			return err
		})

		switch {
		case errors.Is(err, db.ErrConflict):
			result.Errors = append(result.Errors, fmt.Sprintf("Record %s already exists, skipped", bib))
		case err != nil:
			slog.Warn("failed to import record", "bib_id", bib, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("Error processing record %s: %v", bib, err))
		default:
			result.RecordsCreated++
			result.NotesCreated += notes
			result.VotesCreated += votes
		}
	}

	return result, nil
}

func insertRecord(ctx context.Context, tx *sqlx.Tx, bib string, rec xmlio.Record, opts ImportOptions) (notes, votes int, err error) {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		title = DefaultTitle
	}

	var sourceUser, sourceFile *string
	if opts.UserID != "" {
		sourceUser = &opts.UserID
	}
	if opts.Filename != "" {
		sourceFile = &opts.Filename
	}

	recordID := uuid.NewString()
	created := now()
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO records (id, bib_id, title, source_user_id, source_filename, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), recordID, bib, title, sourceUser, sourceFile, created)
	if err != nil {
		return 0, 0, db.CastErr(err)
	}

	for i, note := range rec.Notes {
		noteID := uuid.NewString()
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO notes (id, record_id, note_index, text, created_at)
			VALUES (?, ?, ?, ?, ?)
		`), noteID, recordID, i, note.Text, created)
		if err != nil {
			return 0, 0, fmt.Errorf("note %d: %w", i, err)
		}
		notes++

		if !opts.CreateVotes || opts.UserID == "" {
			continue
		}
		// blank or unknown types carry no vote
		label, err := classify.ParseLabel(strings.TrimSpace(note.Type))
		if err != nil {
			continue
		}
		if err := upsertVote(ctx, tx, noteID, opts.UserID, label); err != nil {
			return 0, 0, fmt.Errorf("note %d: %w", i, err)
		}
		votes++
	}

	return notes, votes, nil
}

// ClearData removes all records, notes and votes. Users, sessions and
// settings are kept.
func (s *Store) ClearData(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, table := range []string{"votes", "notes", "records"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
}
