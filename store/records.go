// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/danielhkuo/notetally/db"
	"github.com/danielhkuo/notetally/models"
)

// ListRecords returns every record in bib order with its note count.
func (s *Store) ListRecords(ctx context.Context) ([]models.RecordSummary, error) {
	query, args, err := s.db.Builder().
		Select("r.bib_id", "r.title", "COUNT(n.id) AS note_count").
		From("records r").
		LeftJoin("notes n ON n.record_id = r.id").
		GroupBy("r.id", "r.bib_id", "r.title").
		OrderBy("r.bib_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	records := make([]models.RecordSummary, 0)
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

func (s *Store) RecordByBib(ctx context.Context, bibID string) (models.Record, error) {
	var record models.Record
	err := s.db.GetContext(ctx, &record, s.db.Rebind(`
		SELECT id, bib_id, title, source_user_id, source_filename, created_at
		FROM records WHERE bib_id = ?
	`), bibID)
	return record, db.CastErr(err)
}

// BibIDs returns all bib ids in ascending order.
func (s *Store) BibIDs(ctx context.Context) ([]string, error) {
	bibs := make([]string, 0)
	if err := s.db.SelectContext(ctx, &bibs, `SELECT bib_id FROM records ORDER BY bib_id`); err != nil {
		return nil, fmt.Errorf("failed to list bib ids: %w", err)
	}
	return bibs, nil
}

// NotesByRecord returns the notes of one record ordered by index.
func (s *Store) NotesByRecord(ctx context.Context, recordID string) ([]models.Note, error) {
	notes := make([]models.Note, 0)
	err := s.db.SelectContext(ctx, &notes, s.db.Rebind(`
		SELECT id, record_id, note_index, text, created_at
		FROM notes WHERE record_id = ? ORDER BY note_index
	`), recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	return notes, nil
}

// NoteRef is a note together with the record it belongs to.
type NoteRef struct {
	models.Note
	BibID string `db:"bib_id"`
	Title string `db:"title"`
}

// Notes returns notes joined to their record, ordered by bib then index.
// An empty bibID lists every note.
func (s *Store) Notes(ctx context.Context, bibID string) ([]NoteRef, error) {
	q := s.db.Builder().
		Select("n.id", "n.record_id", "n.note_index", "n.text", "n.created_at", "r.bib_id", "r.title").
		From("notes n").
		Join("records r ON r.id = n.record_id").
		OrderBy("r.bib_id", "n.note_index")
	if bibID != "" {
		q = q.Where(sq.Eq{"r.bib_id": bibID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	notes := make([]NoteRef, 0)
	if err := s.db.SelectContext(ctx, &notes, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	return notes, nil
}

// NoteByBibIndex resolves a (bib, note index) pair. It returns
// db.ErrNotFound when either the record or the note does not exist.
func (s *Store) NoteByBibIndex(ctx context.Context, bibID string, index int) (models.Note, error) {
	var note models.Note
	err := s.db.GetContext(ctx, &note, s.db.Rebind(`
		SELECT n.id, n.record_id, n.note_index, n.text, n.created_at
		FROM notes n INNER JOIN records r ON r.id = n.record_id
		WHERE r.bib_id = ? AND n.note_index = ?
	`), bibID, index)
	return note, db.CastErr(err)
}

// CountIdentical counts notes whose text equals text exactly.
func (s *Store) CountIdentical(ctx context.Context, text string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.db.Rebind(`
		SELECT COUNT(*) FROM notes WHERE text = ?
	`), text)
	if err != nil {
		return 0, fmt.Errorf("failed to count identical notes: %w", err)
	}
	return n, nil
}

// IdenticalCounts returns, for each distinct text in texts, how many notes
// share it.
func (s *Store) IdenticalCounts(ctx context.Context, texts []string) (map[string]int, error) {
	counts := make(map[string]int, len(texts))
	if len(texts) == 0 {
		return counts, nil
	}

	query, args, err := s.db.Builder().
		Select("text", "COUNT(*) AS n").
		From("notes").
		Where(sq.Eq{"text": texts}).
		GroupBy("text").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Text string `db:"text"`
		N    int    `db:"n"`
	}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to count identical notes: %w", err)
	}
	for _, r := range rows {
		counts[r.Text] = r.N
	}
	return counts, nil
}

// IdenticalNoteIDs returns the ids of all notes whose text equals text
// exactly, in bib and index order.
func (s *Store) IdenticalNoteIDs(ctx context.Context, text string) ([]string, error) {
	ids := make([]string, 0)
	err := s.db.SelectContext(ctx, &ids, s.db.Rebind(`
		SELECT n.id FROM notes n INNER JOIN records r ON r.id = n.record_id
		WHERE n.text = ?
		ORDER BY r.bib_id, n.note_index
	`), text)
	if err != nil {
		return nil, fmt.Errorf("failed to query identical notes: %w", err)
	}
	return ids, nil
}

// FirstUnvotedBib returns the bib of the first record holding a note that
// nobody has voted on yet.
func (s *Store) FirstUnvotedBib(ctx context.Context) (string, error) {
	var bib string
	err := s.db.GetContext(ctx, &bib, `
		SELECT r.bib_id
		FROM notes n
		INNER JOIN records r ON r.id = n.record_id
		WHERE NOT EXISTS (SELECT 1 FROM votes v WHERE v.note_id = n.id)
		ORDER BY r.bib_id, n.note_index
		LIMIT 1
	`)
	return bib, db.CastErr(err)
}

// UnvotedBibs returns the bibs of records holding at least one note that
// has no votes at all, or no vote from userID when userID is set.
func (s *Store) UnvotedBibs(ctx context.Context, userID string) ([]string, error) {
	// built with ? placeholders; the outer builder renumbers them
	sub := sq.Select("1").From("votes v").Where("v.note_id = n.id")
	if userID != "" {
		sub = sub.Where(sq.Eq{"v.user_id": userID})
	}
	subSQL, subArgs, err := sub.ToSql()
	if err != nil {
		return nil, err
	}

	query, args, err := s.db.Builder().
		Select("r.bib_id").Distinct().
		From("notes n").
		Join("records r ON r.id = n.record_id").
		Where("NOT EXISTS ("+subSQL+")", subArgs...).
		OrderBy("r.bib_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	bibs := make([]string, 0)
	if err := s.db.SelectContext(ctx, &bibs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query unvoted records: %w", err)
	}
	return bibs, nil
}
