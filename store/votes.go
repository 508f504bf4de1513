// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/notetally/classify"
	"github.com/danielhkuo/notetally/db"
)

// UpsertVote records userID's label for noteID, replacing any earlier
// vote by the same user. It returns the label that was replaced, or
// classify.None when this is the user's first vote on the note.
//
// The unique (note_id, user_id) constraint keeps one row per voter under
// concurrent writers; the last commit wins.
func (s *Store) UpsertVote(ctx context.Context, noteID, userID string, label classify.Label) (classify.Label, error) {
	if !label.Valid() {
		return classify.None, classify.ErrInvalidLabel
	}

	var previous classify.Label
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &previous, tx.Rebind(`
			SELECT classification FROM votes WHERE note_id = ? AND user_id = ?
		`), noteID, userID)
		if err != nil && !errors.Is(db.CastErr(err), db.ErrNotFound) {
			return fmt.Errorf("failed to query existing vote: %w", err)
		}
		return upsertVote(ctx, tx, noteID, userID, label)
	})
	if err != nil {
		return classify.None, err
	}
	return previous, nil
}

func upsertVote(ctx context.Context, tx *sqlx.Tx, noteID, userID string, label classify.Label) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO votes (id, note_id, user_id, classification, voted_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (note_id, user_id) DO UPDATE
		SET classification = excluded.classification, voted_at = excluded.voted_at
	`), uuid.NewString(), noteID, userID, string(label), now())
	if err != nil {
		return fmt.Errorf("failed to upsert vote: %w", db.CastErr(err))
	}
	return nil
}

// UserVote returns userID's current label on noteID, or classify.None.
func (s *Store) UserVote(ctx context.Context, noteID, userID string) (classify.Label, error) {
	var label classify.Label
	err := s.db.GetContext(ctx, &label, s.db.Rebind(`
		SELECT classification FROM votes WHERE note_id = ? AND user_id = ?
	`), noteID, userID)
	if errors.Is(db.CastErr(err), db.ErrNotFound) {
		return classify.None, nil
	}
	if err != nil {
		return classify.None, fmt.Errorf("failed to query vote: %w", err)
	}
	return label, nil
}

// NoteLabels returns the current label of every voter on noteID.
func (s *Store) NoteLabels(ctx context.Context, noteID string) ([]classify.Label, error) {
	labels := make([]classify.Label, 0)
	err := s.db.SelectContext(ctx, &labels, s.db.Rebind(`
		SELECT classification FROM votes WHERE note_id = ?
	`), noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	return labels, nil
}

type noteVote struct {
	NoteID         string         `db:"note_id"`
	Classification classify.Label `db:"classification"`
	Username       string         `db:"username"`
}

// votesFor loads the votes on noteIDs, or on every note when noteIDs is nil.
func (s *Store) votesFor(ctx context.Context, noteIDs []string, withUsers bool) ([]noteVote, error) {
	q := s.db.Builder().Select("v.note_id", "v.classification").From("votes v")
	if withUsers {
		q = q.Column("u.username").Join("users u ON u.id = v.user_id").OrderBy("u.username")
	}
	if noteIDs != nil {
		if len(noteIDs) == 0 {
			return nil, nil
		}
		q = q.Where(sq.Eq{"v.note_id": noteIDs})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var votes []noteVote
	if err := s.db.SelectContext(ctx, &votes, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	return votes, nil
}

// LabelsByNote groups the votes on noteIDs by note. A nil slice loads the
// votes on every note.
func (s *Store) LabelsByNote(ctx context.Context, noteIDs []string) (map[string][]classify.Label, error) {
	votes, err := s.votesFor(ctx, noteIDs, false)
	if err != nil {
		return nil, err
	}

	byNote := make(map[string][]classify.Label)
	for _, v := range votes {
		byNote[v.NoteID] = append(byNote[v.NoteID], v.Classification)
	}
	return byNote, nil
}

// VotersByNote groups voter usernames by note and label, usernames sorted.
func (s *Store) VotersByNote(ctx context.Context, noteIDs []string) (map[string]map[classify.Label][]string, error) {
	votes, err := s.votesFor(ctx, noteIDs, true)
	if err != nil {
		return nil, err
	}

	byNote := make(map[string]map[classify.Label][]string)
	for _, v := range votes {
		voters, ok := byNote[v.NoteID]
		if !ok {
			voters = make(map[classify.Label][]string)
			byNote[v.NoteID] = voters
		}
		voters[v.Classification] = append(voters[v.Classification], v.Username)
	}
	return byNote, nil
}

// UserVotes returns userID's labels on noteIDs keyed by note id.
func (s *Store) UserVotes(ctx context.Context, userID string, noteIDs []string) (map[string]classify.Label, error) {
	byNote := make(map[string]classify.Label)
	if len(noteIDs) == 0 {
		return byNote, nil
	}

	query, args, err := s.db.Builder().
		Select("note_id", "classification").
		From("votes").
		Where(sq.Eq{"user_id": userID, "note_id": noteIDs}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var votes []noteVote
	if err := s.db.SelectContext(ctx, &votes, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query user votes: %w", err)
	}
	for _, v := range votes {
		byNote[v.NoteID] = v.Classification
	}
	return byNote, nil
}

// Progress summarises how much of the collection has been voted on.
type Progress struct {
	TotalNotes     int `db:"total_notes"`
	UserVotedNotes int `db:"user_voted_notes"`
	NotesWithVotes int `db:"notes_with_votes"`
}

func (p Progress) UserPercent() float64 {
	return percent(p.UserVotedNotes, p.TotalNotes)
}

func (p Progress) OverallPercent() float64 {
	return percent(p.NotesWithVotes, p.TotalNotes)
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func (s *Store) Progress(ctx context.Context, userID string) (Progress, error) {
	var p Progress
	err := s.db.GetContext(ctx, &p, s.db.Rebind(`
		SELECT
			(SELECT COUNT(*) FROM notes) AS total_notes,
			(SELECT COUNT(DISTINCT note_id) FROM votes WHERE user_id = ?) AS user_voted_notes,
			(SELECT COUNT(DISTINCT note_id) FROM votes) AS notes_with_votes
	`), userID)
	if err != nil {
		return Progress{}, fmt.Errorf("failed to query progress: %w", err)
	}
	return p, nil
}

// VotedNoteIDs returns the set of notes userID has voted on.
func (s *Store) VotedNoteIDs(ctx context.Context, userID string) (map[string]bool, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, s.db.Rebind(`
		SELECT note_id FROM votes WHERE user_id = ?
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query voted notes: %w", err)
	}

	voted := make(map[string]bool, len(ids))
	for _, id := range ids {
		voted[id] = true
	}
	return voted, nil
}
