// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/notetally/classify"
	"github.com/danielhkuo/notetally/cliparse"
	"github.com/danielhkuo/notetally/db"
	"github.com/danielhkuo/notetally/middleware"
	"github.com/danielhkuo/notetally/models"
	"github.com/danielhkuo/notetally/settings"
	"github.com/danielhkuo/notetally/store"
)

// base is shared by every handler: the store, the settings on top of it
// and the server config.
type base struct {
	store    *store.Store
	settings *settings.Store
	cfg      cliparse.Config
}

func newBase(st *store.Store, cfg cliparse.Config) base {
	return base{store: st, settings: settings.New(st), cfg: cfg}
}

// distributions computes the current distribution of each note from its
// live votes. Settings are read once so every note sees the same params.
// A nil noteIDs covers every note.
func (b base) distributions(ctx context.Context, noteIDs []string) (map[string]classify.Distribution, error) {
	params, err := b.settings.Params(ctx)
	if err != nil {
		return nil, err
	}

	labels, err := b.store.LabelsByNote(ctx, noteIDs)
	if err != nil {
		return nil, err
	}

	dists := make(map[string]classify.Distribution, len(noteIDs))
	for _, id := range noteIDs {
		dists[id] = classify.Calculate(labels[id], params)
	}
	// nil noteIDs: only notes with votes are known here
	for id, l := range labels {
		if _, ok := dists[id]; !ok {
			dists[id] = classify.Calculate(l, params)
		}
	}
	return dists, nil
}

// distributionFor returns the distribution of a note that may have no
// votes in dists.
func distributionFor(dists map[string]classify.Distribution, noteID string) classify.Distribution {
	if d, ok := dists[noteID]; ok {
		return d
	}
	return classify.Calculate(nil, classify.Params{})
}

func refIDs(notes []store.NoteRef) []string {
	ids := make([]string, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}
	return ids
}

// currentUser returns the user put into the context by the session
// middleware.
func currentUser(r *http.Request) models.User {
	user, _ := middleware.UserFromContext(r.Context())
	return user
}

// storeError writes 404 for missing rows and logs anything else as a 500.
func storeError(w http.ResponseWriter, err error, notFound, msg string, args ...any) {
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, notFound)
		return
	}
	slog.Error(msg, append(args, "error", err)...)
	middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
}

// previewLength is how much note text the filter views show.
const previewLength = 150

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + "..."
}

// scan walks every note in bib and index order and groups those matching
// keep by record. Records without matches are left out.
func (b base) scan(ctx context.Context, keep func(n store.NoteRef, d classify.Distribution) bool) ([]models.FilteredRecord, error) {
	notes, err := b.store.Notes(ctx, "")
	if err != nil {
		return nil, err
	}
	dists, err := b.distributions(ctx, nil)
	if err != nil {
		return nil, err
	}

	records := make([]models.FilteredRecord, 0)
	var current *models.FilteredRecord
	for _, n := range notes {
		if current == nil || current.BibID != n.BibID {
			if current != nil && current.MatchCount > 0 {
				records = append(records, *current)
			}
			current = &models.FilteredRecord{BibID: n.BibID, Title: n.Title, Notes: make([]models.FilteredNote, 0)}
		}
		current.TotalNotes++

		d := distributionFor(dists, n.ID)
		if !keep(n, d) {
			continue
		}
		current.Notes = append(current.Notes, models.FilteredNote{
			Text:         preview(n.Text),
			TextFull:     n.Text,
			Index:        n.Index,
			Distribution: d,
		})
		current.MatchCount++
	}
	if current != nil && current.MatchCount > 0 {
		records = append(records, *current)
	}

	return records, nil
}

func isUnknown(_ store.NoteRef, d classify.Distribution) bool {
	return d.Consensus == classify.Unknown
}

func isContentious(_ store.NoteRef, d classify.Distribution) bool {
	return d.IsContentious
}
