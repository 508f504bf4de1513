// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/danielhkuo/notetally/classify"
	"github.com/danielhkuo/notetally/cliparse"
	"github.com/danielhkuo/notetally/db"
	"github.com/danielhkuo/notetally/middleware"
	"github.com/danielhkuo/notetally/models"
	"github.com/danielhkuo/notetally/store"
)

type RecordsHandler struct {
	base
}

func NewRecordsHandler(st *store.Store, cfg cliparse.Config) *RecordsHandler {
	return &RecordsHandler{base: newBase(st, cfg)}
}

// List handles GET /records
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListRecords(r.Context())
	if err != nil {
		slog.Error("failed to list records", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, records)
}

// Get handles GET /records/{bib}
func (h *RecordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bib := r.PathValue("bib")
	user := currentUser(r)

	record, err := h.store.RecordByBib(ctx, bib)
	if err != nil {
		storeError(w, err, "Record not found", "failed to query record", "bib_id", bib)
		return
	}

	notes, err := h.store.NotesByRecord(ctx, record.ID)
	if err != nil {
		storeError(w, err, "Record not found", "failed to query notes", "bib_id", bib)
		return
	}

	ids := make([]string, len(notes))
	texts := make([]string, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
		texts[i] = n.Text
	}

	dists, err := h.distributions(ctx, ids)
	if err != nil {
		slog.Error("failed to compute distributions", "error", err, "bib_id", bib)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	voters, err := h.store.VotersByNote(ctx, ids)
	if err != nil {
		slog.Error("failed to query voters", "error", err, "bib_id", bib)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	userVotes, err := h.store.UserVotes(ctx, user.ID, ids)
	if err != nil {
		slog.Error("failed to query user votes", "error", err, "bib_id", bib)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	identical, err := h.store.IdenticalCounts(ctx, texts)
	if err != nil {
		slog.Error("failed to count identical notes", "error", err, "bib_id", bib)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	views := make([]models.NoteView, len(notes))
	for i, n := range notes {
		d := dists[n.ID]
		v := voters[n.ID]
		if v == nil {
			v = make(map[classify.Label][]string)
		}
		views[i] = models.NoteView{
			Text:           n.Text,
			Index:          n.Index,
			Distribution:   d,
			Display:        classify.FormatDisplay(d),
			UserVote:       userVotes[n.ID],
			Voters:         v,
			IdenticalCount: identical[n.Text],
		}
	}

	bibs, err := h.store.BibIDs(ctx)
	if err != nil {
		slog.Error("failed to list bib ids", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	progress, err := h.store.Progress(ctx, user.ID)
	if err != nil {
		slog.Error("failed to query progress", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := models.RecordDetailResponse{
		BibID:           record.BibID,
		Title:           record.Title,
		Notes:           views,
		TotalRecords:    len(bibs),
		UserVotedNotes:  progress.UserVotedNotes,
		TotalNotes:      progress.TotalNotes,
		UserProgress:    progress.UserPercent(),
		NotesWithVotes:  progress.NotesWithVotes,
		OverallProgress: progress.OverallPercent(),
	}
	if i := slices.Index(bibs, record.BibID); i >= 0 {
		resp.CurrentIndex = i
		if i > 0 {
			resp.PrevBibID = &bibs[i-1]
		}
		if i < len(bibs)-1 {
			resp.NextBibID = &bibs[i+1]
		}
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// StartUnclassified handles GET /navigate/start-unclassified
func (h *RecordsHandler) StartUnclassified(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bib, err := h.store.FirstUnvotedBib(ctx)
	if err == nil {
		middleware.JSONResponse(w, http.StatusOK, models.NavigateResponse{BibID: bib, Found: true})
		return
	}
	if !errors.Is(err, db.ErrNotFound) {
		slog.Error("failed to find unvoted note", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// everything has votes: start at the first record
	bibs, err := h.store.BibIDs(ctx)
	if err != nil {
		slog.Error("failed to list bib ids", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if len(bibs) == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "No records")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.NavigateResponse{BibID: bibs[0]})
}

// NextUnclassified handles GET /navigate/{bib}/next-unclassified
func (h *RecordsHandler) NextUnclassified(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, func(ctx context.Context) ([]string, error) {
		return h.store.UnvotedBibs(ctx, "")
	})
}

// NextPending handles GET /navigate/{bib}/next-pending
func (h *RecordsHandler) NextPending(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID
	h.navigate(w, r, func(ctx context.Context) ([]string, error) {
		return h.store.UnvotedBibs(ctx, userID)
	})
}

// NextUnknown handles GET /navigate/{bib}/next-unknown
func (h *RecordsHandler) NextUnknown(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, func(ctx context.Context) ([]string, error) {
		records, err := h.scan(ctx, isUnknown)
		if err != nil {
			return nil, err
		}
		bibs := make([]string, len(records))
		for i, rec := range records {
			bibs[i] = rec.BibID
		}
		return bibs, nil
	})
}

// navigate moves from the current record to the next candidate in bib
// order, wrapping around to the start. When no other record qualifies it
// stays on the current one with Found unset.
func (h *RecordsHandler) navigate(w http.ResponseWriter, r *http.Request, candidates func(ctx context.Context) ([]string, error)) {
	ctx := r.Context()
	current := r.PathValue("bib")

	if _, err := h.store.RecordByBib(ctx, current); err != nil {
		storeError(w, err, "Record not found", "failed to query record", "bib_id", current)
		return
	}

	// the same order Get uses for prev/next
	order, err := h.store.BibIDs(ctx)
	if err != nil {
		slog.Error("failed to list bib ids", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	bibs, err := candidates(ctx)
	if err != nil {
		slog.Error("failed to search records", "error", err, "bib_id", current)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, nextBib(current, order, bibs))
}

// nextBib walks order from just after current, wrapping around, and picks
// the first bib in candidates.
func nextBib(current string, order, candidates []string) models.NavigateResponse {
	wanted := make(map[string]bool, len(candidates))
	for _, b := range candidates {
		wanted[b] = true
	}

	start := slices.Index(order, current)
	for i := 1; i <= len(order); i++ {
		b := order[(start+i+len(order))%len(order)]
		if b != current && wanted[b] {
			return models.NavigateResponse{BibID: b, Found: true}
		}
	}
	return models.NavigateResponse{BibID: current}
}
