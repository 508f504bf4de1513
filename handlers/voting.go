// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/notetally/classify"
	"github.com/danielhkuo/notetally/cliparse"
	"github.com/danielhkuo/notetally/middleware"
	"github.com/danielhkuo/notetally/models"
	"github.com/danielhkuo/notetally/store"
)

type VotingHandler struct {
	base
}

func NewVotingHandler(st *store.Store, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{base: newBase(st, cfg)}
}

// Vote handles POST /vote
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate before any storage access
	label, err := classify.ParseLabel(req.Classification)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid classification")
		return
	}
	if req.NoteIndex == nil || *req.NoteIndex < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid note index")
		return
	}
	if req.BibID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "bib_id is required")
		return
	}

	if _, err := h.store.RecordByBib(ctx, req.BibID); err != nil {
		storeError(w, err, "Record not found", "failed to query record", "bib_id", req.BibID)
		return
	}
	note, err := h.store.NoteByBibIndex(ctx, req.BibID, *req.NoteIndex)
	if err != nil {
		storeError(w, err, "Note not found", "failed to query note", "bib_id", req.BibID)
		return
	}

	user := currentUser(r)
	previous, err := h.store.UpsertVote(ctx, note.ID, user.ID, label)
	if err != nil {
		slog.Error("failed to record vote", "error", err, "note_id", note.ID, "user_id", user.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	// Recompute from the committed vote set
	dists, err := h.distributions(ctx, []string{note.ID})
	if err != nil {
		slog.Error("failed to compute distribution", "error", err, "note_id", note.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	voters, err := h.store.VotersByNote(ctx, []string{note.ID})
	if err != nil {
		slog.Error("failed to query voters", "error", err, "note_id", note.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	d := dists[note.ID]

	slog.Info("vote recorded",
		"bib_id", req.BibID,
		"note_index", note.Index,
		"user_id", user.ID,
		"classification", label,
		"previous", previous,
	)

	middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{
		Success:              true,
		Classification:       label,
		PreviousVote:         previous,
		Distribution:         d,
		Consensus:            d.Consensus,
		ConsensusProbability: d.ConsensusProbability,
		IsContentious:        d.IsContentious,
		Voters:               voters[note.ID],
	})
}

// VoteIdentical handles POST /vote-identical
//
// The label is applied to every note with exactly the same text. Each note
// is upserted on its own; failures are counted rather than aborting the
// batch.
func (h *VotingHandler) VoteIdentical(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.VoteIdenticalRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	label, err := classify.ParseLabel(req.Classification)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid classification")
		return
	}
	if req.NoteText == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Note text required")
		return
	}

	ids, err := h.store.IdenticalNoteIDs(ctx, req.NoteText)
	if err != nil {
		slog.Error("failed to query identical notes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if len(ids) == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "No matching notes found")
		return
	}

	user := currentUser(r)
	resp := models.VoteIdenticalResponse{
		Success:        true,
		Classification: label,
		TotalNotes:     len(ids),
	}
	for _, id := range ids {
		previous, err := h.store.UpsertVote(ctx, id, user.ID, label)
		switch {
		case err != nil:
			slog.Warn("failed to record bulk vote", "error", err, "note_id", id, "user_id", user.ID)
			resp.VotesFailed++
		case previous == classify.None:
			resp.VotesCreated++
		default:
			resp.VotesUpdated++
		}
	}
	resp.Success = resp.VotesFailed == 0

	slog.Info("bulk vote recorded",
		"user_id", user.ID,
		"classification", label,
		"total_notes", resp.TotalNotes,
		"created", resp.VotesCreated,
		"updated", resp.VotesUpdated,
		"failed", resp.VotesFailed,
	)

	middleware.JSONResponse(w, http.StatusOK, resp)
}
