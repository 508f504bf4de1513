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

const (
	FilterUnknown     = "unknown"
	FilterContentious = "contentious"
	FilterPending     = "pending"
)

// FiltersHandler lists notes needing follow-up, grouped by record.
type FiltersHandler struct {
	base
}

func NewFiltersHandler(st *store.Store, cfg cliparse.Config) *FiltersHandler {
	return &FiltersHandler{base: newBase(st, cfg)}
}

// Unknown handles GET /filters/unknown
func (h *FiltersHandler) Unknown(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, FilterUnknown, isUnknown)
}

// Contentious handles GET /filters/contentious
func (h *FiltersHandler) Contentious(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, FilterContentious, isContentious)
}

// Pending handles GET /filters/pending
func (h *FiltersHandler) Pending(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	voted, err := h.store.VotedNoteIDs(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to query voted notes", "error", err, "user_id", user.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	h.respond(w, r, FilterPending, func(n store.NoteRef, _ classify.Distribution) bool {
		return !voted[n.ID]
	})
}

func (h *FiltersHandler) respond(w http.ResponseWriter, r *http.Request, filter string, keep func(store.NoteRef, classify.Distribution) bool) {
	records, err := h.scan(r.Context(), keep)
	if err != nil {
		slog.Error("failed to filter notes", "error", err, "filter", filter)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.FilterResponse{
		Filter:       filter,
		Records:      records,
		TotalRecords: len(records),
	})
}
