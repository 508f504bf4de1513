// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/notetally/classify"
	"github.com/danielhkuo/notetally/cliparse"
	"github.com/danielhkuo/notetally/middleware"
	"github.com/danielhkuo/notetally/models"
	"github.com/danielhkuo/notetally/settings"
	"github.com/danielhkuo/notetally/store"
	"github.com/danielhkuo/notetally/xmlio"
)

const (
	topContributorsLimit = 10
	recentActivityLimit  = 20
)

type AdminHandler struct {
	base
}

func NewAdminHandler(st *store.Store, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{base: newBase(st, cfg)}
}

// Dashboard handles GET /admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.store.Totals(ctx)
	if err != nil {
		slog.Error("failed to query totals", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	dists, err := h.distributions(ctx, nil)
	if err != nil {
		slog.Error("failed to compute distributions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	for _, d := range dists {
		if d.IsContentious {
			stats.ContentiousNotes++
		}
		if d.Consensus == classify.Unknown {
			stats.UnknownNotes++
		}
	}

	top, err := h.store.TopContributors(ctx, topContributorsLimit)
	if err != nil {
		slog.Error("failed to query contributors", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	summary, err := h.store.LabelSummary(ctx)
	if err != nil {
		slog.Error("failed to query label summary", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	recent, err := h.store.RecentActivity(ctx, recentActivityLimit)
	if err != nil {
		slog.Error("failed to query recent activity", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	for i := range recent {
		recent[i].VotedAgo = humanize.Time(recent[i].VotedAt)
	}

	middleware.JSONResponse(w, http.StatusOK, models.DashboardResponse{
		Stats:                 stats,
		TopContributors:       top,
		ClassificationSummary: summary,
		RecentActivity:        recent,
	})
}

// GetSettings handles GET /admin/settings
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	resp, err := h.currentSettings(r)
	if err != nil {
		slog.Error("failed to read settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// UpdateSettings handles PUT /admin/settings
//
// Every supplied value is validated before any is written, so a rejected
// request leaves all settings unchanged.
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.UpdateSettingsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ContentiousThreshold != nil {
		if err := settings.ValidateThreshold(*req.ContentiousThreshold); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.MinVotesContentious != nil {
		if err := settings.ValidateMinVotes(*req.MinVotesContentious); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.MinVotesExport != nil {
		if err := settings.ValidateExportMinVotes(*req.MinVotesExport); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	var err error
	if req.ContentiousThreshold != nil {
		err = errors.Join(err, h.settings.SetThreshold(ctx, *req.ContentiousThreshold))
	}
	if req.MinVotesContentious != nil {
		err = errors.Join(err, h.settings.SetMinVotes(ctx, *req.MinVotesContentious))
	}
	if req.MinVotesExport != nil {
		err = errors.Join(err, h.settings.SetExportMinVotes(ctx, *req.MinVotesExport))
	}
	if err != nil {
		slog.Error("failed to update settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	resp, err := h.currentSettings(r)
	if err != nil {
		slog.Error("failed to read settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("settings updated",
		"contentious_threshold", resp.ContentiousThreshold,
		"min_votes_contentious", resp.MinVotesContentious,
		"min_votes_export", resp.MinVotesExport,
	)

	middleware.JSONResponse(w, http.StatusOK, resp)
}

func (h *AdminHandler) currentSettings(r *http.Request) (models.SettingsResponse, error) {
	ctx := r.Context()

	params, err := h.settings.Params(ctx)
	if err != nil {
		return models.SettingsResponse{}, err
	}
	exportMin, err := h.settings.ExportMinVotes(ctx)
	if err != nil {
		return models.SettingsResponse{}, err
	}

	return models.SettingsResponse{
		ContentiousThreshold: params.Threshold,
		MinVotesContentious:  params.MinVotes,
		MinVotesExport:       exportMin,
		ExportConfidence:     h.cfg.ExportConfidence,
	}, nil
}

// Import handles POST /admin/import
//
// Expects a multipart form with an "xml_file" part. When "create_votes"
// is set, valid type attributes become votes by the importing admin.
func (h *AdminHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("xml_file")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".xml") {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Only XML files are allowed")
		return
	}

	records, err := xmlio.Decode(file)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	user := currentUser(r)
	result, err := h.store.ImportRecords(r.Context(), records, store.ImportOptions{
		UserID:      user.ID,
		Filename:    header.Filename,
		CreateVotes: formBool(r.FormValue("create_votes")),
	})
	if err != nil {
		slog.Error("import aborted", "error", err, "filename", header.Filename)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Import failed")
		return
	}

	slog.Info("records imported",
		"filename", header.Filename,
		"user_id", user.ID,
		"records", result.RecordsCreated,
		"notes", result.NotesCreated,
		"votes", result.VotesCreated,
		"errors", len(result.Errors),
	)

	middleware.JSONResponse(w, http.StatusOK, result)
}

// formBool accepts checkbox style values as well as strconv booleans.
func formBool(v string) bool {
	if strings.EqualFold(v, "on") {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}

// Export handles GET /admin/export?confidence=0.6&include_stats=true
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	confidence := h.cfg.ExportConfidence
	if v := query.Get("confidence"); v != "" {
		c, err := strconv.ParseFloat(v, 64)
		if err != nil || c < 0 || c > 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Confidence threshold must be between 0 and 1")
			return
		}
		confidence = c
	}

	withStats := true
	if v := query.Get("include_stats"); v != "" {
		withStats = formBool(v)
	}

	minVotes, err := h.settings.ExportMinVotes(ctx)
	if err != nil {
		slog.Error("failed to read export settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	records, err := h.store.ListRecords(ctx)
	if err != nil {
		slog.Error("failed to list records", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	notes, err := h.store.Notes(ctx, "")
	if err != nil {
		slog.Error("failed to query notes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	dists, err := h.distributions(ctx, refIDs(notes))
	if err != nil {
		slog.Error("failed to compute distributions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	notesByBib := make(map[string][]xmlio.Note, len(records))
	exported := 0
	for _, n := range notes {
		if xn, ok := xmlio.ExportNote(n.Text, dists[n.ID], confidence, minVotes, withStats); ok {
			notesByBib[n.BibID] = append(notesByBib[n.BibID], xn)
			exported++
		}
	}

	doc := make([]xmlio.Record, len(records))
	for i, rec := range records {
		doc[i] = xmlio.Record{BibID: rec.BibID, Title: rec.Title, Notes: notesByBib[rec.BibID]}
	}

	var buf bytes.Buffer
	if err := xmlio.Encode(&buf, doc); err != nil {
		slog.Error("failed to encode export", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Export failed")
		return
	}

	filename := fmt.Sprintf("classification_export_%s.xml", time.Now().Format("20060102_150405"))
	slog.Info("export generated",
		"records", len(doc),
		"notes", exported,
		"confidence", confidence,
		"min_votes", minVotes,
	)

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ClearData handles DELETE /admin/data
func (h *AdminHandler) ClearData(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearData(r.Context()); err != nil {
		slog.Error("failed to clear data", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to clear data")
		return
	}

	slog.Warn("all records, notes and votes cleared", "user_id", currentUser(r).ID)

	middleware.JSONResponse(w, http.StatusOK, map[string]string{
		"message": "All records, notes and votes have been deleted",
	})
}
