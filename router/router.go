// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/notetally/cliparse"
	"github.com/danielhkuo/notetally/handlers"
	"github.com/danielhkuo/notetally/middleware"
	"github.com/danielhkuo/notetally/store"
)

func NewRouter(st *store.Store, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(st, cfg)
	recordsHandler := handlers.NewRecordsHandler(st, cfg)
	votingHandler := handlers.NewVotingHandler(st, cfg)
	filtersHandler := handlers.NewFiltersHandler(st, cfg)
	adminHandler := handlers.NewAdminHandler(st, cfg)

	sessions := middleware.NewSessions(st, cfg.SessionSalt)
	user := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(sessions.RequireUser(h))
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(sessions.RequireAdmin(h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := st.DB().PingContext(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Sessions
	mux.HandleFunc("POST /login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("POST /logout", user(authHandler.Logout))
	mux.HandleFunc("GET /me", user(authHandler.Me))

	// Records and navigation
	mux.HandleFunc("GET /records", user(recordsHandler.List))
	mux.HandleFunc("GET /records/{bib}", user(recordsHandler.Get))
	mux.HandleFunc("GET /navigate/start-unclassified", user(recordsHandler.StartUnclassified))
	mux.HandleFunc("GET /navigate/{bib}/next-unclassified", user(recordsHandler.NextUnclassified))
	mux.HandleFunc("GET /navigate/{bib}/next-pending", user(recordsHandler.NextPending))
	mux.HandleFunc("GET /navigate/{bib}/next-unknown", user(recordsHandler.NextUnknown))

	// Voting
	mux.HandleFunc("POST /vote", user(votingHandler.Vote))
	mux.HandleFunc("POST /vote-identical", user(votingHandler.VoteIdentical))

	// Filter views
	mux.HandleFunc("GET /filters/unknown", user(filtersHandler.Unknown))
	mux.HandleFunc("GET /filters/contentious", user(filtersHandler.Contentious))
	mux.HandleFunc("GET /filters/pending", user(filtersHandler.Pending))

	// Administration
	mux.HandleFunc("GET /admin/dashboard", admin(adminHandler.Dashboard))
	mux.HandleFunc("GET /admin/settings", admin(adminHandler.GetSettings))
	mux.HandleFunc("PUT /admin/settings", admin(adminHandler.UpdateSettings))
	mux.HandleFunc("POST /admin/import", admin(adminHandler.Import))
	mux.HandleFunc("GET /admin/export", admin(adminHandler.Export))
	mux.HandleFunc("DELETE /admin/data", admin(adminHandler.ClearData))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("notetally API v1"))
	})

	return mux
}
