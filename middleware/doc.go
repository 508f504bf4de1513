// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /records", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).

# Sessions

Sessions resolves the X-Session-Token header (or a bearer Authorization
header) to a user and stores it in the request context:

	sessions := middleware.NewSessions(store, cfg.SessionSalt)
	mux.HandleFunc("POST /vote", middleware.WithLogging(sessions.RequireUser(h.Vote)))
	mux.HandleFunc("GET /admin/dashboard", middleware.WithLogging(sessions.RequireAdmin(h.Dashboard)))

	user, _ := middleware.UserFromContext(r.Context())

Missing or expired sessions get 401, non-admins on admin routes get 403.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
*/
package middleware
