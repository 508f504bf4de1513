// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/notetally/auth"
	"github.com/danielhkuo/notetally/cliparse"
	"github.com/danielhkuo/notetally/middleware"
	"github.com/danielhkuo/notetally/models"
	"github.com/danielhkuo/notetally/store"
)

type AuthHandler struct {
	base
}

func NewAuthHandler(st *store.Store, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{base: newBase(st, cfg)}
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	username, err := auth.NormalizeUsername(req.Username)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	isAdmin := auth.IsAdminUsername(username, h.cfg.AdminUsername)
	user, created, err := h.store.GetOrCreateUser(r.Context(), username, isAdmin)
	if err != nil {
		slog.Error("failed to get or create user", "error", err, "username", username)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		slog.Error("failed to generate session token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}
	hash, err := auth.HashSessionToken(token, h.cfg.SessionSalt)
	if err != nil {
		slog.Error("failed to hash session token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}
	if err := h.store.CreateSession(r.Context(), hash, user.ID, h.cfg.SessionTTL); err != nil {
		slog.Error("failed to create session", "error", err, "user_id", user.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	message := "Welcome back, " + user.Username + "!"
	if created {
		message = "Welcome, " + user.Username + "! Your account has been created."
	}
	if isAdmin {
		message += " Admin privileges are active."
	}

	slog.Info("user logged in", "user_id", user.ID, "username", user.Username, "created", created)

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	middleware.JSONResponse(w, status, models.LoginResponse{
		Token:   token,
		User:    user,
		Created: created,
		Message: message,
	})
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	hash, err := auth.HashSessionToken(middleware.SessionToken(r), h.cfg.SessionSalt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid session token")
		return
	}

	if err := h.store.DeleteSession(r.Context(), hash); err != nil {
		slog.Error("failed to delete session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	user := currentUser(r)
	slog.Info("user logged out", "user_id", user.ID)

	middleware.JSONResponse(w, http.StatusOK, map[string]string{
		"message": "Goodbye, " + user.Username + "!",
	})
}

// Me handles GET /me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, currentUser(r))
}
