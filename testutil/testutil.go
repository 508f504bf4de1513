// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/notetally/auth"
	"github.com/danielhkuo/notetally/classify"
	"github.com/danielhkuo/notetally/cliparse"
	"github.com/danielhkuo/notetally/db"
	"github.com/danielhkuo/notetally/middleware"
	"github.com/danielhkuo/notetally/models"
	"github.com/danielhkuo/notetally/settings"
	"github.com/danielhkuo/notetally/store"
	"github.com/danielhkuo/notetally/xmlio"
)

// SetupTestDB creates a fresh SQLite database in a temp dir with the full
// schema and default settings. It is closed when the test ends.
func SetupTestDB(t *testing.T) *db.DB {
	t.Helper()

	url := "file:" + filepath.Join(t.TempDir(), "notetally.db")
	conn, err := db.Open(db.TypeSQLite, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	ctx := context.Background()
	if err := db.CreateSchema(ctx, conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	if err := settings.New(store.New(conn)).Seed(ctx); err != nil {
		t.Fatalf("Failed to seed settings: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		DatabaseType:     db.TypeSQLite,
		SessionSalt:      "test-session-salt",
		AdminUsername:    cliparse.DefaultAdminUsername,
		ExportConfidence: cliparse.DefaultExportConfidence,
		MaxUploadBytes:   1 << 20,
		SessionTTL:       time.Hour,
	}
}

// Rec builds an import record whose notes carry no type.
func Rec(bib, title string, notes ...string) xmlio.Record {
	rec := xmlio.Record{BibID: bib, Title: title}
	for _, text := range notes {
		rec.Notes = append(rec.Notes, xmlio.Note{Text: text})
	}
	return rec
}

// SeedRecords imports records and fails the test on any import error.
func SeedRecords(t *testing.T, st *store.Store, records ...xmlio.Record) {
	t.Helper()

	res, err := st.ImportRecords(context.Background(), records, store.ImportOptions{})
	if err != nil {
		t.Fatalf("Failed to import records: %v", err)
	}
	if len(res.Errors) > 0 {
		t.Fatalf("Import reported errors: %v", res.Errors)
	}
}

// CreateTestUser creates (or fetches) a user.
func CreateTestUser(t *testing.T, st *store.Store, username string, admin bool) models.User {
	t.Helper()

	user, _, err := st.GetOrCreateUser(context.Background(), username, admin)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// LoginTestUser creates a user with a live session and returns its token.
func LoginTestUser(t *testing.T, st *store.Store, cfg cliparse.Config, username string, admin bool) (models.User, string) {
	t.Helper()

	user := CreateTestUser(t, st, username, admin)

	token, err := auth.GenerateSessionToken()
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	hash, err := auth.HashSessionToken(token, cfg.SessionSalt)
	if err != nil {
		t.Fatalf("Failed to hash token: %v", err)
	}
	if err := st.CreateSession(context.Background(), hash, user.ID, cfg.SessionTTL); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	return user, token
}

// CastVote records a vote by bib and note index.
func CastVote(t *testing.T, st *store.Store, userID, bib string, index int, label string) {
	t.Helper()

	ctx := context.Background()
	l, err := classify.ParseLabel(label)
	if err != nil {
		t.Fatalf("Invalid label %q: %v", label, err)
	}
	note, err := st.NoteByBibIndex(ctx, bib, index)
	if err != nil {
		t.Fatalf("Failed to find note %s/%d: %v", bib, index, err)
	}
	if _, err := st.UpsertVote(ctx, note.ID, userID, l); err != nil {
		t.Fatalf("Failed to cast vote: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AuthHeader returns headers carrying a session token.
func AuthHeader(token string) map[string]string {
	return map[string]string{middleware.SessionHeader: token}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
