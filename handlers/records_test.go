// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/notetally/classify"
	"github.com/danielhkuo/notetally/models"
	"github.com/danielhkuo/notetally/testutil"
)

func TestListRecords(t *testing.T) {
	st := setupStore(t)
	cfg := testutil.GetTestConfig()
	handler := NewRecordsHandler(st, cfg)
	user := testutil.CreateTestUser(t, st, "alice", false)

	testutil.SeedRecords(t, st,
		testutil.Rec("b2", "Second", "x"),
		testutil.Rec("b1", "First", "a", "b"),
		testutil.Rec("b3", ""),
	)

	w := httptest.NewRecorder()
	handler.List(w, asUser(testutil.MakeRequest("GET", "/records", nil, nil), user))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp []models.RecordSummary
	testutil.AssertJSON(t, w, &resp)
	assert.Equal(t, []models.RecordSummary{
		{BibID: "b1", Title: "First", NoteCount: 2},
		{BibID: "b2", Title: "Second", NoteCount: 1},
		{BibID: "b3", Title: "No title", NoteCount: 0},
	}, resp)
}

func TestGetRecord(t *testing.T) {
	st := setupStore(t)
	cfg := testutil.GetTestConfig()
	handler := NewRecordsHandler(st, cfg)

	alice := testutil.CreateTestUser(t, st, "alice", false)
	bob := testutil.CreateTestUser(t, st, "bob", false)

	testutil.SeedRecords(t, st,
		testutil.Rec("b1", "First", "shared text"),
		testutil.Rec("b2", "Second", "shared text", "only here"),
		testutil.Rec("b3", "Third", "other"),
	)
	testutil.CastVote(t, st, alice.ID, "b2", 0, "w")
	testutil.CastVote(t, st, bob.ID, "b2", 0, "w")
	testutil.CastVote(t, st, bob.ID, "b2", 1, "o")

	tests := []struct {
		name           string
		bib            string
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.RecordDetailResponse)
	}{
		{
			name:           "middle record",
			bib:            "b2",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *models.RecordDetailResponse) {
				assert.Equal(t, "Second", resp.Title)
				require.Len(t, resp.Notes, 2)

				first := resp.Notes[0]
				assert.Equal(t, 0, first.Index)
				assert.Equal(t, 2, first.Distribution.Total)
				assert.Equal(t, classify.W, first.Distribution.Consensus)
				assert.Equal(t, "W: 100% (2)", first.Display)
				assert.Equal(t, classify.W, first.UserVote)
				assert.Equal(t, []string{"alice", "bob"}, first.Voters[classify.W])
				assert.Equal(t, 2, first.IdenticalCount)

				second := resp.Notes[1]
				assert.Equal(t, classify.None, second.UserVote)
				assert.Equal(t, 1, second.IdenticalCount)

				require.NotNil(t, resp.PrevBibID)
				require.NotNil(t, resp.NextBibID)
				assert.Equal(t, "b1", *resp.PrevBibID)
				assert.Equal(t, "b3", *resp.NextBibID)
				assert.Equal(t, 1, resp.CurrentIndex)
				assert.Equal(t, 3, resp.TotalRecords)

				assert.Equal(t, 4, resp.TotalNotes)
				assert.Equal(t, 1, resp.UserVotedNotes)
				assert.Equal(t, 2, resp.NotesWithVotes)
				assert.InDelta(t, 25.0, resp.UserProgress, 1e-9)
				assert.InDelta(t, 50.0, resp.OverallProgress, 1e-9)
			},
		},
		{
			name:           "first record has no previous",
			bib:            "b1",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *models.RecordDetailResponse) {
				assert.Nil(t, resp.PrevBibID)
				require.NotNil(t, resp.NextBibID)
				assert.Equal(t, "b2", *resp.NextBibID)

				require.Len(t, resp.Notes, 1)
				assert.Equal(t, "No votes yet", resp.Notes[0].Display)
				assert.Empty(t, resp.Notes[0].Voters)
			},
		},
		{
			name:           "last record has no next",
			bib:            "b3",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *models.RecordDetailResponse) {
				assert.Nil(t, resp.NextBibID)
				assert.Equal(t, 2, resp.CurrentIndex)
			},
		},
		{
			name:           "unknown record",
			bib:            "missing",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asUser(testutil.MakeRequest("GET", "/records/"+tt.bib, nil, nil), alice)
			req.SetPathValue("bib", tt.bib)
			w := httptest.NewRecorder()

			handler.Get(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.checkResponse != nil && w.Code == tt.expectedStatus {
				var resp models.RecordDetailResponse
				testutil.AssertJSON(t, w, &resp)
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestStartUnclassified(t *testing.T) {
	st := setupStore(t)
	cfg := testutil.GetTestConfig()
	handler := NewRecordsHandler(st, cfg)
	alice := testutil.CreateTestUser(t, st, "alice", false)

	start := func() (int, models.NavigateResponse) {
		w := httptest.NewRecorder()
		handler.StartUnclassified(w, asUser(testutil.MakeRequest("GET", "/navigate/start-unclassified", nil, nil), alice))
		var resp models.NavigateResponse
		if w.Code == http.StatusOK {
			testutil.AssertJSON(t, w, &resp)
		}
		return w.Code, resp
	}

	code, _ := start()
	assert.Equal(t, http.StatusNotFound, code, "no records")

	testutil.SeedRecords(t, st,
		testutil.Rec("b1", "First", "n0"),
		testutil.Rec("b2", "Second", "n0", "n1"),
	)
	testutil.CastVote(t, st, alice.ID, "b1", 0, "a")
	testutil.CastVote(t, st, alice.ID, "b2", 0, "a")

	code, resp := start()
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.NavigateResponse{BibID: "b2", Found: true}, resp)

	testutil.CastVote(t, st, alice.ID, "b2", 1, "a")

	code, resp = start()
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.NavigateResponse{BibID: "b1", Found: false}, resp)
}

func TestNavigateNext(t *testing.T) {
	st := setupStore(t)
	cfg := testutil.GetTestConfig()
	handler := NewRecordsHandler(st, cfg)

	alice := testutil.CreateTestUser(t, st, "alice", false)
	bob := testutil.CreateTestUser(t, st, "bob", false)

	testutil.SeedRecords(t, st,
		testutil.Rec("b1", "One", "n0"),
		testutil.Rec("b2", "Two", "n0"),
		testutil.Rec("b3", "Three", "n0"),
		testutil.Rec("b4", "Four", "n0"),
	)
	// b2 and b4 have votes; b4 is unknown. alice only voted on b2.
	testutil.CastVote(t, st, bob.ID, "b2", 0, "w")
	testutil.CastVote(t, st, alice.ID, "b2", 0, "w")
	testutil.CastVote(t, st, bob.ID, "b4", 0, "?")

	tests := []struct {
		name     string
		nav      func(w http.ResponseWriter, r *http.Request)
		current  string
		expected models.NavigateResponse
		status   int
	}{
		{"unclassified moves forward", handler.NextUnclassified, "b1", models.NavigateResponse{BibID: "b3", Found: true}, http.StatusOK},
		{"unclassified wraps around", handler.NextUnclassified, "b3", models.NavigateResponse{BibID: "b1", Found: true}, http.StatusOK},
		{"unclassified from voted record", handler.NextUnclassified, "b2", models.NavigateResponse{BibID: "b3", Found: true}, http.StatusOK},
		{"pending skips own votes", handler.NextPending, "b1", models.NavigateResponse{BibID: "b3", Found: true}, http.StatusOK},
		{"pending includes others' votes", handler.NextPending, "b3", models.NavigateResponse{BibID: "b4", Found: true}, http.StatusOK},
		{"unknown finds record", handler.NextUnknown, "b1", models.NavigateResponse{BibID: "b4", Found: true}, http.StatusOK},
		{"unknown only on current", handler.NextUnknown, "b4", models.NavigateResponse{BibID: "b4", Found: false}, http.StatusOK},
		{"unknown current record", handler.NextUnclassified, "zz", models.NavigateResponse{}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asUser(testutil.MakeRequest("GET", "/navigate/"+tt.current+"/next", nil, nil), alice)
			req.SetPathValue("bib", tt.current)
			w := httptest.NewRecorder()

			tt.nav(w, req)

			testutil.AssertStatus(t, w, tt.status)
			if tt.status == http.StatusOK {
				var resp models.NavigateResponse
				testutil.AssertJSON(t, w, &resp)
				assert.Equal(t, tt.expected, resp)
			}
		})
	}
}

func TestNextBib(t *testing.T) {
	order := []string{"b1", "b2", "b3", "b4", "b9"}
	tests := []struct {
		name     string
		current  string
		order    []string
		bibs     []string
		expected models.NavigateResponse
	}{
		{"next after current", "b2", order, []string{"b1", "b3"}, models.NavigateResponse{BibID: "b3", Found: true}},
		{"wraps to start", "b3", order, []string{"b1", "b2"}, models.NavigateResponse{BibID: "b1", Found: true}},
		{"unsorted candidates", "b1", order, []string{"b9", "b4", "b1"}, models.NavigateResponse{BibID: "b4", Found: true}},
		{"only current", "b1", order, []string{"b1"}, models.NavigateResponse{BibID: "b1"}},
		{"no candidates", "b1", order, nil, models.NavigateResponse{BibID: "b1"}},
		// collation order from the database, not byte order
		{"follows database order", "a", []string{"a", "b10", "B2", "c"}, []string{"c", "B2"}, models.NavigateResponse{BibID: "B2", Found: true}},
		{"wraps in database order", "c", []string{"a", "b10", "B2", "c"}, []string{"B2", "b10"}, models.NavigateResponse{BibID: "b10", Found: true}},
		{"candidate outside order", "b1", []string{"b1", "b2"}, []string{"zz"}, models.NavigateResponse{BibID: "b1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, nextBib(tt.current, tt.order, tt.bibs))
		})
	}
}
