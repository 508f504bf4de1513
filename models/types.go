package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/notetally/classify"
)

// Request types

type LoginRequest struct {
	Username string `json:"username"`
}

type VoteRequest struct {
	BibID          string `json:"bib_id"`
	NoteIndex      *int   `json:"note_index"`
	Classification string `json:"classification"`
}

// UnmarshalJSON accepts note_index as a number or a numeric string. Any
// other value leaves NoteIndex nil.
func (r *VoteRequest) UnmarshalJSON(data []byte) error {
	type plain VoteRequest
	var raw struct {
		plain
		NoteIndex json.RawMessage `json:"note_index"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = VoteRequest(raw.plain)
	r.NoteIndex = nil

	text := strings.TrimSpace(string(raw.NoteIndex))
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
	}
	if n, err := strconv.Atoi(text); err == nil {
		r.NoteIndex = &n
	}
	return nil
}

type VoteIdenticalRequest struct {
	NoteText       string `json:"note_text"`
	Classification string `json:"classification"`
}

type UpdateSettingsRequest struct {
	ContentiousThreshold *float64 `json:"contentious_threshold"`
	MinVotesContentious  *int     `json:"min_votes_contentious"`
	MinVotesExport       *int     `json:"min_votes_export"`
}

// Response types

type LoginResponse struct {
	Token   string `json:"token"`
	User    User   `json:"user"`
	Created bool   `json:"created"`
	Message string `json:"message"`
}

type VoteResponse struct {
	Success              bool                        `json:"success"`
	Classification       classify.Label              `json:"classification"`
	PreviousVote         classify.Label              `json:"previous_vote"`
	Distribution         classify.Distribution       `json:"distribution"`
	Consensus            classify.Label              `json:"consensus"`
	ConsensusProbability float64                     `json:"consensus_probability"`
	IsContentious        bool                        `json:"is_contentious"`
	Voters               map[classify.Label][]string `json:"voters"`
}

type VoteIdenticalResponse struct {
	Success        bool           `json:"success"`
	Classification classify.Label `json:"classification"`
	TotalNotes     int            `json:"total_notes"`
	VotesCreated   int            `json:"votes_created"`
	VotesUpdated   int            `json:"votes_updated"`
	VotesFailed    int            `json:"votes_failed"`
}

type RecordSummary struct {
	BibID     string `json:"bib" db:"bib_id"`
	Title     string `json:"title" db:"title"`
	NoteCount int    `json:"notes" db:"note_count"`
}

type NoteView struct {
	Text           string                      `json:"text"`
	Index          int                         `json:"index"`
	Distribution   classify.Distribution       `json:"distribution"`
	Display        string                      `json:"display"`
	UserVote       classify.Label              `json:"user_vote"`
	Voters         map[classify.Label][]string `json:"voters"`
	IdenticalCount int                         `json:"identical_count"`
}

type RecordDetailResponse struct {
	BibID           string     `json:"bib"`
	Title           string     `json:"title"`
	Notes           []NoteView `json:"notes"`
	PrevBibID       *string    `json:"prev_bib,omitempty"`
	NextBibID       *string    `json:"next_bib,omitempty"`
	CurrentIndex    int        `json:"current_index"`
	TotalRecords    int        `json:"total_records"`
	UserVotedNotes  int        `json:"user_voted_notes"`
	TotalNotes      int        `json:"total_notes"`
	UserProgress    float64    `json:"user_progress"`
	NotesWithVotes  int        `json:"notes_with_votes"`
	OverallProgress float64    `json:"overall_progress"`
}

type NavigateResponse struct {
	BibID string `json:"bib_id"`
	Found bool   `json:"found"`
}

// FilteredNote is a note listed by one of the filter views.
type FilteredNote struct {
	Text         string                `json:"text"`
	TextFull     string                `json:"text_full"`
	Index        int                   `json:"index"`
	Distribution classify.Distribution `json:"distribution"`
}

type FilteredRecord struct {
	BibID      string         `json:"bib"`
	Title      string         `json:"title"`
	Notes      []FilteredNote `json:"notes"`
	TotalNotes int            `json:"total_notes"`
	MatchCount int            `json:"match_count"`
}

type FilterResponse struct {
	Filter       string           `json:"filter"`
	Records      []FilteredRecord `json:"records"`
	TotalRecords int              `json:"total_records"`
}

type SettingsResponse struct {
	ContentiousThreshold float64 `json:"contentious_threshold"`
	MinVotesContentious  int     `json:"min_votes_contentious"`
	MinVotesExport       int     `json:"min_votes_export"`
	ExportConfidence     float64 `json:"export_confidence"`
}

type DashboardStats struct {
	TotalRecords     int     `json:"total_records"`
	TotalNotes       int     `json:"total_notes"`
	TotalVotes       int     `json:"total_votes"`
	TotalUsers       int     `json:"total_users"`
	AvgVotesPerNote  float64 `json:"avg_votes_per_note"`
	ContentiousNotes int     `json:"contentious_notes"`
	UnknownNotes     int     `json:"unknown_notes"`
}

type Contributor struct {
	Username  string `json:"username" db:"username"`
	VoteCount int    `json:"vote_count" db:"vote_count"`
}

type LabelCount struct {
	Classification classify.Label `json:"classification" db:"classification"`
	Count          int            `json:"count" db:"count"`
}

type Activity struct {
	Username       string         `json:"username" db:"username"`
	Classification classify.Label `json:"classification" db:"classification"`
	RecordBibID    string         `json:"record_bib" db:"bib_id"`
	VotedAt        time.Time      `json:"voted_at" db:"voted_at"`
	VotedAgo       string         `json:"voted_ago" db:"-"`
}

type DashboardResponse struct {
	Stats                 DashboardStats `json:"stats"`
	TopContributors       []Contributor  `json:"top_contributors"`
	ClassificationSummary []LabelCount   `json:"classification_distribution"`
	RecentActivity        []Activity     `json:"recent_activity"`
}

type ImportResponse struct {
	RecordsCreated int      `json:"records_created"`
	NotesCreated   int      `json:"notes_created"`
	VotesCreated   int      `json:"votes_created"`
	Errors         []string `json:"errors"`
}

// Domain types

type User struct {
	ID        string    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	IsAdmin   bool      `json:"is_admin" db:"is_admin"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Record struct {
	ID             string    `json:"id" db:"id"`
	BibID          string    `json:"bib_id" db:"bib_id"`
	Title          string    `json:"title" db:"title"`
	SourceUserID   *string   `json:"source_user_id,omitempty" db:"source_user_id"`
	SourceFilename *string   `json:"source_filename,omitempty" db:"source_filename"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type Note struct {
	ID        string    `json:"id" db:"id"`
	RecordID  string    `json:"record_id" db:"record_id"`
	Index     int       `json:"index" db:"note_index"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Vote struct {
	ID             string         `json:"id" db:"id"`
	NoteID         string         `json:"note_id" db:"note_id"`
	UserID         string         `json:"user_id" db:"user_id"`
	Classification classify.Label `json:"classification" db:"classification"`
	VotedAt        time.Time      `json:"voted_at" db:"voted_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
