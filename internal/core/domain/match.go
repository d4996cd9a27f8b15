package domain

import "time"

// Confidence labels how trustworthy a final match score is.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceMed  Confidence = "med"
	ConfidenceLow  Confidence = "low"
)

// Hints carries optional expectations about the track being matched.
// When present they weight candidate scoring; they never gate it.
type Hints struct {
	ExpectedYear    int      `json:"expected_year,omitempty"`
	ExpectedKey     string   `json:"expected_key,omitempty"`
	ExpectedMixType string   `json:"expected_mix_type,omitempty"`
	GenericPhrases  []string `json:"generic_phrases,omitempty"`
}

// MatchRequest is the full input for one track-matching run. Queries is
// an ordered list built upstream; the engine consumes it as-is.
type MatchRequest struct {
	TrackIndex int           `json:"track_index"`
	Title      string        `json:"title"`
	Artists    string        `json:"artists"`
	TitleOnly  bool          `json:"title_only"`
	Queries    []string      `json:"queries"`
	Hints      Hints         `json:"hints"`
	Budget     time.Duration `json:"budget,omitempty"`
}

// QueryAuditEntry records one executed query. Entries are append-only
// and never mutated after creation.
type QueryAuditEntry struct {
	QueryIndex      int       `json:"query_index"`
	QueryText       string    `json:"query_text"`
	CandidatesFound int       `json:"candidates_found"`
	Timestamp       time.Time `json:"timestamp"`
}

// Stop reasons recorded on a MatchResult.
const (
	StopEarlyExit       = "early_exit"
	StopExhausted       = "exhausted"
	StopBudgetExhausted = "budget_exhausted"
	StopCanceled        = "canceled"
)

// MatchRecord is one row of persisted match history.
type MatchRecord struct {
	RunID        string    `json:"run_id"`
	TrackIndex   int       `json:"track_index"`
	TrackTitle   string    `json:"track_title"`
	TrackArtists string    `json:"track_artists"`
	BestURL      string    `json:"best_url,omitempty"`
	BestTitle    string    `json:"best_title,omitempty"`
	TotalScore   float64   `json:"total_score,omitempty"`
	Confidence   string    `json:"confidence"`
	StopReason   string    `json:"stop_reason"`
	QueriesRun   int       `json:"queries_run"`
	CreatedAt    time.Time `json:"created_at"`
}

// MatchResult is the outcome of one track-matching run. Best is nil when
// no query produced a candidate; the audit trail still records every
// attempted query. Consumed read-only downstream.
type MatchResult struct {
	Best           *Candidate        `json:"best,omitempty"`
	All            []Candidate       `json:"all_candidates"`
	Audit          []QueryAuditEntry `json:"audit_trail"`
	LastQueryIndex int               `json:"last_query_index"`
	Confidence     Confidence        `json:"confidence"`
	StopReason     string            `json:"stop_reason"`
}
