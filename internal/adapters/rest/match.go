package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/calliope-labs/cratematch/internal/core/domain"
	"github.com/calliope-labs/cratematch/internal/core/ports"
	"github.com/calliope-labs/cratematch/internal/worker"
)

const errCodeNoConfidentMatch = "NO_CONFIDENT_MATCH"

// matchRequest defines what the client sends us. BudgetMs is carried as
// plain milliseconds instead of a Go duration string.
type matchRequest struct {
	TrackIndex int          `json:"track_index"`
	Title      string       `json:"title"`
	Artists    string       `json:"artists"`
	TitleOnly  bool         `json:"title_only"`
	Queries    []string     `json:"queries,omitempty"`
	Hints      domain.Hints `json:"hints,omitempty"`
	BudgetMs   int64        `json:"budget_ms,omitempty"`
}

func (r matchRequest) toDomain() domain.MatchRequest {
	return domain.MatchRequest{
		TrackIndex: r.TrackIndex,
		Title:      r.Title,
		Artists:    r.Artists,
		TitleOnly:  r.TitleOnly,
		Queries:    r.Queries,
		Hints:      r.Hints,
		Budget:     time.Duration(r.BudgetMs) * time.Millisecond,
	}
}

// Match handles POST /match
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	// 1. Decode the Request Body
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// 2. Call the Service (The Core Logic)
	// We pass the Context so the engine stops when the client disconnects
	res, err := h.svc.FindBestMatch(r.Context(), req.toDomain())
	if err != nil {
		if errors.Is(err, domain.ErrEmptyTitle) {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// 3. Optionally gate on a confidence floor
	if min := r.URL.Query().Get("min_confidence"); min != "" && !meetsConfidence(res.Confidence, min) {
		matchErr := ports.NoConfidentMatchError{Title: req.Title, Artists: req.Artists}
		writeErrorWithCode(w, http.StatusUnprocessableEntity, matchErr.Error(), errCodeNoConfidentMatch)
		return
	}

	// 4. Return the Response
	writeJSON(w, http.StatusOK, res)
}

// meetsConfidence reports whether got clears the requested floor.
func meetsConfidence(got domain.Confidence, floor string) bool {
	rank := map[domain.Confidence]int{
		domain.ConfidenceLow:  0,
		domain.ConfidenceMed:  1,
		domain.ConfidenceHigh: 2,
	}
	want, ok := rank[domain.Confidence(floor)]
	if !ok {
		return true
	}
	return rank[got] >= want
}

// ListResults handles GET /results
func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		writeError(w, http.StatusNotImplemented, "match history not configured")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := h.cache.ListResults(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []domain.MatchRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

type batchRequest struct {
	Tracks []matchRequest `json:"tracks"`
}

type batchJob struct {
	JobID      string `json:"job_id"`
	TrackIndex int    `json:"track_index"`
}

type batchResponse struct {
	Jobs    []batchJob `json:"jobs"`
	Dropped int        `json:"dropped"`
}

// MatchBatch handles POST /match/batch
func (h *Handler) MatchBatch(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	if h.pool == nil {
		writeError(w, http.StatusNotImplemented, "batch matching not configured")
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Tracks) == 0 {
		writeError(w, http.StatusBadRequest, "tracks is required")
		return
	}
	for _, t := range req.Tracks {
		if t.Title == "" {
			writeError(w, http.StatusBadRequest, "every track needs a title")
			return
		}
	}

	resp := batchResponse{Jobs: make([]batchJob, 0, len(req.Tracks))}
	for _, t := range req.Tracks {
		job := worker.NewJob(t.toDomain())
		if !h.pool.Submit(job) {
			resp.Dropped++
			continue
		}
		resp.Jobs = append(resp.Jobs, batchJob{JobID: job.ID, TrackIndex: t.TrackIndex})
	}

	writeJSON(w, http.StatusAccepted, resp)
}
