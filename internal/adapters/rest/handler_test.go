package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/calliope-labs/cratematch/internal/core/domain"
	"github.com/calliope-labs/cratematch/internal/metrics"
	"github.com/calliope-labs/cratematch/internal/worker"
)

// --- Mocks ---

type mockEngine struct {
	mu       sync.Mutex
	requests []domain.MatchRequest
	result   domain.MatchResult
	err      error
}

func (m *mockEngine) FindBestMatch(_ context.Context, req domain.MatchRequest) (domain.MatchResult, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.err != nil {
		return domain.MatchResult{}, m.err
	}
	return m.result, nil
}

func highResult() domain.MatchResult {
	best := domain.Candidate{
		Title:  "Tighter (CamelPhat Remix)",
		Artist: "Adam Port, Stryv",
		URL:    "https://catalog.test/track/tighter/1",
		Total:  96.5,
	}
	return domain.MatchResult{
		Best:       &best,
		All:        []domain.Candidate{best},
		Confidence: domain.ConfidenceHigh,
		StopReason: domain.StopEarlyExit,
	}
}

type mockCache struct {
	records []domain.MatchRecord
	err     error
	limits  []int
}

func (m *mockCache) GetCandidate(_ context.Context, _ string) (domain.Candidate, bool, error) {
	return domain.Candidate{}, false, nil
}

func (m *mockCache) PutCandidate(_ context.Context, _ string, _ domain.Candidate) error {
	return nil
}

func (m *mockCache) SaveResult(_ context.Context, _ string, _ domain.Track, _ domain.MatchResult) error {
	return nil
}

func (m *mockCache) ListResults(_ context.Context, limit int) ([]domain.MatchRecord, error) {
	m.limits = append(m.limits, limit)
	return m.records, m.err
}

// --- Tests ---

func TestHandler_Match(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		body           string
		contentType    string
		result         domain.MatchResult
		svcErr         error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Success: returns match result",
			target:         "/match",
			body:           `{"track_index":3,"title":"Tighter","artists":"Adam Port, Stryv"}`,
			contentType:    "application/json",
			result:         highResult(),
			expectedStatus: http.StatusOK,
			expectedBody:   `"confidence":"high"`,
		},
		{
			name:           "Bad Request: empty title",
			target:         "/match",
			body:           `{"artists":"Adam Port"}`,
			contentType:    "application/json",
			svcErr:         fmt.Errorf("service: match run failed: %w", domain.ErrEmptyTitle),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "title is required",
		},
		{
			name:           "Bad Request: malformed json",
			target:         "/match",
			body:           `{invalid-json`,
			contentType:    "application/json",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid request body",
		},
		{
			name:           "Unsupported Media Type: missing content type",
			target:         "/match",
			body:           `{"title":"Tighter"}`,
			contentType:    "",
			expectedStatus: http.StatusUnsupportedMediaType,
			expectedBody:   "Content-Type must be application/json",
		},
		{
			name:           "Unprocessable: confidence below requested floor",
			target:         "/match?min_confidence=high",
			body:           `{"title":"Tighter","artists":"Adam Port"}`,
			contentType:    "application/json",
			result:         domain.MatchResult{Confidence: domain.ConfidenceLow, StopReason: domain.StopExhausted},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"code":"NO_CONFIDENT_MATCH"`,
		},
		{
			name:           "Success: unknown floor value is ignored",
			target:         "/match?min_confidence=banana",
			body:           `{"title":"Tighter","artists":"Adam Port"}`,
			contentType:    "application/json",
			result:         domain.MatchResult{Confidence: domain.ConfidenceLow, StopReason: domain.StopExhausted},
			expectedStatus: http.StatusOK,
			expectedBody:   `"confidence":"low"`,
		},
		{
			name:           "Service Error: engine failure -> StatusInternalServerError",
			target:         "/match",
			body:           `{"title":"Tighter"}`,
			contentType:    "application/json",
			svcErr:         errors.New("service: match run failed: catalog down"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "catalog down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockEngine{result: tt.result, err: tt.svcErr}
			h := NewHandler(engine, nil, nil, nil)

			req := httptest.NewRequest(http.MethodPost, tt.target, bytes.NewBufferString(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("Status Code: got %d, want %d, body: %s", rec.Code, tt.expectedStatus, strings.TrimSpace(rec.Body.String()))
			}
			if tt.expectedBody != "" && !strings.Contains(rec.Body.String(), tt.expectedBody) {
				t.Errorf("Response Body: got %q, want substring %q", rec.Body.String(), tt.expectedBody)
			}
		})
	}
}

func TestHandler_MatchForwardsBudget(t *testing.T) {
	engine := &mockEngine{result: highResult()}
	h := NewHandler(engine, nil, nil, nil)

	body := `{"title":"Tighter","artists":"Adam Port","budget_ms":2500}`
	req := httptest.NewRequest(http.MethodPost, "/match", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if len(engine.requests) != 1 {
		t.Fatalf("engine calls: got %d, want 1", len(engine.requests))
	}
	if got := engine.requests[0].Budget.Milliseconds(); got != 2500 {
		t.Fatalf("budget: got %dms, want 2500ms", got)
	}
}

func TestHandler_MatchBatch(t *testing.T) {
	t.Run("Accepted: queues every track", func(t *testing.T) {
		engine := &mockEngine{result: highResult()}
		pool := worker.NewPool(engine, nil, 10)
		pool.Start(1)
		defer pool.Stop()

		h := NewHandler(engine, pool, nil, nil)

		body := `{"tracks":[{"track_index":0,"title":"Tighter","artists":"Adam Port"},{"track_index":1,"title":"Strobe","artists":"deadmau5"}]}`
		req := httptest.NewRequest(http.MethodPost, "/match/batch", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusAccepted {
			t.Fatalf("status: got %d, want %d, body: %s", rec.Code, http.StatusAccepted, rec.Body.String())
		}

		var resp struct {
			Jobs []struct {
				JobID      string `json:"job_id"`
				TrackIndex int    `json:"track_index"`
			} `json:"jobs"`
			Dropped int `json:"dropped"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp.Jobs) != 2 || resp.Dropped != 0 {
			t.Fatalf("jobs=%d dropped=%d, want 2 accepted", len(resp.Jobs), resp.Dropped)
		}
		for _, job := range resp.Jobs {
			if job.JobID == "" {
				t.Fatal("expected every job to carry an id")
			}
		}
	})

	t.Run("Bad Request: empty track list", func(t *testing.T) {
		engine := &mockEngine{}
		pool := worker.NewPool(engine, nil, 10)
		pool.Start(1)
		defer pool.Stop()

		h := NewHandler(engine, pool, nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/match/batch", bytes.NewBufferString(`{"tracks":[]}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("Bad Request: track without title", func(t *testing.T) {
		engine := &mockEngine{}
		pool := worker.NewPool(engine, nil, 10)
		pool.Start(1)
		defer pool.Stop()

		h := NewHandler(engine, pool, nil, nil)

		body := `{"tracks":[{"track_index":0,"artists":"Adam Port"}]}`
		req := httptest.NewRequest(http.MethodPost, "/match/batch", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
		}
		if !strings.Contains(rec.Body.String(), "every track needs a title") {
			t.Fatalf("body: got %q", rec.Body.String())
		}
	})

	t.Run("Not Implemented: pool missing", func(t *testing.T) {
		h := NewHandler(&mockEngine{}, nil, nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/match/batch", bytes.NewBufferString(`{"tracks":[{"title":"t"}]}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotImplemented {
			t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotImplemented)
		}
	})
}

func TestHandler_ListResults(t *testing.T) {
	t.Run("Success: returns history", func(t *testing.T) {
		cache := &mockCache{records: []domain.MatchRecord{
			{RunID: "run-1", TrackTitle: "Tighter", Confidence: "high", StopReason: domain.StopEarlyExit},
		}}
		h := NewHandler(&mockEngine{}, nil, cache, nil)

		req := httptest.NewRequest(http.MethodGet, "/results?limit=5", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d, body: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"run_id":"run-1"`) {
			t.Fatalf("body: got %q", rec.Body.String())
		}
		if len(cache.limits) != 1 || cache.limits[0] != 5 {
			t.Fatalf("limit forwarding: got %v, want [5]", cache.limits)
		}
	})

	t.Run("Success: empty history is an empty array", func(t *testing.T) {
		h := NewHandler(&mockEngine{}, nil, &mockCache{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/results", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d", rec.Code)
		}
		if strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Fatalf("body: got %q, want []", rec.Body.String())
		}
	})

	t.Run("Bad Request: invalid limit", func(t *testing.T) {
		h := NewHandler(&mockEngine{}, nil, &mockCache{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/results?limit=zero", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("Not Implemented: cache missing", func(t *testing.T) {
		h := NewHandler(&mockEngine{}, nil, nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/results", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotImplemented {
			t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotImplemented)
		}
	})
}

func TestHandler_HealthCheck(t *testing.T) {
	h := NewHandler(&mockEngine{}, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("body: got %q", rec.Body.String())
	}
}

func TestHandler_MetricsRoute(t *testing.T) {
	met := metrics.New()
	met.RecordMatch("high", "early_exit", 2, 0.1)

	h := NewHandler(&mockEngine{}, nil, nil, met)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "cratematch_matches_total") {
		t.Fatalf("expected metric series in scrape output, got %q", rec.Body.String())
	}
}
