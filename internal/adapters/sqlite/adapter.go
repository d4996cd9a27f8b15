// Package sqlite provides a SQLite-backed implementation of the match
// cache port: parsed candidates keyed by URL plus a history of finished
// match results.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/calliope-labs/cratematch/internal/core/domain"
	"github.com/calliope-labs/cratematch/internal/core/ports"
)

// defaultCandidateTTL bounds how long a cached candidate is served
// before the page is fetched again.
const defaultCandidateTTL = 14 * 24 * time.Hour

// Adapter implements the match cache port for SQLite
type Adapter struct {
	db  *sql.DB
	ttl time.Duration
}

// compile-time interface assertion
var _ ports.MatchCache = (*Adapter)(nil)

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db, ttl: defaultCandidateTTL}

	// Auto-migrate on startup for local dev
	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS candidates (
		url TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		music_key TEXT,
		year INTEGER,
		bpm REAL,
		label TEXT,
		genres TEXT,
		release_name TEXT,
		release_date TEXT,
		fetched_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS match_results (
		id TEXT PRIMARY KEY,
		track_idx INTEGER NOT NULL,
		track_title TEXT NOT NULL,
		track_artists TEXT NOT NULL,
		best_url TEXT,
		best_title TEXT,
		total_score REAL,
		confidence TEXT NOT NULL,
		stop_reason TEXT NOT NULL,
		queries_run INTEGER NOT NULL,
		candidates_seen INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := a.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// GetCandidate returns the cached candidate for a URL. A miss or an
// expired row yields ok=false with a nil error.
func (a *Adapter) GetCandidate(ctx context.Context, url string) (domain.Candidate, bool, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT title, artist, music_key, year, bpm, label, genres, release_name, release_date, fetched_at
		FROM candidates WHERE url = ?`, url)

	var c domain.Candidate
	var key, label, genres, release, releaseDate sql.NullString
	var year sql.NullInt64
	var bpm sql.NullFloat64
	var fetchedAt time.Time

	err := row.Scan(&c.Title, &c.Artist, &key, &year, &bpm, &label, &genres, &release, &releaseDate, &fetchedAt)
	if err == sql.ErrNoRows {
		return domain.Candidate{}, false, nil
	}
	if err != nil {
		return domain.Candidate{}, false, fmt.Errorf("failed to load candidate: %w", err)
	}

	if a.ttl > 0 && time.Since(fetchedAt) > a.ttl {
		return domain.Candidate{}, false, nil
	}

	c.URL = url
	if key.Valid {
		c.Key = key.String
	}
	if year.Valid {
		c.Year = int(year.Int64)
	}
	if bpm.Valid {
		c.BPM = bpm.Float64
	}
	if label.Valid {
		c.Label = label.String
	}
	if genres.Valid {
		c.Genres = splitGenres(genres.String)
	}
	if release.Valid {
		c.Release = release.String
	}
	if releaseDate.Valid {
		c.ReleaseDate = releaseDate.String
	}
	return c, true, nil
}

// PutCandidate upserts the parsed fields for a URL. Score fields are
// not stored; candidates are cached pre-scoring.
func (a *Adapter) PutCandidate(ctx context.Context, url string, c domain.Candidate) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO candidates (url, title, artist, music_key, year, bpm, label, genres, release_name, release_date, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(url) DO UPDATE SET
			title=excluded.title, artist=excluded.artist, music_key=excluded.music_key,
			year=excluded.year, bpm=excluded.bpm, label=excluded.label, genres=excluded.genres,
			release_name=excluded.release_name, release_date=excluded.release_date,
			fetched_at=excluded.fetched_at;`,
		url, c.Title, c.Artist, c.Key, c.Year, c.BPM, c.Label, joinGenres(c.Genres), c.Release, c.ReleaseDate)
	if err != nil {
		return fmt.Errorf("failed to save candidate: %w", err)
	}
	return nil
}

// SaveResult appends one finished match run to the history table.
func (a *Adapter) SaveResult(ctx context.Context, runID string, track domain.Track, res domain.MatchResult) error {
	var bestURL, bestTitle sql.NullString
	var total sql.NullFloat64
	if res.Best != nil {
		bestURL = sql.NullString{String: res.Best.URL, Valid: true}
		bestTitle = sql.NullString{String: res.Best.Title, Valid: true}
		total = sql.NullFloat64{Float64: res.Best.Total, Valid: true}
	}

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO match_results (id, track_idx, track_title, track_artists, best_url, best_title, total_score, confidence, stop_reason, queries_run, candidates_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, track.Index, track.Title, track.Artists,
		bestURL, bestTitle, total,
		string(res.Confidence), res.StopReason, len(res.Audit), len(res.All))
	if err != nil {
		return fmt.Errorf("failed to save match result: %w", err)
	}
	return nil
}

// ListResults returns the most recent match runs, newest first.
func (a *Adapter) ListResults(ctx context.Context, limit int) ([]domain.MatchRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, track_idx, track_title, track_artists, best_url, best_title, total_score, confidence, stop_reason, queries_run, created_at
		FROM match_results ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list match results: %w", err)
	}
	defer rows.Close()

	var records []domain.MatchRecord
	for rows.Next() {
		var rec domain.MatchRecord
		var bestURL, bestTitle sql.NullString
		var total sql.NullFloat64
		if err := rows.Scan(&rec.RunID, &rec.TrackIndex, &rec.TrackTitle, &rec.TrackArtists,
			&bestURL, &bestTitle, &total, &rec.Confidence, &rec.StopReason, &rec.QueriesRun, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match result: %w", err)
		}
		if bestURL.Valid {
			rec.BestURL = bestURL.String
		}
		if bestTitle.Valid {
			rec.BestTitle = bestTitle.String
		}
		if total.Valid {
			rec.TotalScore = total.Float64
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list match results: %w", err)
	}
	return records, nil
}

func joinGenres(genres []string) string {
	return strings.Join(genres, ";")
}

func splitGenres(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
