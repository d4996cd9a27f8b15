// Package services wires the match engine to its collaborators: the
// search provider, the page parser, the candidate cache, and metrics.
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/calliope-labs/cratematch/internal/core/domain"
	"github.com/calliope-labs/cratematch/internal/core/match"
	"github.com/calliope-labs/cratematch/internal/core/ports"
	"github.com/calliope-labs/cratematch/internal/metrics"
	"github.com/calliope-labs/cratematch/internal/queryplan"
)

// MatchService runs match requests through the orchestrator, persists
// finished runs, and records metrics.
type MatchService struct {
	engine ports.MatchEngine
	cache  ports.MatchCache
	met    *metrics.Metrics
}

var _ ports.MatchEngine = (*MatchService)(nil)

// NewMatchService constructs a MatchService. The parser is wrapped with
// the candidate cache so repeat lookups skip the catalog.
func NewMatchService(provider ports.SearchProvider, parser ports.PageParser, cache ports.MatchCache, met *metrics.Metrics, cfg match.Config) *MatchService {
	if cache != nil {
		parser = NewCachingParser(parser, cache, met)
	}
	return &MatchService{
		engine: match.NewOrchestrator(provider, parser, cfg),
		cache:  cache,
		met:    met,
	}
}

// FindBestMatch resolves the best candidate for a request. When the
// request carries no query plan, one is built from the track fields.
func (s *MatchService) FindBestMatch(ctx context.Context, req domain.MatchRequest) (domain.MatchResult, error) {
	if len(req.Queries) == 0 {
		req.Queries = queryplan.BuildQueries(req.Title, req.Artists, req.TitleOnly)
	}

	start := time.Now()
	res, err := s.engine.FindBestMatch(ctx, req)
	if err != nil {
		return domain.MatchResult{}, fmt.Errorf("service: match run failed: %w", err)
	}

	if s.met != nil {
		s.met.RecordMatch(string(res.Confidence), res.StopReason, len(res.Audit), time.Since(start).Seconds())
	}

	if s.cache != nil {
		track := domain.Track{Index: req.TrackIndex, Title: req.Title, Artists: req.Artists}
		runID := uuid.NewString()
		if err := s.cache.SaveResult(ctx, runID, track, res); err != nil {
			// History is best-effort; the match result still stands.
			log.Printf("WARN service: failed to save match result %s: %v", runID, err)
		}
	}

	return res, nil
}
