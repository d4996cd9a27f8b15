package services

import (
	"context"
	"log"

	"github.com/calliope-labs/cratematch/internal/core/domain"
	"github.com/calliope-labs/cratematch/internal/core/ports"
	"github.com/calliope-labs/cratematch/internal/metrics"
)

// CachingParser decorates a page parser with the candidate cache. Cache
// failures are logged and treated as misses so a broken cache never
// blocks a match run.
type CachingParser struct {
	inner ports.PageParser
	cache ports.MatchCache
	met   *metrics.Metrics
}

var _ ports.PageParser = (*CachingParser)(nil)

// NewCachingParser constructs a CachingParser.
func NewCachingParser(inner ports.PageParser, cache ports.MatchCache, met *metrics.Metrics) *CachingParser {
	return &CachingParser{inner: inner, cache: cache, met: met}
}

// Parse serves the candidate from the cache when present, otherwise
// delegates to the inner parser and stores the result.
func (p *CachingParser) Parse(ctx context.Context, url string) (domain.Candidate, bool, error) {
	cached, ok, err := p.cache.GetCandidate(ctx, url)
	if err != nil {
		log.Printf("WARN service: candidate cache read failed: %v", err)
	} else if ok {
		if p.met != nil {
			p.met.RecordCacheHit()
		}
		return cached, true, nil
	}
	if p.met != nil {
		p.met.RecordCacheMiss()
	}

	cand, ok, err := p.inner.Parse(ctx, url)
	if err != nil || !ok {
		return cand, ok, err
	}

	if err := p.cache.PutCandidate(ctx, url, cand); err != nil {
		log.Printf("WARN service: candidate cache write failed: %v", err)
	}
	return cand, true, nil
}
