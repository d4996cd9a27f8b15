package ports

import (
	"context"

	"github.com/calliope-labs/cratematch/internal/core/domain"
)

// MatchCache stores parsed candidates keyed by URL and finished match
// results. Implementations own their own thread-safety.
type MatchCache interface {
	GetCandidate(ctx context.Context, url string) (domain.Candidate, bool, error)
	PutCandidate(ctx context.Context, url string, c domain.Candidate) error
	SaveResult(ctx context.Context, runID string, track domain.Track, res domain.MatchResult) error
	ListResults(ctx context.Context, limit int) ([]domain.MatchRecord, error)
}
