package ports

import (
	"context"

	"github.com/calliope-labs/cratematch/internal/core/domain"
)

// MatchEngine is the entry point other subsystems call to match one track.
// It always returns a MatchResult for well-formed input, even an empty one;
// the only error for valid collaborators is domain.ErrEmptyTitle.
type MatchEngine interface {
	FindBestMatch(ctx context.Context, req domain.MatchRequest) (domain.MatchResult, error)
}
