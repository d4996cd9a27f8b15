package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/calliope-labs/cratematch/internal/core/domain"
)

// ErrNoConfidentMatch indicates a match run finished without any candidate
// clearing the confidence threshold a caller asked for.
var ErrNoConfidentMatch = errors.New("no confident match")

// NoConfidentMatchError provides context for a failed track match.
type NoConfidentMatchError struct {
	Title   string
	Artists string
}

func (e NoConfidentMatchError) Error() string {
	if e.Title == "" && e.Artists == "" {
		return ErrNoConfidentMatch.Error()
	}
	return fmt.Sprintf("no confident match found for title %q artists %q", e.Title, e.Artists)
}

func (e NoConfidentMatchError) Is(target error) bool {
	return target == ErrNoConfidentMatch
}

// SearchProvider turns a query string into candidate page URLs. It may
// return fewer than maxResults and must return an empty slice, not an
// error, when the catalog simply has no results.
type SearchProvider interface {
	Search(ctx context.Context, query string, maxResults int) ([]string, error)
}

// PageParser resolves a candidate URL into raw catalog fields. A page
// that cannot be parsed yields ok=false and a nil error; transport
// failures are reported as errors and treated by the engine as a drop.
type PageParser interface {
	Parse(ctx context.Context, url string) (domain.Candidate, bool, error)
}
