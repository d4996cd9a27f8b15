// Package queryplan builds the ordered query list a match run consumes.
// The engine stays agnostic of how queries are constructed; callers that
// already have a plan can skip this package entirely.
package queryplan

import (
	"strings"

	"github.com/calliope-labs/cratematch/internal/core/match"
)

// maxQueries caps the plan length so a pathological artist list cannot
// blow the per-track search budget.
const maxQueries = 12

// BuildQueries produces the ordered query list for one track: most
// specific first (all artists plus sanitized title), then per-artist
// variants, then title-only fallbacks. Duplicates are dropped
// case-insensitively while preserving order.
func BuildQueries(title, artists string, titleOnly bool) []string {
	clean := match.SanitizeTitleForSearch(title)
	if clean == "" {
		clean = strings.TrimSpace(title)
	}
	if clean == "" {
		return nil
	}

	var queries []string
	seen := make(map[string]struct{})
	add := func(q string) {
		q = strings.TrimSpace(q)
		if q == "" || len(queries) >= maxQueries {
			return
		}
		lower := strings.ToLower(q)
		if _, dup := seen[lower]; dup {
			return
		}
		seen[lower] = struct{}{}
		queries = append(queries, q)
	}

	names := match.SplitArtists(artists)
	if !titleOnly {
		if len(names) > 0 {
			add(strings.Join(names, " ") + " " + clean)
		}
		for _, n := range names {
			add(n + " " + clean)
		}
		if raw := strings.TrimSpace(artists); raw != "" {
			add(raw + " " + clean)
		}
	}
	add(clean)
	add(match.Normalize(title))
	return queries
}
