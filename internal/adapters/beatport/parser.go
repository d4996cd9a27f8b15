package beatport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/calliope-labs/cratematch/internal/core/domain"
)

const nextDataMarker = `<script id="__NEXT_DATA__" type="application/json">`

// maxPageBytes bounds how much of a track page is read. The embedded
// JSON sits well within the first megabytes of the document.
const maxPageBytes = 4 << 20

// Parse fetches a track page and resolves the candidate fields embedded
// in its __NEXT_DATA__ JSON. A malformed or unexpected page yields
// ok=false with a nil error; only transport failures are errors.
func (c *Client) Parse(ctx context.Context, pageURL string) (domain.Candidate, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return domain.Candidate{}, false, fmt.Errorf("beatport adapter: failed to create page request: %w", err)
	}

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return domain.Candidate{}, false, fmt.Errorf("beatport adapter: page request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Removed or region-blocked pages are a parse miss, not an error.
		return domain.Candidate{}, false, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return domain.Candidate{}, false, fmt.Errorf("beatport adapter: page read failed: %w", err)
	}

	raw, ok := extractNextData(string(body))
	if !ok {
		return domain.Candidate{}, false, nil
	}

	var page trackPage
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		return domain.Candidate{}, false, nil
	}
	if strings.TrimSpace(page.Props.PageProps.Track.Name) == "" {
		return domain.Candidate{}, false, nil
	}

	return mapTrackToCandidate(page.Props.PageProps.Track, pageURL), true, nil
}

// extractNextData pulls the JSON payload out of the page's embedded
// script tag.
func extractNextData(body string) (string, bool) {
	start := strings.Index(body, nextDataMarker)
	if start == -1 {
		return "", false
	}
	rest := body[start+len(nextDataMarker):]
	end := strings.Index(rest, "</script>")
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}
