package beatport

import (
	"strconv"
	"strings"

	"github.com/calliope-labs/cratematch/internal/core/domain"
)

// mapTrackToCandidate converts a raw track page to a domain Candidate.
// Every optional field is resolved here, once; downstream code never
// touches the wire format again.
func mapTrackToCandidate(pt pageTrack, url string) domain.Candidate {
	title := strings.TrimSpace(pt.Name)
	mix := strings.TrimSpace(pt.MixName)
	if mix != "" && !strings.EqualFold(mix, "Original Mix") {
		title = title + " (" + mix + ")"
	}

	var artistNames []string
	for _, a := range pt.Artists {
		if name := strings.TrimSpace(a.Name); name != "" {
			artistNames = append(artistNames, name)
		}
	}

	var genres []string
	for _, g := range pt.Genre {
		if name := strings.TrimSpace(g.Name); name != "" {
			genres = append(genres, name)
		}
	}

	return domain.Candidate{
		Title:       title,
		Artist:      strings.Join(artistNames, ", "),
		Key:         strings.TrimSpace(pt.Key.Name),
		Year:        yearFromDate(pt.PublishDate),
		BPM:         pt.BPM,
		Label:       strings.TrimSpace(pt.Release.Label.Name),
		Genres:      genres,
		Release:     strings.TrimSpace(pt.Release.Name),
		ReleaseDate: strings.TrimSpace(pt.PublishDate),
		URL:         url,
	}
}

// yearFromDate extracts the year from a YYYY-MM-DD date. Malformed
// input yields 0, the "unknown year" zero value.
func yearFromDate(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year < 1900 || year > 2100 {
		return 0
	}
	return year
}
