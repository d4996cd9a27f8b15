package match

import "github.com/calliope-labs/cratematch/internal/core/domain"

// Confidence thresholds on the final total score.
const (
	highConfidenceScore = 95
	medConfidenceScore  = 85
)

// Classify maps a final numeric score to a discrete confidence label.
func Classify(score float64) domain.Confidence {
	switch {
	case score >= highConfidenceScore:
		return domain.ConfidenceHigh
	case score >= medConfidenceScore:
		return domain.ConfidenceMed
	default:
		return domain.ConfidenceLow
	}
}
