package match

import "time"

// Config centralizes the matching weights and the stopping policy. It is
// passed explicitly into the orchestrator at construction time; nothing
// in this package reads ambient state.
type Config struct {
	TitleWeight         float64
	ArtistWeight        float64
	EarlyExitScore      float64
	EarlyExitMinQueries int
	RunAllQueries       bool
	MaxResultsPerQuery  int
	PerQueryTimeout     time.Duration
}

// DefaultConfig returns the stock weights and thresholds.
func DefaultConfig() Config {
	return Config{
		TitleWeight:         0.55,
		ArtistWeight:        0.45,
		EarlyExitScore:      90,
		EarlyExitMinQueries: 8,
		RunAllQueries:       false,
		MaxResultsPerQuery:  5,
		PerQueryTimeout:     10 * time.Second,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()

	if c.TitleWeight <= 0 || c.TitleWeight >= 1 {
		c.TitleWeight = d.TitleWeight
	}
	if c.ArtistWeight <= 0 || c.ArtistWeight >= 1 {
		c.ArtistWeight = d.ArtistWeight
	}
	if c.TitleWeight+c.ArtistWeight != 1 {
		c.ArtistWeight = 1 - c.TitleWeight
	}
	if c.EarlyExitScore <= 0 {
		c.EarlyExitScore = d.EarlyExitScore
	}
	if c.EarlyExitMinQueries <= 0 {
		c.EarlyExitMinQueries = d.EarlyExitMinQueries
	}
	if c.MaxResultsPerQuery <= 0 {
		c.MaxResultsPerQuery = d.MaxResultsPerQuery
	}
	if c.PerQueryTimeout <= 0 {
		c.PerQueryTimeout = d.PerQueryTimeout
	}

	return c
}
