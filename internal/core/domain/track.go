package domain

// Track represents one entry of the DJ's library before enrichment.
// Title and Artists carry whatever formatting the source file had.
type Track struct {
	Index   int
	Title   string
	Artists string
}

// ScoreComponents holds the weighted similarity breakdown for one candidate.
// Combined is TitleWeight*TitleSim + ArtistWeight*ArtistSim; key and year
// bonuses are added on top of it and live in Candidate.Total.
type ScoreComponents struct {
	TitleSim  int     `json:"title_sim"`
	ArtistSim int     `json:"artist_sim"`
	Combined  float64 `json:"combined"`
}

// Candidate is one catalog entry considered during a match run. It is
// resolved once at parse time and never mutated afterwards; optional
// fields keep their zero value when the page did not carry them.
type Candidate struct {
	Title       string   `json:"title"`
	Artist      string   `json:"artist"`
	Key         string   `json:"key,omitempty"`
	Year        int      `json:"year,omitempty"`
	BPM         float64  `json:"bpm,omitempty"`
	Label       string   `json:"label,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Release     string   `json:"release,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	URL         string   `json:"url"`

	Score ScoreComponents `json:"score"`
	Total float64         `json:"total"`
}
