package beatport

// searchResponse is the catalog search API payload. Only the fields the
// adapter needs are mapped.
type searchResponse struct {
	Tracks []searchTrack `json:"tracks"`
}

type searchTrack struct {
	ID   int    `json:"id"`
	Slug string `json:"slug"`
}

// trackPage is the JSON blob embedded in a track page's __NEXT_DATA__
// script tag.
type trackPage struct {
	Props struct {
		PageProps struct {
			Track pageTrack `json:"track"`
		} `json:"pageProps"`
	} `json:"props"`
}

type pageTrack struct {
	Name    string `json:"name"`
	MixName string `json:"mix_name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Key struct {
		Name string `json:"name"`
	} `json:"key"`
	BPM     float64 `json:"bpm"`
	Release struct {
		Name  string `json:"name"`
		Label struct {
			Name string `json:"name"`
		} `json:"label"`
	} `json:"release"`
	Genre []struct {
		Name string `json:"name"`
	} `json:"genre"`
	PublishDate string `json:"publish_date"`
}
