package match

import (
	"math"
	"testing"
)

func TestTitleSimilarityOrderIndependent(t *testing.T) {
	got := TitleSimilarity("Tighter CamelPhat", "CamelPhat Tighter")
	if got != 100 {
		t.Fatalf("reordered identical token sets: got %d, want 100", got)
	}
}

func TestTitleSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Tighter", "Tigher"},
		{"Adagio For Strings", "Adagio"},
		{"Strobe", "Ghosts N Stuff"},
		{"One More Time", "One More Time (Radio Edit)"},
	}
	for _, p := range pairs {
		ab := TitleSimilarity(p[0], p[1])
		ba := TitleSimilarity(p[1], p[0])
		if ab != ba {
			t.Fatalf("TitleSimilarity(%q,%q)=%d but reversed=%d", p[0], p[1], ab, ba)
		}
	}
}

func TestTitleSimilarityBounds(t *testing.T) {
	if got := TitleSimilarity("Strobe", "Strobe"); got != 100 {
		t.Fatalf("identical titles: got %d, want 100", got)
	}
	if got := TitleSimilarity("abc", "xyz"); got != 0 {
		t.Fatalf("disjoint titles: got %d, want 0", got)
	}
	if got := TitleSimilarity("", ""); got != 100 {
		t.Fatalf("both empty: got %d, want 100", got)
	}
	if got := TitleSimilarity("Strobe", ""); got != 0 {
		t.Fatalf("one empty: got %d, want 0", got)
	}
}

func TestArtistsSimilarity(t *testing.T) {
	if got := ArtistsSimilarity("", "CamelPhat"); got != 0 {
		t.Fatalf("empty source list: got %d, want 0", got)
	}
	if got := ArtistsSimilarity("CamelPhat", ""); got != 0 {
		t.Fatalf("empty candidate list: got %d, want 0", got)
	}
	if got := ArtistsSimilarity("Adam Port", "Adam Port & Stryv"); got != 100 {
		t.Fatalf("source subset of candidate: got %d, want 100", got)
	}

	// Documented asymmetry: the metric is driven by the source side.
	forward := ArtistsSimilarity("Adam Port", "Adam Port & Stryv")
	reverse := ArtistsSimilarity("Adam Port & Stryv", "Adam Port")
	if reverse >= forward {
		t.Fatalf("expected asymmetry: forward %d, reverse %d", forward, reverse)
	}
}

func TestScoreComponentsWeightedCombine(t *testing.T) {
	cfg := Config{TitleWeight: 0.55, ArtistWeight: 0.45}
	s := NewScorer(cfg)

	comps := s.ScoreComponents("Tighter", "Adam Port & Stryv", "Tighter (Original Mix)", "Adam Port, Stryv")
	want := 0.55*float64(comps.TitleSim) + 0.45*float64(comps.ArtistSim)
	if math.Abs(comps.Combined-want) > 1e-9 {
		t.Fatalf("combined: got %v, want %v", comps.Combined, want)
	}
	if comps.TitleSim != 100 {
		t.Fatalf("title sim after mix marker removal: got %d, want 100", comps.TitleSim)
	}
	if comps.ArtistSim != 100 {
		t.Fatalf("artist sim: got %d, want 100", comps.ArtistSim)
	}
}

func TestYearBonus(t *testing.T) {
	tests := []struct {
		name string
		a, b int
		want int
	}{
		{name: "equal years", a: 2023, b: 2023, want: 2},
		{name: "off by one", a: 2023, b: 2024, want: 1},
		{name: "off by one reversed", a: 2024, b: 2023, want: 1},
		{name: "off by two", a: 2023, b: 2021, want: 0},
		{name: "missing year", a: 0, b: 2023, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := YearBonus(tt.a, tt.b); got != tt.want {
				t.Fatalf("YearBonus(%d,%d): got %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestKeyBonus(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{name: "spelled out vs shorthand", a: "A Minor", b: "Am", want: 2},
		{name: "enharmonic equivalence", a: "F# Major", b: "Gb Major", want: 2},
		{name: "different keys", a: "A Minor", b: "B Minor", want: 0},
		{name: "unparseable side", a: "A Minor", b: "8A", want: 0},
		{name: "both empty", a: "", b: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyBonus(tt.a, tt.b); got != tt.want {
				t.Fatalf("KeyBonus(%q,%q): got %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
