package match

import (
	"math"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/calliope-labs/cratematch/internal/core/domain"
)

// TitleSimilarity scores two titles 0-100 with an order-independent
// token-set metric: identical token sets in any order score 100. Both
// inputs are normalized first, so callers may pass raw or normalized
// text interchangeably.
func TitleSimilarity(a, b string) int {
	return tokenSetRatio(Normalize(a), Normalize(b))
}

// ArtistsSimilarity scores two combined artist strings 0-100. Each
// source-side artist is matched against its best candidate-side artist
// and the best-match scores are averaged. The metric is asymmetric by
// construction: it is driven by the source list, so callers must keep
// the library track on the a side and the catalog candidate on the b
// side.
func ArtistsSimilarity(a, b string) int {
	src := SplitArtists(a)
	cand := SplitArtists(b)
	if len(src) == 0 || len(cand) == 0 {
		return 0
	}
	sum := 0
	for _, s := range src {
		best := 0
		for _, c := range cand {
			if r := tokenSetRatio(s, c); r > best {
				best = r
			}
		}
		sum += best
	}
	return int(math.Round(float64(sum) / float64(len(src))))
}

// tokenSetRatio compares the word-token sets of two normalized strings.
// Shared tokens count in full; leftover tokens are greedily paired and
// contribute their Jaro-Winkler similarity. The argument order is
// canonicalized so the ratio is symmetric.
func tokenSetRatio(a, b string) int {
	if a > b {
		a, b = b, a
	}
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 100
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	shared := 0
	var leftA, leftB []string
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			shared++
		} else {
			leftA = append(leftA, tok)
		}
	}
	for tok := range tb {
		if _, ok := ta[tok]; !ok {
			leftB = append(leftB, tok)
		}
	}
	sort.Strings(leftA)
	sort.Strings(leftB)

	paired := 0
	credit := 0.0
	used := make([]bool, len(leftB))
	for _, la := range leftA {
		best := 0.0
		bi := -1
		for j, lb := range leftB {
			if used[j] {
				continue
			}
			if sim := float64(edlib.JaroWinklerSimilarity(la, lb)); sim > best {
				best = sim
				bi = j
			}
		}
		if bi >= 0 {
			used[bi] = true
			paired++
			credit += best
		}
	}

	unmatched := (len(leftA) - paired) + (len(leftB) - paired)
	denom := float64(shared + paired + unmatched)
	return int(math.Round((float64(shared) + credit) / denom * 100))
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Scorer combines title and artist similarity under configured weights.
type Scorer struct {
	cfg Config
}

// NewScorer returns a Scorer using the weights in cfg, with invalid
// values replaced by defaults.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg.normalized()}
}

// ScoreComponents computes the weighted similarity breakdown between a
// library track (titleA, artistsA) and a catalog candidate (titleB,
// artistsB). Bonuses are not applied here.
func (s *Scorer) ScoreComponents(titleA, artistsA, titleB, artistsB string) domain.ScoreComponents {
	t := TitleSimilarity(titleA, titleB)
	a := ArtistsSimilarity(artistsA, artistsB)
	return domain.ScoreComponents{
		TitleSim:  t,
		ArtistSim: a,
		Combined:  s.cfg.TitleWeight*float64(t) + s.cfg.ArtistWeight*float64(a),
	}
}

// YearBonus rewards release-year agreement: +2 when both years are
// present and equal, +1 when they differ by exactly one year.
func YearBonus(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	switch d := a - b; {
	case d == 0:
		return 2
	case d == 1 || d == -1:
		return 1
	default:
		return 0
	}
}

// KeyBonus rewards exact canonical musical-key agreement with +2.
// Harmonically adjacent ("near") keys deliberately earn nothing; only
// exact canonical equality counts.
func KeyBonus(a, b string) int {
	ca := CanonicalKey(a)
	cb := CanonicalKey(b)
	if ca != "" && ca == cb {
		return 2
	}
	return 0
}
