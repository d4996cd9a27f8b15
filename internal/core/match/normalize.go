// Package match implements the entity-resolution core: text
// normalization, fuzzy similarity scoring, musical-key conversion, and
// the budgeted multi-query search orchestrator that picks the best
// catalog candidate for a library track.
package match

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// mixVocab is the fixed vocabulary of mix-type markers stripped during
// normalization. Multi-word phrases come first so suffix matching is
// longest-first.
var mixVocab = []string{
	"original mix",
	"extended mix",
	"radio edit",
	"club mix",
	"remix",
	"edit",
	"vip",
	"dub",
	"version",
}

var (
	dashRe        = regexp.MustCompile("[-‐‑‒–—―−]")
	featParenRe   = regexp.MustCompile(`\(\s*(?:featuring|feat\.?|ft\.?)\s+[^)]*\)`)
	featBracketRe = regexp.MustCompile(`\[\s*(?:featuring|feat\.?|ft\.?)\s+[^\]]*\]`)
	featTrailRe   = regexp.MustCompile(`\b(?:featuring|feat\.?|ft\.?)\s+.*$`)
	mixParenRe    = regexp.MustCompile(`\(\s*(?:` + strings.Join(mixVocab, "|") + `)\s*\)`)
	mixWordRe     = regexp.MustCompile(`\b(?:` + strings.Join(mixVocab, "|") + `)\b`)
	charsetRe     = regexp.MustCompile(`[^a-z0-9 &/]`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// Normalize reduces noisy track text to a canonical lowercase form:
// accent-free, punctuation collapsed to the allowed set, featuring
// clauses and mix-type markers removed. The steps run in a fixed order
// and each assumes the previous one has run. The transform is total and
// idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	s := html.UnescapeString(text)
	s = stripDiacritics(s)
	s = strings.TrimSpace(strings.ToLower(s))
	s = dashRe.ReplaceAllString(s, " ")
	s = featParenRe.ReplaceAllString(s, " ")
	s = featBracketRe.ReplaceAllString(s, " ")
	s = featTrailRe.ReplaceAllString(s, " ")
	s = mixParenRe.ReplaceAllString(s, " ")
	s = charsetRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	s = mixWordRe.ReplaceAllString(s, " ")
	s = trimGluedMixSuffix(s)
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// trimGluedMixSuffix removes mix-vocabulary words glued to the end of
// the string with no separating space ("tighterremix"). It loops because
// stripping one marker can expose another ("xversionremix").
func trimGluedMixSuffix(s string) string {
	for {
		trimmed := false
		for _, w := range mixVocab {
			glued := strings.ReplaceAll(w, " ", "")
			if strings.HasSuffix(s, glued) && len(s) > len(glued) {
				s = strings.TrimSpace(strings.TrimSuffix(s, glued))
				trimmed = true
			}
		}
		if !trimmed {
			return s
		}
	}
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

var (
	urlRe           = regexp.MustCompile(`https?://\S+`)
	shortPrefixRe   = regexp.MustCompile(`^\s*\[[^\]]{1,5}\]\s*`)
	parenRe         = regexp.MustCompile(`\([^)]*\)`)
	bracketRe       = regexp.MustCompile(`\[[^\]]*\]`)
	mixParenAnyRe   = regexp.MustCompile(`(?i)\([^)]*\b(?:` + strings.Join(mixVocab, "|") + `|mix)\b[^)]*\)`)
	mixBracketAnyRe = regexp.MustCompile(`(?i)\[[^\]]*\b(?:` + strings.Join(mixVocab, "|") + `|mix)\b[^\]]*\]`)
	mixBareRe       = regexp.MustCompile(`(?i)\b(?:` + strings.Join(mixVocab, "|") + `)\b`)
)

// SanitizeTitleForSearch is a stricter, intentionally lossy transform
// used only to build search queries, never for scoring. It keeps the
// segment of a combined "Artist - Title" string most likely to be the
// actual title and drops bracketed noise and non-Latin characters. The
// step order matters.
func SanitizeTitleForSearch(title string) string {
	s := strings.TrimSpace(title)
	if s == "" {
		return ""
	}
	s = urlRe.ReplaceAllString(s, " ")
	if n := strings.Count(s, " - "); n >= 2 {
		s = s[strings.LastIndex(s, " - ")+3:]
	} else if n == 1 && strings.Contains(s, "(") {
		s = s[strings.LastIndex(s, " - ")+3:]
	}
	s = mixParenAnyRe.ReplaceAllString(s, " ")
	s = mixBracketAnyRe.ReplaceAllString(s, " ")
	s = mixBareRe.ReplaceAllString(s, " ")
	s = shortPrefixRe.ReplaceAllString(s, "")
	s = parenRe.ReplaceAllString(s, " ")
	s = bracketRe.ReplaceAllString(s, " ")
	s = stripNonLatin(s)
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// stripNonLatin drops characters outside the extended-Latin range the
// catalog search tolerates.
func stripNonLatin(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 0x20 && r <= 0x024F {
			return r
		}
		return ' '
	}, s)
}

var (
	featSplitRe   = regexp.MustCompile(`(?i)\b(?:featuring|feat\.?|ft\.?)\s+`)
	artistDelimRe = regexp.MustCompile(`(?i)\s+x\s+|\s+vs\.?\s+|\s+with\s+|[,&/]`)
)

// SplitArtists breaks a combined artist string into normalized
// individual-artist tokens. Featuring spellings become delimiters and
// empty tokens are discarded.
func SplitArtists(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	replaced := featSplitRe.ReplaceAllString(s, ",")
	parts := artistDelimRe.Split(replaced, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		tok := Normalize(p)
		if tok == "" {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// stripGenericPhrases removes hint-supplied filler phrases from an
// already-normalized string so they cannot inflate title similarity.
func stripGenericPhrases(normalized string, phrases []string) string {
	s := " " + normalized + " "
	for _, p := range phrases {
		p = Normalize(p)
		if p == "" {
			continue
		}
		s = strings.ReplaceAll(s, " "+p+" ", " ")
	}
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
