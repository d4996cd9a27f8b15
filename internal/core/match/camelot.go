package match

import (
	"regexp"
	"strings"
)

// keyRe accepts a note letter, an optional accidental, and an optional
// mode word ("A", "F#", "Bb minor", "Abm", "c# maj").
var keyRe = regexp.MustCompile(`^([a-g])\s*([#♯b♭]?)\s*(major|minor|maj|min|m)?$`)

// noteEnharmonic folds flat (and the two oddball sharp) spellings onto
// the sharp-based note names the Camelot table is keyed by.
var noteEnharmonic = map[string]string{
	"db": "c#",
	"eb": "d#",
	"gb": "f#",
	"ab": "g#",
	"bb": "a#",
	"cb": "b",
	"fb": "e",
	"e#": "f",
	"b#": "c",
}

// camelotWheel is the standard 24-key harmonic-mixing wheel, keyed by
// canonical key name. Minor keys take the A suffix, major keys B.
var camelotWheel = map[string]string{
	"g# minor": "1A", "b major": "1B",
	"d# minor": "2A", "f# major": "2B",
	"a# minor": "3A", "c# major": "3B",
	"f minor": "4A", "g# major": "4B",
	"c minor": "5A", "d# major": "5B",
	"g minor": "6A", "a# major": "6B",
	"d minor": "7A", "f major": "7B",
	"a minor": "8A", "c major": "8B",
	"e minor": "9A", "g major": "9B",
	"b minor": "10A", "d major": "10B",
	"f# minor": "11A", "a major": "11B",
	"c# minor": "12A", "e major": "12B",
}

// CanonicalKey reduces a free-text musical key to "<note> major|minor"
// with sharp-based enharmonic spelling ("Bb" -> "a# major", "Abm" ->
// "g# minor"). A bare note is treated as major. Unrecognized input
// yields the empty string; the function never fails.
func CanonicalKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if s == "" {
		return ""
	}
	m := keyRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	note := m[1]
	switch m[2] {
	case "#", "♯":
		note += "#"
	case "b", "♭":
		note += "b"
	}
	if folded, ok := noteEnharmonic[note]; ok {
		note = folded
	}
	mode := "major"
	switch m[3] {
	case "minor", "min", "m":
		mode = "minor"
	}
	return note + " " + mode
}

// ToCamelot converts a free-text key to its Camelot wheel code
// ("E Major" -> "12B", "A Minor" -> "8A"). Unrecognized or empty input
// returns the empty string.
func ToCamelot(key string) string {
	return camelotWheel[CanonicalKey(key)]
}
