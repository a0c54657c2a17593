package search

import (
	"math"
	"regexp"
	"unicode"
	"unicode/utf8"

	"jamesfarrell.me/youtube-transcript-search/internal/storage/models"
)

// Matcher finds a term as a whole word, ignoring case. The term is matched
// literally, never as a pattern.
//
// Word edges are checked by hand: RE2's \b only knows ASCII word characters,
// so "na" would otherwise be found inside "naïve".
type Matcher struct {
	re *regexp.Regexp
}

func NewMatcher(term string) *Matcher {
	return &Matcher{re: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(term))}
}

func (m *Matcher) Match(text string) bool {
	for i := 0; i <= len(text); {
		loc := m.re.FindStringIndex(text[i:])
		if loc == nil {
			return false
		}
		start, end := i+loc[0], i+loc[1]
		if boundary(text, start) && boundary(text, end) {
			return true
		}
		if start == len(text) {
			return false
		}
		// candidates may overlap, so retry one rune further on
		_, size := utf8.DecodeRuneInString(text[start:])
		i = start + size
	}
	return false
}

// boundary reports whether a word starts or ends at byte offset p.
func boundary(text string, p int) bool {
	before, after := false, false
	if p > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:p])
		before = isWordRune(r)
	}
	if p < len(text) {
		r, _ := utf8.DecodeRuneInString(text[p:])
		after = isWordRune(r)
	}
	return before != after
}

// isWordRune treats combining marks as part of the word they decorate, so
// decomposed accents do not split a word.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}

// Timestamps returns the whole-second start of every segment that contains
// the term, in transcript order. Segments starting in the same second each
// contribute an entry.
func (m *Matcher) Timestamps(segments []models.Segment) []int {
	timestamps := []int{}
	for _, s := range segments {
		if m.Match(s.Text) {
			timestamps = append(timestamps, int(math.Floor(s.Start)))
		}
	}
	return timestamps
}

func FindTimestamps(segments []models.Segment, term string) []int {
	return NewMatcher(term).Timestamps(segments)
}
