// Package headings finds heading-like lines in cleaned chapter text and
// scores them by how likely they are to name a clinical section.
package headings

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"medrag/internal/domain"
	"medrag/internal/lexicon"
)

// UpperCaseScore is the score of an all upper-case heading line.
const UpperCaseScore = 3.0

var capitalPhrase = regexp.MustCompile(`^[A-Z][A-Za-z\s,\-:()]+$`)

// IsUpperCaseHeading reports whether line is an all upper-case line of
// plausible heading length.
func IsUpperCaseHeading(line string) bool {
	n := utf8.RuneCountInString(line)
	return n > 5 && n < 100 && isUpper(line)
}

// IsCapitalizedPhrase reports whether line is a capitalized phrase made of
// letters and light punctuation, of plausible heading length.
func IsCapitalizedPhrase(line string) bool {
	n := utf8.RuneCountInString(line)
	return n > 10 && n < 150 && capitalPhrase.MatchString(line)
}

// LooksLikeHeading reports whether a line has the shape of a heading,
// ignoring vocabulary.
func LooksLikeHeading(line string) bool {
	return IsUpperCaseHeading(line) || IsCapitalizedPhrase(line)
}

// Detector scores heading candidates with a lexicon.
type Detector struct {
	keywords   []string
	disqualify map[string]struct{}
}

// NewDetector builds a detector from the lexicon's heading vocabulary.
func NewDetector(lex *lexicon.Lexicon) *Detector {
	if lex == nil {
		lex = lexicon.Default()
	}
	d := &Detector{
		keywords:   lex.HeadingKeywords,
		disqualify: make(map[string]struct{}, len(lex.DisqualifyingTokens)),
	}
	for _, tok := range lex.DisqualifyingTokens {
		d.disqualify[tok] = struct{}{}
	}
	return d
}

// Detect returns the heading candidates of text ordered by descending score.
// Candidates with equal scores keep their text order.
func (d *Detector) Detect(text string) []domain.Heading {
	var out []domain.Heading
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || d.disqualified(line) {
			continue
		}
		switch {
		case IsUpperCaseHeading(line):
			out = append(out, domain.Heading{Text: line, LineOffset: i, Score: UpperCaseScore})
		case IsCapitalizedPhrase(line):
			out = append(out, domain.Heading{Text: line, LineOffset: i, Score: 1 + d.keywordHits(line)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Best returns the highest scoring heading of text with a score of at least
// minScore.
func (d *Detector) Best(text string, minScore float64) (domain.Heading, bool) {
	hs := d.Detect(text)
	if len(hs) == 0 || hs[0].Score < minScore {
		return domain.Heading{}, false
	}
	return hs[0], true
}

func (d *Detector) keywordHits(line string) float64 {
	lower := strings.ToLower(line)
	hits := 0
	for _, kw := range d.keywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return float64(hits)
}

func (d *Detector) disqualified(line string) bool {
	for _, word := range strings.FieldsFunc(strings.ToLower(line), notLetter) {
		if _, ok := d.disqualify[word]; ok {
			return true
		}
	}
	return false
}

func notLetter(r rune) bool { return !unicode.IsLetter(r) }

func isUpper(s string) bool {
	hasUpper := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}
