// Package summarizer builds short extractive summaries of chunk text.
package summarizer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"medrag/internal/lexicon"
)

const (
	statisticsBonus = 2.0
	digitBonus      = 0.5
	unitBonus       = 1.5
	openerBonus     = 0.5

	// minTextChars is the shortest text that gets a summary at all.
	minTextChars = 50
)

var (
	statisticsPattern = regexp.MustCompile(`\d+%|\d+/\d+|p\s*[<>=]|95%\s*CI`)
	unitPattern       = regexp.MustCompile(`\bmg/kg\b|\bmg/dL\b|μmol/L\b|\byears?\b|\bmonths?\b`)
)

// Config bounds the summaries.
type Config struct {
	MaxSentences     int
	CharBudget       int
	MinSentenceChars int
	MaxSentenceChars int
	FallbackChars    int
}

// DefaultConfig returns the standard bounds: five sentences, 600 characters.
func DefaultConfig() Config {
	return Config{
		MaxSentences:     5,
		CharBudget:       600,
		MinSentenceChars: 40,
		MaxSentenceChars: 450,
		FallbackChars:    300,
	}
}

// Extractive scores sentences with a clinical lexicon and picks a few that
// are both informative and spread across the text.
type Extractive struct {
	cfg     Config
	seg     *segmenter
	filter  filter
	weights []lexicon.Weight
	openers []string
}

// NewExtractive returns a summarizer using lex for scoring. Zero config
// fields take their defaults.
func NewExtractive(cfg Config, lex *lexicon.Lexicon) (*Extractive, error) {
	def := DefaultConfig()
	if cfg.MaxSentences <= 0 {
		cfg.MaxSentences = def.MaxSentences
	}
	if cfg.CharBudget <= 0 {
		cfg.CharBudget = def.CharBudget
	}
	if cfg.MinSentenceChars <= 0 {
		cfg.MinSentenceChars = def.MinSentenceChars
	}
	if cfg.MaxSentenceChars <= 0 {
		cfg.MaxSentenceChars = def.MaxSentenceChars
	}
	if cfg.FallbackChars <= 0 {
		cfg.FallbackChars = def.FallbackChars
	}
	if lex == nil {
		lex = lexicon.Default()
	}
	seg, err := newSegmenter()
	if err != nil {
		return nil, fmt.Errorf("load sentence model: %w", err)
	}
	return &Extractive{
		cfg:     cfg,
		seg:     seg,
		filter:  filter{minChars: cfg.MinSentenceChars, maxChars: cfg.MaxSentenceChars, prefixes: lex.BoilerplatePrefixes},
		weights: lex.SortedWeights(),
		openers: lex.OpeningWords,
	}, nil
}

// Score rates a sentence: lexicon keyword weights plus bonuses for
// statistics, numbers, clinical units and typical opening words.
func (s *Extractive) Score(sentence string) float64 {
	lower := strings.ToLower(sentence)
	score := 0.0
	for _, w := range s.weights {
		if strings.Contains(lower, w.Term) {
			score += w.Value
		}
	}
	if statisticsPattern.MatchString(sentence) {
		score += statisticsBonus
	}
	if strings.ContainsAny(sentence, "0123456789") {
		score += digitBonus
	}
	if unitPattern.MatchString(sentence) {
		score += unitBonus
	}
	for _, op := range s.openers {
		if strings.HasPrefix(sentence, op+" ") {
			score += openerBonus
			break
		}
	}
	return score
}

type candidate struct {
	text  string
	score float64
}

// Summarize returns up to maxSentences sentences of text in their original
// order. Text under 50 characters yields "". When no sentence qualifies the
// opening of the text is returned with an ellipsis.
func (s *Extractive) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 || maxSentences > s.cfg.MaxSentences {
		maxSentences = s.cfg.MaxSentences
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minTextChars {
		return "", nil
	}

	var cands []candidate
	for _, sent := range s.seg.split(text) {
		if s.filter.keep(sent) {
			cands = append(cands, candidate{text: sent, score: s.Score(sent)})
		}
	}
	if len(cands) == 0 {
		return head(text, s.cfg.FallbackChars), nil
	}

	ranked := make([]int, len(cands))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool { return cands[ranked[a]].score > cands[ranked[b]].score })

	picked := s.pick(cands, ranked, maxSentences)
	if len(picked) < 2 && len(cands) >= 2 {
		picked = s.pickTop(cands, ranked, min(3, maxSentences))
	}
	sort.Ints(picked)

	out := make([]string, len(picked))
	for i, idx := range picked {
		out[i] = cands[idx].text
	}
	return finish(out), nil
}

// pick takes the best sentence, then the middle and later-middle
// candidates, then fills by score. It stops at limit sentences or as soon as
// the next sentence would overrun the character budget.
func (s *Extractive) pick(cands []candidate, ranked []int, limit int) []int {
	var (
		picked []int
		chosen = make(map[int]bool)
		total  int
	)
	add := func(i int) bool {
		if chosen[i] {
			return true
		}
		n := utf8.RuneCountInString(cands[i].text)
		if len(picked) > 0 {
			n++
		}
		if len(picked) > 0 && total+n > s.cfg.CharBudget {
			return false
		}
		chosen[i] = true
		picked = append(picked, i)
		total += n
		return true
	}

	order := []int{ranked[0]}
	if len(cands) >= 3 {
		order = append(order, len(cands)/2)
	}
	if len(cands) >= 5 {
		order = append(order, 2*len(cands)/3)
	}
	order = append(order, ranked...)
	for _, i := range order {
		if len(picked) >= limit {
			break
		}
		if !add(i) {
			break
		}
	}
	return picked
}

// pickTop takes the best sentences by score, stopping once the budget has
// been reached so at most one sentence overruns it.
func (s *Extractive) pickTop(cands []candidate, ranked []int, limit int) []int {
	var (
		picked []int
		total  int
	)
	for _, i := range ranked {
		if len(picked) >= limit || (len(picked) > 0 && total >= s.cfg.CharBudget) {
			break
		}
		picked = append(picked, i)
		total += utf8.RuneCountInString(cands[i].text) + 1
	}
	return picked
}
