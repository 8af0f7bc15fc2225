package summarizer

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"medrag/internal/lexicon"
)

// FrequencySummarizer ranks sentences by the frequency of their words across
// the text, ignoring stopwords.
type FrequencySummarizer struct {
	seg          *segmenter
	filter       filter
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
	fallback     int
}

// NewFrequencySummarizer creates a frequency-based sentence ranker.
func NewFrequencySummarizer(cfg Config, lex *lexicon.Lexicon) (*FrequencySummarizer, error) {
	def := DefaultConfig()
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
	return &FrequencySummarizer{
		seg:          seg,
		filter:       filter{minChars: cfg.MinSentenceChars, maxChars: cfg.MaxSentenceChars, prefixes: lex.BoilerplatePrefixes},
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    lex.StopwordSet(),
		fallback:     cfg.FallbackChars,
	}, nil
}

// Summarize returns a short summary by ranking sentences using token frequency.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minTextChars {
		return "", nil
	}
	var sentences []string
	for _, sent := range s.seg.split(text) {
		if s.filter.keep(sent) {
			sentences = append(sentences, sent)
		}
	}
	if len(sentences) == 0 {
		return head(text, s.fallback), nil
	}
	// Compute word frequencies
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range s.tokens(sent) {
			freq[tok]++
		}
	}
	// Normalize frequencies
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}
	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(sentences))
	for i, sent := range sentences {
		toks := s.tokens(sent)
		sscore := 0.0
		for _, tok := range toks {
			sscore += freq[tok]
		}
		// Normalize by sentence length to avoid bias
		if l := float64(len(toks)); l > 0 {
			sscore /= math.Sqrt(l)
		}
		scores[i] = pair{i, sscore}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if maxSentences > len(scores) {
		maxSentences = len(scores)
	}
	// Keep original order among selected
	selected := make([]int, maxSentences)
	for i := 0; i < maxSentences; i++ {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	out := make([]string, 0, len(selected))
	for _, idx := range selected {
		out = append(out, sentences[idx])
	}
	return finish(out), nil
}

func (s *FrequencySummarizer) tokens(text string) []string {
	raw := s.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := s.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}
