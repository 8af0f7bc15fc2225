// Package lexicon holds the domain vocabulary used to score headings and
// summary sentences. The built-in defaults target clinical textbooks and can
// be overridden from a YAML file.
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultData []byte

// Lexicon is the configurable vocabulary shared by the detectors and scorers.
type Lexicon struct {
	HeadingKeywords     []string           `yaml:"heading_keywords"`
	DisqualifyingTokens []string           `yaml:"disqualifying_tokens"`
	SummaryWeights      map[string]float64 `yaml:"summary_weights"`
	OpeningWords        []string           `yaml:"opening_words"`
	BoilerplatePrefixes []string           `yaml:"boilerplate_prefixes"`
	Stopwords           []string           `yaml:"stopwords"`
}

// Weight is a single scoring keyword.
type Weight struct {
	Term  string
	Value float64
}

// Default returns the built-in clinical lexicon.
func Default() *Lexicon {
	var lex Lexicon
	if err := yaml.Unmarshal(defaultData, &lex); err != nil {
		panic(fmt.Sprintf("lexicon: embedded defaults are invalid: %v", err))
	}
	lex.normalize()
	return &lex
}

// Load reads a lexicon override file. Lists present in the file replace the
// defaults; summary weights are merged key by key.
func Load(path string) (*Lexicon, error) {
	lex := Default()
	if path == "" {
		return lex, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, lex); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}
	lex.normalize()
	return lex, nil
}

// SortedWeights returns the summary weights ordered by term.
func (l *Lexicon) SortedWeights() []Weight {
	out := make([]Weight, 0, len(l.SummaryWeights))
	for term, v := range l.SummaryWeights {
		out = append(out, Weight{Term: term, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Term < out[j].Term })
	return out
}

// StopwordSet returns the stopwords as a lookup set.
func (l *Lexicon) StopwordSet() map[string]struct{} {
	m := make(map[string]struct{}, len(l.Stopwords))
	for _, w := range l.Stopwords {
		m[w] = struct{}{}
	}
	return m
}

func (l *Lexicon) normalize() {
	l.HeadingKeywords = lowerAll(l.HeadingKeywords)
	l.DisqualifyingTokens = lowerAll(l.DisqualifyingTokens)
	l.Stopwords = lowerAll(l.Stopwords)
	if len(l.SummaryWeights) > 0 {
		weights := make(map[string]float64, len(l.SummaryWeights))
		for k, v := range l.SummaryWeights {
			weights[strings.ToLower(strings.TrimSpace(k))] = v
		}
		l.SummaryWeights = weights
	}
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
