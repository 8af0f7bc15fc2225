// Package topic names chunks after the heading or phrase that best describes
// them, falling back to windows over the chapter name.
package topic

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"medrag/internal/headings"
)

const (
	// StrategyHeading tries headings and capitalized phrases before the
	// chapter name.
	StrategyHeading = "heading"
	// StrategyChapter derives names from the chapter name only.
	StrategyChapter = "chapter"
)

var (
	capitalizedRun   = regexp.MustCompile(`\b[A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+){1,4}\b`)
	sentenceBreak    = regexp.MustCompile(`[.!?]+\s+`)
	leadingFunctions = map[string]bool{
		"The": true, "A": true, "An": true, "In": true, "This": true, "These": true,
		"Of": true, "For": true, "When": true, "If": true, "It": true, "Its": true,
	}
)

// Config tunes the namer.
type Config struct {
	Strategy        string
	MinHeadingScore float64
	MaxWords        int
	MaxChars        int
}

// Namer derives topic names for the chunks of a chapter.
type Namer struct {
	cfg      Config
	detector *headings.Detector
}

// NewNamer returns a namer. A nil detector disables heading names.
func NewNamer(cfg Config, detector *headings.Detector) *Namer {
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyHeading
	}
	if cfg.MinHeadingScore <= 0 {
		cfg.MinHeadingScore = 2
	}
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = 5
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = 80
	}
	return &Namer{cfg: cfg, detector: detector}
}

// Name returns the topic of chunk index out of total. The result is never
// empty and never longer than MaxChars.
func (n *Namer) Name(content, chapterName string, index, total int) string {
	if n.cfg.Strategy != StrategyChapter {
		if name := n.fromHeading(content); name != "" {
			return name
		}
		if name := n.fromOpening(content); name != "" {
			return name
		}
	}
	return n.limit(chapterWindow(chapterName, index, total))
}

// NameAll names every chunk of a chapter so that no two siblings share a
// name. Collisions fall back to the chapter window, then to numbered parts.
func (n *Namer) NameAll(contents []string, chapterName string) []string {
	names := make([]string, len(contents))
	seen := make(map[string]bool, len(contents))
	for i, content := range contents {
		name := n.Name(content, chapterName, i, len(contents))
		if seen[strings.ToLower(name)] {
			name = n.limit(chapterWindow(chapterName, i, len(contents)))
		}
		for k := i + 1; seen[strings.ToLower(name)]; k++ {
			name = n.withPart(baseName(chapterName), k)
		}
		seen[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func (n *Namer) fromHeading(content string) string {
	if n.detector == nil {
		return ""
	}
	h, ok := n.detector.Best(content, n.cfg.MinHeadingScore)
	if !ok {
		return ""
	}
	words := strings.Fields(cases.Title(language.English).String(h.Text))
	if len(words) > n.cfg.MaxWords {
		words = words[:n.cfg.MaxWords]
	}
	return n.limit(strings.Join(words, " "))
}

// fromOpening looks for a run of capitalized words in the first sentences.
func (n *Namer) fromOpening(content string) string {
	opening := sentenceBreak.Split(strings.TrimSpace(content), 4)
	if len(opening) > 3 {
		opening = opening[:3]
	}
	for _, sentence := range opening {
		for _, run := range capitalizedRun.FindAllString(sentence, -1) {
			words := strings.Fields(run)
			for len(words) > 0 && leadingFunctions[words[0]] {
				words = words[1:]
			}
			if len(words) < 2 {
				continue
			}
			if len(words) > 4 {
				words = words[:4]
			}
			return n.limit(strings.Join(words, " "))
		}
	}
	return ""
}

// chapterWindow picks a window over the chapter name so that siblings of a
// multi-chunk chapter get different names.
func chapterWindow(chapterName string, index, total int) string {
	words := strings.Fields(chapterName)
	switch {
	case len(words) == 0:
		return fmt.Sprintf("Section %d", index+1)
	case total <= 1:
		return strings.Join(words[:min(4, len(words))], " ")
	case len(words) <= 3:
		return fmt.Sprintf("%s Part %d", strings.Join(words, " "), index+1)
	case index == 0:
		return strings.Join(words[:3], " ")
	case index == total-1:
		return strings.Join(words[len(words)-3:], " ")
	default:
		start := index % max(1, len(words)-2)
		return strings.Join(words[start:min(start+3, len(words))], " ")
	}
}

func baseName(chapterName string) string {
	words := strings.Fields(chapterName)
	if len(words) == 0 {
		return "Section"
	}
	return strings.Join(words[:min(3, len(words))], " ")
}

func (n *Namer) withPart(base string, k int) string {
	suffix := fmt.Sprintf(" Part %d", k)
	room := n.cfg.MaxChars - len(suffix)
	if room <= 0 {
		if label := strings.TrimSpace(suffix); len(label) <= n.cfg.MaxChars {
			return label
		}
		return strconv.Itoa(k)
	}
	return truncateWords(base, room) + suffix
}

func (n *Namer) limit(s string) string {
	return truncateWords(s, n.cfg.MaxChars)
}

// truncateWords shortens s to at most maxChars runes, cutting at a word
// boundary when one exists.
func truncateWords(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:maxChars])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}
