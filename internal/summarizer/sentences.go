package summarizer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

var (
	spaceRun     = regexp.MustCompile(`\s+`)
	numberedItem = regexp.MustCompile(`^\d+\.`)
)

// segmenter splits prose into sentences with the punkt English model. Each
// line is segmented on its own so headings never merge into a sentence.
type segmenter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

func newSegmenter() (*segmenter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, err
	}
	return &segmenter{tokenizer: tokenizer}, nil
}

func (s *segmenter) split(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		for _, sent := range s.tokenizer.Tokenize(line) {
			clean := strings.TrimSpace(spaceRun.ReplaceAllString(sent.Text, " "))
			if clean != "" {
				out = append(out, clean)
			}
		}
	}
	return out
}

// filter keeps sentences strictly between minChars and maxChars runes that do
// not start with a boilerplate prefix or a list number.
type filter struct {
	minChars int
	maxChars int
	prefixes []string
}

func (f filter) keep(sentence string) bool {
	n := utf8.RuneCountInString(sentence)
	if n <= f.minChars || n >= f.maxChars {
		return false
	}
	if numberedItem.MatchString(sentence) {
		return false
	}
	for _, p := range f.prefixes {
		if strings.HasPrefix(sentence, p) {
			return false
		}
	}
	return true
}

// closingMarks may trail the terminal punctuation of a sentence.
const closingMarks = "\"')]’”"

// finish joins sentences and makes sure the result ends a sentence.
func finish(sentences []string) string {
	out := strings.TrimSpace(spaceRun.ReplaceAllString(strings.Join(sentences, " "), " "))
	if out == "" {
		return ""
	}
	if body := strings.TrimRight(out, closingMarks); body != "" {
		switch body[len(body)-1] {
		case '.', '!', '?':
			return out
		}
	}
	return out + "."
}

// head returns the first n runes of text followed by an ellipsis.
func head(text string, n int) string {
	text = strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
	runes := []rune(text)
	if len(runes) > n {
		runes = runes[:n]
	}
	return strings.TrimSpace(string(runes)) + "..."
}
