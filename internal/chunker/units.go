package chunker

import "strings"

// closers may follow terminal punctuation inside the same sentence.
const closers = "\"')]’”"

// unit is a sentence or line of the source text. Units are contiguous: each
// one owns the whitespace that follows it.
type unit struct {
	start int
	end   int
	words int
}

// sentenceUnits cuts text after terminal punctuation followed by whitespace
// and after every newline.
func sentenceUnits(text string) []unit {
	var units []unit
	start := 0
	i := 0
	for i < len(text) {
		boundary := false
		switch text[i] {
		case '\n':
			boundary = true
		case '.', '!', '?':
			j := i + 1
			for j < len(text) && strings.IndexByte(closers, text[j]) >= 0 {
				j++
			}
			if j >= len(text) || isSpace(text[j]) {
				i = j - 1
				boundary = true
			}
		}
		if !boundary {
			i++
			continue
		}
		end := i + 1
		for end < len(text) && isSpace(text[end]) {
			end++
		}
		units = append(units, unit{start: start, end: end, words: countWords(text[start:end])})
		start, i = end, end
	}
	if start < len(text) {
		units = append(units, unit{start: start, end: len(text), words: countWords(text[start:])})
	}
	return units
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func countWords(s string) int {
	return len(strings.Fields(s))
}
