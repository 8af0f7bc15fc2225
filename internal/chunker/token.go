package chunker

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// WordCounter estimates tokens from the word count, at about 1.33 tokens
// per English word.
type WordCounter struct{}

// Count returns the token estimate for text.
func (WordCounter) Count(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return max(1, int(float64(words)*1.33))
}

// TikTokenCounter counts tokens with a tiktoken encoding.
type TikTokenCounter struct {
	tke *tiktoken.Tiktoken
}

// NewTikTokenCounter loads the named encoding, such as "cl100k_base".
func NewTikTokenCounter(encoding string) (*TikTokenCounter, error) {
	tke, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get encoding %q: %w", encoding, err)
	}
	return &TikTokenCounter{tke: tke}, nil
}

// Count returns the number of tokens in text.
func (c *TikTokenCounter) Count(text string) int {
	return len(c.tke.Encode(text, nil, nil))
}
