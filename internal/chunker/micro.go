package chunker

import "strings"

// MicroChunks groups the lines of a chunk into pieces of at most maxChars
// characters, returning no more than limit pieces. A single line longer than
// maxChars forms its own piece.
func MicroChunks(text string, maxChars, limit int) []string {
	if maxChars <= 0 {
		maxChars = 1000
	}
	if limit <= 0 {
		limit = 5
	}
	var (
		out     []string
		current strings.Builder
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+1+len(line) > maxChars {
			out = append(out, current.String())
			current.Reset()
			if len(out) == limit {
				return out
			}
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(line)
	}
	if current.Len() > 0 && len(out) < limit {
		out = append(out, current.String())
	}
	return out
}
