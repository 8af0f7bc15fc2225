// Package tables pulls titled tables out of raw chapter text.
package tables

import (
	"regexp"
	"strings"

	"medrag/internal/domain"
)

const (
	// MinRows is the number of rows a block needs to count as a table.
	MinRows = 2
	// MaxRows caps the rows kept per table.
	MaxRows = 10
)

var titlePattern = regexp.MustCompile(`^\s*Table\s+\d+[.\-]\d+`)

// Extract returns the tables of text in order. A table starts at a
// "Table N.N" title line and runs over the following non-blank lines until a
// blank line, another title or the end of the text.
func Extract(text string) []domain.Table {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	var out []domain.Table
	offset := 0
	for i := 0; i < len(lines); {
		line := lines[i]
		if !titlePattern.MatchString(line) {
			offset += len(line) + 1
			i++
			continue
		}
		table := domain.Table{Title: strings.TrimSpace(line), Position: offset}
		offset += len(line) + 1
		i++
		var rows []string
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" && !titlePattern.MatchString(lines[i]) {
			rows = append(rows, strings.TrimSpace(lines[i]))
			offset += len(lines[i]) + 1
			i++
		}
		if len(rows) >= MinRows {
			if len(rows) > MaxRows {
				rows = rows[:MaxRows]
			}
			table.Rows = rows
			out = append(out, table)
		}
	}
	return out
}
