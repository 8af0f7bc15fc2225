// Package source reads chapter text out of the book's full-text dump.
package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"medrag/internal/domain"
)

const maxLineBytes = 1024 * 1024

var pageMarker = regexp.MustCompile(`^--- PAGE (\d+) ---`)

// PageExtractor returns the text between page markers of a full-text file.
type PageExtractor struct {
	path string
}

// NewPageExtractor checks that path is readable. A missing file is reported
// as domain.ErrMissingInput.
func NewPageExtractor(path string) (*PageExtractor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: text %s: %v", domain.ErrMissingInput, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: text %s is a directory", domain.ErrMissingInput, path)
	}
	return &PageExtractor{path: path}, nil
}

// Extract returns the lines of pages start..end inclusive.
func (e *PageExtractor) Extract(start, end int) (string, error) {
	f, err := os.Open(e.path)
	if err != nil {
		return "", fmt.Errorf("%w: text %s: %v", domain.ErrMissingInput, e.path, err)
	}
	defer f.Close()
	return ExtractPages(f, start, end)
}

// ExtractPages streams r and keeps the lines that follow a page marker whose
// number lies in start..end. Reading stops at the first marker past end.
// Marker lines themselves are dropped and invalid UTF-8 is replaced.
func ExtractPages(r io.Reader, start, end int) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var out strings.Builder
	page := 0
	for scanner.Scan() {
		line := strings.ToValidUTF8(scanner.Text(), "�")
		if m := pageMarker.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				page = n
				if page > end {
					break
				}
			}
			continue
		}
		if page >= start && page <= end {
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read pages %d-%d: %w", start, end, err)
	}
	return out.String(), nil
}

// Chapter returns the pages of ch.
func (e *PageExtractor) Chapter(ch domain.ChapterRecord) (string, error) {
	return e.Extract(ch.StartPage, ch.EndPage)
}
