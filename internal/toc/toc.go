// Package toc parses a book's table of contents into chapter records with
// inclusive page ranges.
package toc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"medrag/internal/domain"
)

const chapterPrefix = "CHAPTER:"

var entryPattern = regexp.MustCompile(`CHAPTER:\s*(.+?)\s*\(Page:\s*(\d+)\)`)

// Stats reports what the parser saw besides the chapters themselves.
type Stats struct {
	Lines     int
	Malformed int
}

// Parser reads TOC listings. A nil logger is replaced by a no-op one.
type Parser struct {
	log *zap.Logger
}

// NewParser returns a TOC parser logging malformed entries to log.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log}
}

// ParseFile opens path and parses it. A missing or unreadable file is
// reported as domain.ErrMissingInput.
func (p *Parser) ParseFile(path string) ([]domain.ChapterRecord, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%w: toc %s: %v", domain.ErrMissingInput, path, err)
	}
	defer f.Close()
	return p.Parse(f)
}

// Parse extracts chapters in listing order. Lines that do not mention a
// chapter are ignored; lines that start like an entry but do not match are
// counted as malformed.
func (p *Parser) Parse(r io.Reader) ([]domain.ChapterRecord, Stats, error) {
	var (
		chapters []domain.ChapterRecord
		stats    Stats
	)
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			stats.Lines++
			if ch, ok := p.parseLine(line, stats.Lines); ok {
				ch.Number = len(chapters) + 1
				ch.ID = domain.ChapterID(ch.Number)
				chapters = append(chapters, ch)
			} else if strings.HasPrefix(strings.TrimSpace(line), chapterPrefix) {
				stats.Malformed++
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, err
		}
	}
	assignEndPages(chapters)
	return chapters, stats, nil
}

func (p *Parser) parseLine(line string, lineNo int) (domain.ChapterRecord, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, chapterPrefix) {
		return domain.ChapterRecord{}, false
	}
	m := entryPattern.FindStringSubmatch(trimmed)
	if m == nil {
		p.log.Warn("malformed toc entry", zap.Int("line", lineNo), zap.String("text", trimmed))
		return domain.ChapterRecord{}, false
	}
	page, err := strconv.Atoi(m[2])
	if err != nil {
		p.log.Warn("malformed toc page", zap.Int("line", lineNo), zap.String("page", m[2]))
		return domain.ChapterRecord{}, false
	}
	return domain.ChapterRecord{Name: strings.TrimSpace(m[1]), StartPage: page}, true
}

// assignEndPages back-fills each chapter's end page from its successor.
// The last chapter is unbounded.
func assignEndPages(chapters []domain.ChapterRecord) {
	for i := range chapters {
		if i+1 < len(chapters) {
			chapters[i].EndPage = chapters[i+1].StartPage - 1
			continue
		}
		chapters[i].EndPage = domain.EndPageUnbounded
	}
}
