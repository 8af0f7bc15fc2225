package tui

import (
	"fmt"
	"strconv"
	"strings"

	"medrag/internal/domain"
)

// query is a parsed search line: free text plus optional chapter and
// category filters written as ch:N and cat:name.
type query struct {
	text     string
	chapter  int
	category string
}

func parseQuery(line string) query {
	var (
		q    query
		text []string
	)
	for _, f := range strings.Fields(line) {
		name, value, ok := strings.Cut(f, ":")
		switch {
		case ok && (name == "ch" || name == "chapter"):
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				q.chapter = n
				continue
			}
		case ok && (name == "cat" || name == "category") && value != "":
			q.category = strings.ToLower(strings.ReplaceAll(value, "_", " "))
			continue
		}
		text = append(text, f)
	}
	q.text = strings.Join(text, " ")
	return q
}

func (q query) empty() bool {
	return q.text == "" && q.chapter == 0 && q.category == ""
}

func (q query) String() string {
	var parts []string
	if q.text != "" {
		parts = append(parts, strconv.Quote(q.text))
	}
	if q.chapter > 0 {
		parts = append(parts, fmt.Sprintf("chapter %d", q.chapter))
	}
	if q.category != "" {
		parts = append(parts, "category "+strconv.Quote(q.category))
	}
	return strings.Join(parts, " in ")
}

func (q query) match(r domain.DatasetRecord) bool {
	if q.chapter > 0 && r.ChapterNumber != q.chapter {
		return false
	}
	if q.category != "" && !strings.Contains(strings.ToLower(r.Category), q.category) {
		return false
	}
	return true
}

func filter(results []domain.SearchResult, q query) []domain.SearchResult {
	out := results[:0:0]
	for _, r := range results {
		if q.match(r.Record) {
			out = append(out, r)
		}
	}
	return out
}

// browse lists records matching the filters in dataset order.
func browse(records []domain.DatasetRecord, q query) []domain.SearchResult {
	var out []domain.SearchResult
	for _, r := range records {
		if len(out) == browseLimit {
			break
		}
		if q.match(r) {
			out = append(out, domain.SearchResult{Record: r})
		}
	}
	return out
}
