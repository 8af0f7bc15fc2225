// Package report checks a finished dataset for the properties every run
// must hold and prints a quality summary.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"medrag/internal/domain"
)

// RequiredFields are the columns that must never be empty.
var RequiredFields = []string{"book_title", "chapter_number", "chapter_name", "topic_name", "content", "summary"}

// Options parameterize Verify. Zero values skip the related check.
type Options struct {
	// MaxChunks is the per-chapter chunk ceiling of the profile.
	MaxChunks int
	// SummaryBudget is the summary length limit in characters.
	SummaryBudget int
}

// ChapterCount is the number of records of one chapter.
type ChapterCount struct {
	Number int
	Chunks int
}

// Report is the outcome of Verify.
type Report struct {
	Rows            int
	Chapters        int
	AvgChunks       float64
	AvgContentChars float64
	AvgSummaryChars float64
	// OverLimit lists chapters with more chunks than allowed.
	OverLimit []ChapterCount
	// UnderLimit lists chapters with fewer chunks than the ceiling.
	UnderLimit        []ChapterCount
	EmptyFields       map[string]int
	DuplicateTopics   []string
	Unterminated      int
	OverlongSummaries int
	FirstChapter      string
	LastChapter       string
}

// OK reports whether every hard check passed.
func (r Report) OK() bool {
	for _, n := range r.EmptyFields {
		if n > 0 {
			return false
		}
	}
	return len(r.OverLimit) == 0 && len(r.DuplicateTopics) == 0 && r.Unterminated == 0 && r.OverlongSummaries == 0
}

// Verify inspects records.
func Verify(records []domain.DatasetRecord, opts Options) Report {
	r := Report{Rows: len(records), EmptyFields: make(map[string]int, len(RequiredFields))}
	for _, f := range RequiredFields {
		r.EmptyFields[f] = 0
	}
	if len(records) == 0 {
		return r
	}
	r.FirstChapter = records[0].ChapterName
	r.LastChapter = records[len(records)-1].ChapterName

	counts := map[int]int{}
	topics := map[string]bool{}
	contentChars, summaryChars := 0, 0
	for _, rec := range records {
		counts[rec.ChapterNumber]++
		contentChars += utf8.RuneCountInString(rec.Content)
		summaryChars += utf8.RuneCountInString(rec.Summary)

		for field, value := range map[string]string{
			"book_title":   rec.BookTitle,
			"chapter_name": rec.ChapterName,
			"topic_name":   rec.TopicName,
			"content":      rec.Content,
			"summary":      rec.Summary,
		} {
			if strings.TrimSpace(value) == "" {
				r.EmptyFields[field]++
			}
		}
		if rec.ChapterNumber <= 0 {
			r.EmptyFields["chapter_number"]++
		}

		key := fmt.Sprintf("%d\x00%s", rec.ChapterNumber, strings.ToLower(rec.TopicName))
		if topics[key] {
			r.DuplicateTopics = append(r.DuplicateTopics, fmt.Sprintf("chapter %d: %s", rec.ChapterNumber, rec.TopicName))
		}
		topics[key] = true

		if s := strings.TrimSpace(rec.Summary); s != "" && !strings.ContainsAny(s[len(s)-1:], ".!?") {
			r.Unterminated++
		}
		if opts.SummaryBudget > 0 && utf8.RuneCountInString(rec.Summary) > opts.SummaryBudget {
			r.OverlongSummaries++
		}
	}

	numbers := make([]int, 0, len(counts))
	for n := range counts {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	for _, n := range numbers {
		c := ChapterCount{Number: n, Chunks: counts[n]}
		switch {
		case opts.MaxChunks > 0 && c.Chunks > opts.MaxChunks:
			r.OverLimit = append(r.OverLimit, c)
		case opts.MaxChunks > 0 && c.Chunks < opts.MaxChunks:
			r.UnderLimit = append(r.UnderLimit, c)
		}
	}

	r.Chapters = len(counts)
	r.AvgChunks = float64(len(records)) / float64(len(counts))
	r.AvgContentChars = float64(contentChars) / float64(len(records))
	r.AvgSummaryChars = float64(summaryChars) / float64(len(records))
	return r
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const listLimit = 10

// Write prints r in a human readable form.
func (r Report) Write(w io.Writer) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render("DATASET REPORT") + "\n")
	fmt.Fprintf(&b, "  rows: %d\n  chapters: %d\n  chunks per chapter: %.2f\n", r.Rows, r.Chapters, r.AvgChunks)
	fmt.Fprintf(&b, "  average content: %.0f chars\n  average summary: %.0f chars\n", r.AvgContentChars, r.AvgSummaryChars)
	if r.Rows > 0 {
		fmt.Fprintf(&b, "  first chapter: %s\n  last chapter: %s\n", r.FirstChapter, r.LastChapter)
	}

	b.WriteString(titleStyle.Render("CHECKS") + "\n")
	check(&b, len(r.OverLimit) == 0, fmt.Sprintf("chapters over the chunk limit: %d", len(r.OverLimit)))
	for i, c := range r.OverLimit {
		if i == listLimit {
			break
		}
		fmt.Fprintf(&b, "      chapter %d: %d chunks\n", c.Number, c.Chunks)
	}
	for _, f := range RequiredFields {
		check(&b, r.EmptyFields[f] == 0, fmt.Sprintf("%s: %d empty", f, r.EmptyFields[f]))
	}
	check(&b, len(r.DuplicateTopics) == 0, fmt.Sprintf("duplicate sibling topics: %d", len(r.DuplicateTopics)))
	for i, d := range r.DuplicateTopics {
		if i == listLimit {
			break
		}
		fmt.Fprintf(&b, "      %s\n", d)
	}
	check(&b, r.Unterminated == 0, fmt.Sprintf("summaries without terminal punctuation: %d", r.Unterminated))
	check(&b, r.OverlongSummaries == 0, fmt.Sprintf("summaries over budget: %d", r.OverlongSummaries))
	if len(r.UnderLimit) > 0 {
		b.WriteString(noteStyle.Render(fmt.Sprintf("  note: %d chapters have fewer chunks than the limit", len(r.UnderLimit))) + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func check(b *strings.Builder, ok bool, line string) {
	mark := passStyle.Render("✓")
	if !ok {
		mark = failStyle.Render("✗")
	}
	fmt.Fprintf(b, "  %s %s\n", mark, line)
}
