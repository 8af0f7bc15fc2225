package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"medrag/internal/domain"
)

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	labelStyle     = lipgloss.NewStyle().Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	wordRe         = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
)

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	help := make([]string, 0, 6)
	for _, b := range []key.Binding{keys.Search, keys.Next, keys.Prev, keys.Chapter, keys.Pane, keys.Quit} {
		h := b.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	return strings.Join([]string{
		labelStyle.Render("medrag dataset browser"),
		dimStyle.Render(m.summary),
		resultBoxStyle.Render(m.viewport.View()),
		queryBoxStyle.Render(m.input.View()),
		statusStyle.Render(m.status),
		dimStyle.Render(strings.Join(help, " • ")),
	}, "\n")
}

func (m Model) renderCurrentResult() string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	r := m.results[m.cursor]
	rec := r.Record
	title := fmt.Sprintf("Result %d/%d", m.cursor+1, len(m.results))
	if m.last.text != "" {
		title += fmt.Sprintf("  score=%.3f", r.Score)
	}
	meta := fmt.Sprintf("%s  chapter %d: %s  chunk %d  ~%d tokens", rec.ChapterID, rec.ChapterNumber, rec.ChapterName, rec.ChunkIndex, rec.TokenEstimate)
	if rec.Category != "" {
		meta += "  [" + rec.Category + "]"
	}
	lines := []string{
		title,
		meta,
		labelStyle.Render("Topic: ") + rec.TopicName,
		labelStyle.Render("Summary: ") + rec.Summary,
		"",
		labelStyle.Render(fmt.Sprintf("[%s]", m.pane)),
		m.renderPane(rec),
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderPane(rec domain.DatasetRecord) string {
	terms := toTokenSet(m.last.text)
	switch m.pane {
	case paneMicroChunks:
		if len(rec.MicroChunks) == 0 {
			return dimStyle.Render("no micro-chunks")
		}
		parts := make([]string, len(rec.MicroChunks))
		for i, mc := range rec.MicroChunks {
			parts[i] = fmt.Sprintf("%d. %s", i+1, highlightTerms(mc, terms))
		}
		return strings.Join(parts, "\n\n")
	case paneTables:
		if len(rec.Tables) == 0 {
			return dimStyle.Render("no tables in this chapter")
		}
		parts := make([]string, len(rec.Tables))
		for i, t := range rec.Tables {
			parts[i] = renderTable(t)
		}
		return strings.Join(parts, "\n\n")
	default:
		return highlightTerms(rec.Content, terms)
	}
}

func renderTable(t domain.Table) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(t.Title))
	for _, row := range t.Rows {
		b.WriteString("\n  ")
		b.WriteString(row)
	}
	return b.String()
}

// highlightTerms marks every word of text that is one of terms.
func highlightTerms(text string, terms map[string]struct{}) string {
	if len(terms) == 0 {
		return text
	}
	return wordRe.ReplaceAllStringFunc(text, func(w string) string {
		if _, ok := terms[strings.ToLower(w)]; ok {
			return highlightStyle.Render(w)
		}
		return w
	})
}

func toTokenSet(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}
